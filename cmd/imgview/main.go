package main

import (
	"fmt"
	"io"
	"os"

	"imgview/internal/errors"
)

var version = "dev"

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "imgview: %v\n", err)
	if errors.IsInvalidConfig(err) {
		fmt.Fprintln(w, "imgview: fix the file or rewrite it with 'imgview config init --force'")
	}
}
