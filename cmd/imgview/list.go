package main

import (
	"fmt"

	"imgview/internal/listing"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var dirs bool

	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "Print the entries of a directory in viewing order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := listing.New(opts.cfg.Navigation.Ignore...)
			if err != nil {
				return err
			}

			dir := pathArg(args)
			var names []string
			if dirs {
				names, err = l.Directories(dir)
			} else {
				names, err = l.Displayables(dir)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dirs, "dirs", false, "list sub-directories instead of displayable files")
	return cmd
}
