package main

import (
	"imgview/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [path]",
		Short: "Browse in the terminal",
		Long:  `Open the viewer in the terminal. Images are drawn with coloured half-block characters.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.open(pathArg(args))
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return tui.Run(ctrl, opts.cfg)
		},
	}
}
