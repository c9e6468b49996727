package main

import (
	"fmt"
	"path/filepath"

	"imgview/internal/history"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the remembered position per directory",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every directory with its remembered entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			dirs, err := store.Directories()
			if err != nil {
				return err
			}
			for _, dir := range dirs {
				name, ok, err := store.Recall(dir)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", dir, name)
				}
			}
			return nil
		},
	}

	forgetCmd := &cobra.Command{
		Use:   "forget <dir>",
		Short: "Drop the remembered entry for a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			store, err := opts.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			if _, ok, err := store.Recall(dir); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("nothing remembered for %s", dir)
			}
			return store.Forget(dir)
		},
	}

	cmd.AddCommand(listCmd, forgetCmd)
	return cmd
}

// openHistory opens the configured store whether or not history is enabled
// for viewing sessions.
func (o *rootOptions) openHistory() (*history.Store, error) {
	dir, err := o.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(dir)
}
