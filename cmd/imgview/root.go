package main

import (
	"io"
	"os"

	"imgview/internal/config"
	"imgview/internal/controller"
	"imgview/internal/display"
	"imgview/internal/gui"
	"imgview/internal/history"
	"imgview/internal/log"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags and the configuration they produce.
type rootOptions struct {
	cfgFile    string
	debug      bool
	cacheRange int
	workers    int
	noHistory  bool
	noWatch    bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "imgview [path]",
		Short: "Browse a directory tree of images",
		Long: `imgview shows the images of a directory and moves through the
directory tree below the starting directory's parent.

A file argument opens its directory on that file. A directory argument opens
on its first image, or on the first directory below it that has images.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := opts.open(pathArg(args))
			if err != nil {
				return err
			}
			defer ctrl.Close()

			ui, err := gui.NewFactory(opts.cfg, ctrl).Create()
			if err != nil {
				return err
			}
			ui.Run()
			return ctrl.Err()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.config/imgview/config.yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.IntVar(&opts.cacheRange, "cache-range", 0, "entries prefetched on each side of the current one")
	flags.IntVar(&opts.workers, "workers", 0, "number of decode workers")
	flags.BoolVar(&opts.noHistory, "no-history", false, "do not resume at or record the last viewed entry")
	flags.BoolVar(&opts.noWatch, "no-watch", false, "do not refresh when the directory changes")

	rootCmd.AddCommand(newTUICmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))

	return rootCmd
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// load reads the configuration, applies flag overrides and sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	var err error
	if o.cfgFile != "" {
		o.cfg, err = config.LoadConfigFile(o.cfgFile)
	} else {
		o.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("cache-range") {
		o.cfg.Cache.Range = o.cacheRange
	}
	if flags.Changed("workers") {
		o.cfg.Cache.Workers = o.workers
	}
	if o.noHistory {
		o.cfg.History.Enabled = false
	}
	if o.noWatch {
		o.cfg.Navigation.Watch = false
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	o.configureLogging(cmd.ErrOrStderr(), cmd.Name() == "tui")
	return nil
}

// configureLogging follows the log section of the configuration. The
// terminal viewer owns the screen, so it only logs to the file.
func (o *rootOptions) configureLogging(stderr io.Writer, quiet bool) {
	out := stderr
	if quiet {
		out = io.Discard
	}
	logOpts := []log.Option{log.WithOutput(out), log.WithLevel(o.cfg.Log.Level)}
	if o.cfg.Log.Format == "json" {
		logOpts = append(logOpts, log.WithJSON())
	}
	if o.cfg.Log.File != "" {
		logOpts = append(logOpts, log.WithFile(o.cfg.Log.File))
	}
	log.Configure(logOpts...)
	log.SetDebug(o.debug || os.Getenv("IMGVIEW_DEBUG") != "")
}

// open builds the controller for path.
func (o *rootOptions) open(path string) (*controller.Controller, error) {
	decoder := display.NewFileDecoder(display.WithMaxDimension(o.cfg.Cache.MaxDimension))

	var ctrlOpts []controller.Option
	if o.cfg.History.Enabled {
		dir, err := o.cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		store, err := history.Open(dir)
		if err != nil {
			log.LogWithError(err).Warn("Continuing without history")
		} else {
			ctrlOpts = append(ctrlOpts, controller.WithHistory(store))
		}
	}
	return controller.Open(path, o.cfg, decoder, ctrlOpts...)
}
