package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrissnell/printview/internal/app"
	"github.com/chrissnell/printview/internal/log"
)

type rootOptions struct {
	cfgFile string
	debug   bool
}

func main() {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "printview",
		Short:         "printview renders printable diabetes device reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := log.Init(opts.debug); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "Path to YAML configuration (defaults are used when omitted)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Turn on debugging output")

	root.AddCommand(
		newReportCommand(opts, "daily", "Render daily charts to a PDF", (*app.Service).DailyPDF),
		newReportCommand(opts, "bglog", "Render the BG log to a PDF", (*app.Service).BgLogPDF),
		newLayoutCommand(opts),
		newImportCommand(opts),
		newServeCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)

	if err := root.Execute(); err != nil {
		log.Errorf("printview: %v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}
