package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/chrissnell/printview/internal/app"
	"github.com/chrissnell/printview/internal/constants"
	"github.com/chrissnell/printview/internal/controllers/restserver"
	"github.com/chrissnell/printview/internal/ingest"
	"github.com/chrissnell/printview/internal/log"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/internal/storage"
	"github.com/chrissnell/printview/pkg/config"
	"github.com/chrissnell/printview/pkg/responseformat"
)

// rangeOptions are the flags shared by every command that selects days.
type rangeOptions struct {
	start   string
	end     string
	patient string
}

func (r *rangeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "First day to print, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.end, "end", "", "Last day to print, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.patient, "patient", "", "Patient ID (overrides configuration)")
}

func (r *rangeOptions) request(svc *app.Service) (app.Request, error) {
	start, err := app.ParseDate(r.start, svc.Location())
	if err != nil {
		return app.Request{}, fmt.Errorf("--start: %w", err)
	}
	end, err := app.ParseDate(r.end, svc.Location())
	if err != nil {
		return app.Request{}, fmt.Errorf("--end: %w", err)
	}
	return app.Request{PatientID: r.patient, Start: start, End: end}, nil
}

func (o *rootOptions) provider() config.ConfigProvider {
	if o.cfgFile == "" {
		log.Warnf("no --config given; using built-in defaults")
		return config.NewStaticProvider(config.DefaultConfigData())
	}
	filename, _ := filepath.Abs(o.cfgFile)
	log.Debugf("reading configuration from %s", filename)
	return config.NewYAMLProvider(filename)
}

// open loads configuration and the store for a one-shot command.
func (o *rootOptions) open(ctx context.Context) (*app.Service, storage.Source, error) {
	return app.Open(ctx, o.provider(), log.GetSugaredLogger())
}

// reportFunc is a Service method expression such as (*app.Service).DailyPDF.
type reportFunc func(*app.Service, context.Context, app.Request, io.Writer) (*report.Result, error)

func newReportCommand(opts *rootOptions, name, short string, render reportFunc) *cobra.Command {
	var (
		rng    rangeOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			req, err := rng.request(svc)
			if err != nil {
				return err
			}

			if output == "" {
				output = name + ".pdf"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}

			res, err := render(svc, ctx, req, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(output)
				return err
			}

			log.Infow("wrote report", "file", output, "pages", res.Pages, "id", res.ID)
			return nil
		},
	}
	rng.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <command>.pdf)")
	return cmd
}

func newLayoutCommand(opts *rootOptions) *cobra.Command {
	var (
		rng    rangeOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print where each day's chart lands without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			req, err := rng.request(svc)
			if err != nil {
				return err
			}
			summary, err := svc.Layout(ctx, req)
			if err != nil {
				return err
			}
			return responseformat.Encode(cmd.OutOrStdout(), format, summary)
		},
	}
	rng.bind(cmd)
	cmd.Flags().StringVar(&format, "format", responseformat.FormatJSON, "Output encoding: json or msgpack")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var patient string

	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Load a device data export into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.provider().LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if patient == "" {
				patient = cfg.Patient.ID
			}
			if patient == "" {
				return errors.New("a patient ID is required: pass --patient or set patient.id")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			data, err := ingest.ReadData(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			store, err := storage.New(ctx, cfg.Storage, log.Named("storage"))
			if err != nil {
				return err
			}
			defer store.Close()

			importer, ok := store.(storage.Importer)
			if !ok {
				return fmt.Errorf("the %s backend is read-only", cfg.Storage.Backend)
			}
			n, err := importer.Import(ctx, patient, data)
			if err != nil {
				return err
			}
			log.Infow("imported device data", "file", args[0], "patient", patient, "data", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&patient, "patient", "", "Patient ID the data belongs to (overrides configuration)")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Infof("printview %s starting", constants.Version)
			logger := log.GetSugaredLogger()
			provider := opts.provider()
			defer provider.Close()

			application := app.New(provider, logger)
			return application.Run(cmd.Context(), func(ctx context.Context, wg *sync.WaitGroup, svc *app.Service, store storage.Source) ([]app.Controller, error) {
				cfg, err := provider.LoadConfig()
				if err != nil {
					return nil, err
				}
				rest := restserver.NewController(ctx, wg, svc, store, cfg.Server, log.Named("restserver"))
				return []app.Controller{rest}, nil
			})
		},
	}
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate configuration and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.provider().LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			out, err := config.MarshalYAML(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "printview %s\n", constants.Version)
		},
	}
}
