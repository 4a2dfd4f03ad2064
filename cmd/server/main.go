package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/ZanzyTHEbar/distributor-competition/internal/config"
	"github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/ZanzyTHEbar/distributor-competition/internal/monitoring"
	"github.com/ZanzyTHEbar/distributor-competition/internal/report"
	"github.com/ZanzyTHEbar/distributor-competition/internal/spreadsheet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:           "competition",
		Short:         "Score, rank and reward distributors in a sales competition",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: competition.yaml in the working directory)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = opts.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(serve, newReportCmd(opts))

	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, c.UsageString())
	})
	wrapRun(root)
	return root
}

// wrapRun prints the error of every command with its user message.
func wrapRun(cmd *cobra.Command) {
	for _, c := range append([]*cobra.Command{cmd}, cmd.Commands()...) {
		run := c.RunE
		if run == nil {
			continue
		}
		c.RunE = func(c *cobra.Command, args []string) error {
			err := run(c, args)
			if err != nil {
				fmt.Fprintln(c.ErrOrStderr(), "Error:", userMessage(err))
			}
			return err
		}
	}
}

func userMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

func (o *rootOptions) load() (*config.Config, *monitoring.Logger, error) {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return nil, nil, err
	}

	logger := monitoring.NewLogger(monitoring.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger.Logger)
	return cfg, logger, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger)
		},
	}
	cmd.Flags().Int("port", 0, "listen port")
	_ = opts.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, logger *monitoring.Logger) error {
	srvState := newServer(cfg, logger)
	defer srvState.stop()

	r, err := srvState.router()
	if err != nil {
		return err
	}

	workers, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	srvState.start(workers)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("Server failed to start", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Live connections are hijacked and not tracked by Shutdown.
	cancelWorkers()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server exited")
	return nil
}

type reportOptions struct {
	input string
	out   string

	activity int
	amh      int
	urus     int
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	ro := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print standings and rewards for a competition workbook",
		Long: `Reads the "Competition Data" sheet of a workbook, prints the standings and
the reward summary, and optionally writes every export into a directory.`,
		Example: "  competition report --input data.xlsx --amh 3 --out ./exports",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			weights := cfg.PointConfig()
			flags := cmd.Flags()
			if flags.Changed("activity") {
				weights.ActivityWeight = ro.activity
			}
			if flags.Changed("amh") {
				weights.PrimaryWeight = ro.amh
			}
			if flags.Changed("urus") {
				weights.SecondaryWeight = ro.urus
			}
			return runReport(cmd.OutOrStdout(), ro, weights, cfg.BrandingText(), logger)
		},
	}

	cmd.Flags().StringVarP(&ro.input, "input", "i", "", "workbook to read (.xlsx)")
	cmd.Flags().StringVarP(&ro.out, "out", "o", "", "directory to write the exports into")
	cmd.Flags().IntVar(&ro.activity, "activity", 0, "points per activity")
	cmd.Flags().IntVar(&ro.amh, "amh", 0, "points per AMH machine sold")
	cmd.Flags().IntVar(&ro.urus, "urus", 0, "points per URUS machine sold")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runReport(w io.Writer, ro *reportOptions, weights competition.PointConfig, branding export.Branding, logger *monitoring.Logger) error {
	f, err := os.Open(ro.input)
	if err != nil {
		return errors.NewImportIOError(err)
	}
	defer errors.SafeClose(f, ro.input)

	records, err := spreadsheet.ReadCompetitionData(f)
	if err != nil {
		return err
	}

	view := competition.DeriveView(records, weights)
	report.NewPrinter(w, branding).Print(view)

	if ro.out == "" {
		return nil
	}
	return writeExports(ro.out, records, view, branding, logger)
}

// writeExports writes the two workbooks and the two HTML documents. A
// competition without winners still gets the other three files.
func writeExports(dir string, records []competition.DistributorRecord, view competition.View, branding export.Branding, logger *monitoring.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, "failed to create output directory")
	}

	renderer, err := export.NewRenderer(branding)
	if err != nil {
		return err
	}

	files := []struct {
		name   string
		render func(io.Writer) error
	}{
		{spreadsheet.ResultsFileName, func(w io.Writer) error { return spreadsheet.WriteResults(w, view) }},
		{spreadsheet.TemplateFileName, func(w io.Writer) error { return spreadsheet.WriteTemplate(w, records, false) }},
		{export.PresentationFileName, func(w io.Writer) error { return renderer.Presentation(w, view) }},
		{export.CertificatesFileName, func(w io.Writer) error { return renderer.Certificates(w, view) }},
	}

	for _, file := range files {
		start := time.Now()
		var buf bytes.Buffer
		if err := file.render(&buf); err != nil {
			if stderrors.Is(err, export.ErrNoWinners) {
				logger.Warn("Skipping certificates", "reason", export.NoWinnersMessage)
				continue
			}
			return err
		}

		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return errors.WrapError(err, "failed to write %s", path)
		}
		logger.ExportLogger("", file.name, buf.Len(), time.Since(start))
	}
	return nil
}
