package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
	"salespulse/pkg/contracts"
)

type options struct {
	customers string
	orders    string
	products  string
	runID     string
	version   bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.customers, "customers", "", "customers file (.csv or .xlsx)")
	fs.StringVar(&opts.orders, "orders", "", "orders file (.csv or .xlsx)")
	fs.StringVar(&opts.products, "products", "", "products file (.csv or .xlsx)")
	fs.StringVar(&opts.runID, "run-id", "", "run identifier used in report names (generated when empty)")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version {
		return opts, nil
	}

	var missing []error
	for name, v := range map[string]string{"customers": opts.customers, "orders": opts.orders, "products": opts.products} {
		if v == "" {
			missing = append(missing, fmt.Errorf("-%s is required", name))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	if opts.runID == "" {
		opts.runID = infrastructure.NewRunID()
	}
	return opts, nil
}

// run executes one analytics run and writes the result as JSON to stdout
func run(ctx context.Context, cfg *config.Config, opts *options, logger *slog.Logger, stdout io.Writer) error {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create required directories: %w", err)
	}

	fm := files.NewManager(paths, logger)
	exp := exporter.NewReportExporter(paths.ReportsDir, paths.StagingDir, fm, logger,
		exporter.WithBOM(cfg.Analytics.CSVBOM))

	mergerOpts := []dataprocessing.MergerOption{dataprocessing.WithLogger(logger)}
	if len(cfg.Analytics.DateLayouts) > 0 {
		mergerOpts = append(mergerOpts, dataprocessing.WithDateLayouts(cfg.Analytics.DateLayouts))
	}
	service := services.NewAnalyticsService(dataprocessing.NewMerger(mergerOpts...), exp, nil, logger)

	logger.InfoContext(ctx, "Starting analytics run",
		slog.String("run_id", opts.runID),
		slog.String("customers", opts.customers),
		slog.String("orders", opts.orders),
		slog.String("products", opts.products))

	result, err := service.RunFiles(ctx, services.InputPaths{
		Customers: opts.customers,
		Orders:    opts.orders,
		Products:  opts.products,
	}, opts.runID)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Analytics run completed",
		slog.String("run_id", result.RunID),
		slog.String("archive", paths.GetReportPath(result.ArchiveName)))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(contracts.GetVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = infrastructure.GetLogger()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	if err := run(ctx, cfg, opts, logger, os.Stdout); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Analytics run failed")
		os.Exit(1)
	}
}
