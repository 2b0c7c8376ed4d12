package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/analytics"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "salespulse.analytics"

// Pipeline stage names, used for spans, metrics and logs
const (
	StageMerge     = "merge"
	StageTrend     = "trend"
	StageVisualize = "visualize"
	StageExport    = "export"
	StageStats     = "stats"
)

// InputPaths locates the three input files of a run on disk
type InputPaths struct {
	Customers string
	Orders    string
	Products  string
}

// AnalyticsService runs the sales pipeline end to end
type AnalyticsService struct {
	merger   *dataprocessing.Merger
	exporter *exporter.ReportExporter
	metrics  *infrastructure.PipelineMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewAnalyticsService creates the pipeline orchestrator. metrics may be nil.
func NewAnalyticsService(merger *dataprocessing.Merger, exp *exporter.ReportExporter, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		merger:   merger,
		exporter: exp,
		metrics:  metrics,
		tracer:   otel.Tracer(TracerName),
		logger:   infrastructure.WithComponent(logger, "analytics_service"),
	}
}

// Run executes merge, trend, visualization, export and statistics in order
// and returns either a complete result or the first error.
func (s *AnalyticsService) Run(ctx context.Context, src dataprocessing.Sources, runID string) (result *domain.RunResult, err error) {
	ctx, span := s.tracer.Start(ctx, "analytics.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("run.id", runID)),
	)
	start := time.Now()
	defer func() {
		s.metrics.RecordRun(ctx, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "analytics run failed")
			infrastructure.WithError(s.logger, err).ErrorContext(ctx, "Analytics run failed",
				slog.String("run_id", runID),
				slog.Duration("duration", time.Since(start)))
		} else {
			span.SetStatus(codes.Ok, "analytics run completed")
			s.logger.InfoContext(ctx, "Analytics run completed",
				slog.String("run_id", runID),
				slog.Duration("duration", time.Since(start)))
		}
		span.End()
	}()

	s.logger.InfoContext(ctx, "Analytics run started", slog.String("run_id", runID))

	var (
		table   *domain.FactTable
		health  domain.HealthReport
		trend   domain.TrendSeries
		visuals domain.VisualizationBundle
		archive string
		stats   *domain.Stats
	)

	if err := s.stage(ctx, runID, StageMerge, func(ctx context.Context) error {
		var err error
		table, health, err = s.merger.SanitizeAndMerge(ctx, src)
		if err == nil {
			s.metrics.RecordFactRecords(ctx, table.Len())
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.Int("fact.records", table.Len()),
				attribute.StringSlice("health.notices", health.Notices()),
			)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.stage(ctx, runID, StageTrend, func(context.Context) error {
		var err error
		trend, err = analytics.EstimateTrend(table)
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.stage(ctx, runID, StageVisualize, func(context.Context) error {
		visuals = analytics.BuildVisualization(table, trend)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.stage(ctx, runID, StageExport, func(ctx context.Context) error {
		var err error
		archive, err = s.exporter.Export(ctx, table, runID)
		if err == nil {
			infrastructure.AddSpanEvent(ctx, "report.archived", map[string]interface{}{
				"archive": archive,
				"records": table.Len(),
			})
		}
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.stage(ctx, runID, StageStats, func(context.Context) error {
		var err error
		stats, err = analytics.ComputeStats(table, health)
		return err
	}); err != nil {
		return nil, err
	}

	return &domain.RunResult{
		RunID:       runID,
		Stats:       *stats,
		Visuals:     visuals,
		ArchiveName: archive,
	}, nil
}

// RunFiles opens the three input files and delegates to Run
func (s *AnalyticsService) RunFiles(ctx context.Context, paths InputPaths, runID string) (*domain.RunResult, error) {
	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	open := func(dataset, path string) (dataprocessing.Source, error) {
		f, err := os.Open(path)
		if err != nil {
			return dataprocessing.Source{}, apperrors.NewDataProcessingError(apperrors.StageParse, dataset, err)
		}
		opened = append(opened, f)
		return dataprocessing.Source{Filename: filepath.Base(path), Reader: f}, nil
	}

	var (
		src dataprocessing.Sources
		err error
	)
	if src.Customers, err = open(domain.DatasetCustomers, paths.Customers); err != nil {
		return nil, err
	}
	if src.Orders, err = open(domain.DatasetOrders, paths.Orders); err != nil {
		return nil, err
	}
	if src.Products, err = open(domain.DatasetProducts, paths.Products); err != nil {
		return nil, err
	}

	return s.Run(ctx, src, runID)
}

// stage runs fn inside its own span, records its duration and stops the
// pipeline when the context is done.
func (s *AnalyticsService) stage(ctx context.Context, runID, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s stage not started: %w", name, err)
	}

	ctx, span := s.tracer.Start(ctx, "analytics.stage."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.name", name),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	s.metrics.RecordStage(ctx, name, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "Stage failed",
			slog.String("run_id", runID),
			slog.String("stage", name),
			slog.Duration("duration", duration))
		return err
	}

	span.SetStatus(codes.Ok, "stage completed")
	s.logger.DebugContext(ctx, "Stage completed",
		slog.String("run_id", runID),
		slog.String("stage", name),
		slog.Duration("duration", duration))
	return nil
}
