package pipeline

import (
	"context"
	"fmt"
	"understat-pipeline/internal/analysis"
	"understat-pipeline/internal/components/chrono"
	"understat-pipeline/internal/components/telemetry"
	"understat-pipeline/internal/dataset"

	"go.opentelemetry.io/otel/attribute"
)

type AnalyzeJob struct {
	cfg   Config
	clock chrono.API
	tel   telemetry.API
}

func NewAnalyzeJob(cfg Config, clock chrono.API, tel telemetry.API) AnalyzeJob {
	return AnalyzeJob{
		cfg:   cfg,
		clock: clock,
		tel:   telemetry.NewScopedAPI("analyze", tel),
	}
}

// Run summarizes the configured competition out of the combined snapshot and
// replaces the previous export.
func (j AnalyzeJob) Run(ctx context.Context) (analysis.Summary, error) {
	_, span := tracer.Start(ctx, "pipeline:Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("competition", j.cfg.Competition))

	table, header, err := dataset.ReadCSV(j.cfg.CombinedCSVPath())
	if err != nil {
		span.RecordError(err)
		return analysis.Summary{}, fmt.Errorf("read combined snapshot: %w", err)
	}
	if len(header.Extra) > 0 {
		j.tel.ReportDebug("ignoring extra columns", telemetry.KV{Key: "columns", Value: header.Extra})
	}

	summary := analysis.Analyze(table, j.cfg.Competition, j.clock.Now())
	j.tel.ReportCount(report_analysis_overview, int64(summary.Overview.TotalRecords))
	j.tel.ReportInfo(
		"analyzed competition",
		telemetry.KV{Key: "competition", Value: j.cfg.Competition},
		telemetry.KV{Key: "records", Value: summary.Overview.TotalRecords},
		telemetry.KV{Key: "seasons", Value: len(summary.Overview.SeasonsCovered)},
	)

	err = analysis.WriteSummary(j.cfg.AnalysisPath(), summary)
	if err != nil {
		return analysis.Summary{}, fmt.Errorf("write analysis export: %w", err)
	}
	return summary, nil
}
