package telemetry

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("understat.run_stats")
var rssGauge, _ = meter.Int64Gauge("rss_mb")
var cpuGauge, _ = meter.Float64Gauge("cpu_seconds")
var durationGauge, _ = meter.Float64Gauge("run_seconds")

// ReportRunStats records the resource usage of the current process once, batch jobs
// call it right before exiting.
func ReportRunStats(ctx context.Context, job string, started time.Time) {
	attrs := metric.WithAttributes(attribute.String("job", job))
	elapsed := time.Since(started).Seconds()
	durationGauge.Record(ctx, elapsed, attrs)

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		slog.WarnContext(ctx, "failed to inspect process", "err", err)
		return
	}

	args := []any{"job", job, "seconds", elapsed}
	mem, err := proc.MemoryInfoWithContext(ctx)
	if err == nil {
		rss := int64(mem.RSS / 1_000_000)
		rssGauge.Record(ctx, rss, attrs)
		args = append(args, "rss_mb", rss)
	}
	times, err := proc.TimesWithContext(ctx)
	if err == nil {
		cpu := times.User + times.System
		cpuGauge.Record(ctx, cpu, attrs)
		args = append(args, "cpu_seconds", cpu)
	}

	slog.InfoContext(ctx, "run finished", args...)
}
