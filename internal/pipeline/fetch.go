package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"
	"understat-pipeline/internal/components/chrono"
	"understat-pipeline/internal/components/telemetry"
	"understat-pipeline/internal/dataset"
	"understat-pipeline/internal/store"
	"understat-pipeline/internal/understat"
	"understat-pipeline/lib/season"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("understat.pipeline")
var meter = otel.Meter("understat.pipeline")

var rowsFetched, _ = meter.Int64Counter("rows_fetched")
var leagueFailures, _ = meter.Int64Counter("league_fetch_failures")

const (
	report_league_failed     = "pipeline.fetch-league"
	report_all_failed        = "pipeline.fetch"
	report_no_rows           = "pipeline.fetch-empty"
	report_no_historical     = "pipeline.merge-skipped"
	report_mirror_columns    = "pipeline.sqlite-columns"
	report_fresh_rows        = "pipeline.fresh-rows"
	report_combined_rows     = "pipeline.combined-rows"
	report_mirror_failed     = "pipeline.sqlite-mirror"
	report_analysis_overview = "pipeline.analysis-records"
)

// ErrAllLeaguesFailed is returned when not a single league could be fetched,
// nothing is written in that case.
var ErrAllLeaguesFailed = errors.New("every league failed to fetch")

// LeagueSource is where per-player league statistics come from, understat.Client
// in production.
type LeagueSource interface {
	FetchLeaguePlayers(ctx context.Context, league, season string) understat.FetchResult
}

type LeagueReport struct {
	League   understat.League
	Status   understat.FetchStatus
	Players  int
	Attempts int
	Err      error
}

type FetchReport struct {
	Season  season.Season
	Leagues []LeagueReport
	// rows of the current season, 0 means no snapshot was written
	FreshRows     int
	LatestCSV     string
	LatestParquet string

	// false when the historical snapshot does not exist
	Merged          bool
	CombinedRows    int
	CombinedCSV     string
	CombinedParquet string
	// historical columns outside the fixed set, carried into the combined snapshots
	ExtraColumns []string
	Mirrored     bool
}

// Failed lists the leagues that did not come back with a result.
func (r FetchReport) Failed() []LeagueReport {
	var out []LeagueReport
	for _, l := range r.Leagues {
		if l.Status != understat.FetchOK {
			out = append(out, l)
		}
	}
	return out
}

type FetchJob struct {
	cfg    Config
	source LeagueSource
	clock  chrono.API
	tel    telemetry.API
}

func NewFetchJob(cfg Config, source LeagueSource, clock chrono.API, tel telemetry.API) FetchJob {
	return FetchJob{
		cfg:    cfg,
		source: source,
		clock:  clock,
		tel:    telemetry.NewScopedAPI("fetch", tel),
	}
}

// sleep blocks for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run fetches the current season of every configured league, writes the per run
// snapshots and appends them to the historical snapshot.
//
// A league that fails is reported and skipped. Any failure to read or write a
// snapshot aborts the run.
func (j FetchJob) Run(ctx context.Context) (FetchReport, error) {
	ctx, span := tracer.Start(ctx, "pipeline:Fetch")
	defer span.End()

	now := j.clock.Now()
	current := season.Current(now)
	report := FetchReport{Season: current}
	span.SetAttributes(attribute.String("season", current.Label()))

	j.tel.ReportInfo("fetching season", telemetry.KV{Key: "season", Value: current.Label()})

	var rows []dataset.RawRow
	var errs []error
	for i, league := range j.cfg.Leagues {
		if i > 0 {
			err := sleep(ctx, j.cfg.LeaguePause())
			if err != nil {
				return report, err
			}
		}

		res := j.source.FetchLeaguePlayers(ctx, league.Code, current.Code())
		report.Leagues = append(report.Leagues, LeagueReport{
			League:   league,
			Status:   res.Status,
			Players:  len(res.Players),
			Attempts: res.Attempts,
			Err:      res.Err,
		})
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if res.Failed() {
			leagueFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("league", league.Name)))
			j.tel.ReportWarning(
				report_league_failed,
				res.Err,
				telemetry.KV{Key: "league", Value: league.Name},
				telemetry.KV{Key: "status", Value: res.Status.String()},
			)
			errs = append(errs, fmt.Errorf("%s: %w", league.Name, res.Err))
			continue
		}

		j.tel.ReportInfo(
			"fetched league",
			telemetry.KV{Key: "league", Value: league.Name},
			telemetry.KV{Key: "players", Value: len(res.Players)},
		)
		rows = append(rows, dataset.Reconcile(res.Players, league.Name, current.StartYear)...)
	}

	if len(j.cfg.Leagues) > 0 && len(errs) == len(j.cfg.Leagues) {
		err := errors.Join(append([]error{ErrAllLeaguesFailed}, errs...)...)
		j.tel.ReportBroken(report_all_failed, err)
		span.SetStatus(codes.Error, ErrAllLeaguesFailed.Error())
		return report, err
	}

	fresh := dataset.Coerce(rows, now)
	report.FreshRows = len(fresh)
	rowsFetched.Add(ctx, int64(len(fresh)))
	j.tel.ReportCount(report_fresh_rows, int64(len(fresh)))
	if len(fresh) == 0 {
		j.tel.ReportWarning(report_no_rows, telemetry.KV{Key: "season", Value: current.Label()})
		return report, nil
	}

	latestCSV, latestParquet := j.cfg.LatestPaths(current.Code())
	err := writeSnapshots(latestCSV, latestParquet, fresh)
	if err != nil {
		return report, err
	}
	report.LatestCSV = latestCSV
	report.LatestParquet = latestParquet
	j.tel.ReportInfo("wrote season snapshot", telemetry.KV{Key: "rows", Value: len(fresh)}, telemetry.KV{Key: "csv", Value: latestCSV})

	return j.merge(ctx, fresh, report)
}

func writeSnapshots(csvPath, parquetPath string, table dataset.Table) error {
	err := dataset.WriteCSV(csvPath, table)
	if err != nil {
		return fmt.Errorf("write csv snapshot: %w", err)
	}
	err = dataset.WriteParquet(parquetPath, table)
	if err != nil {
		return fmt.Errorf("write parquet snapshot: %w", err)
	}
	return nil
}

func (j FetchJob) merge(ctx context.Context, fresh dataset.Table, report FetchReport) (FetchReport, error) {
	ctx, span := tracer.Start(ctx, "pipeline:Merge")
	defer span.End()

	historicalPath := j.cfg.HistoricalPath()
	historical, header, err := dataset.ReadCSV(historicalPath)
	if errors.Is(err, fs.ErrNotExist) {
		j.tel.ReportWarning(report_no_historical, telemetry.KV{Key: "path", Value: historicalPath})
		return report, nil
	}
	if err != nil {
		span.RecordError(err)
		return report, fmt.Errorf("read historical snapshot: %w", err)
	}
	if len(header.Extra) > 0 {
		report.ExtraColumns = header.Extra
		j.tel.ReportInfo("keeping extra historical columns", telemetry.KV{Key: "columns", Value: header.Extra})
	}

	combined := dataset.Merge(historical, fresh)
	err = writeSnapshots(j.cfg.CombinedCSVPath(), j.cfg.CombinedParquetPath(), combined)
	if err != nil {
		return report, err
	}
	report.Merged = true
	report.CombinedRows = len(combined)
	report.CombinedCSV = j.cfg.CombinedCSVPath()
	report.CombinedParquet = j.cfg.CombinedParquetPath()
	span.SetAttributes(attribute.Int("rows", len(combined)))
	j.tel.ReportCount(report_combined_rows, int64(len(combined)))
	j.tel.ReportInfo("wrote combined snapshot", telemetry.KV{Key: "rows", Value: len(combined)}, telemetry.KV{Key: "csv", Value: report.CombinedCSV})

	if j.cfg.SqlitePath == "" {
		return report, nil
	}
	if len(header.Extra) > 0 {
		j.tel.ReportWarning(report_mirror_columns, telemetry.KV{Key: "skipped", Value: header.Extra})
	}
	err = mirror(ctx, j.cfg.SqlitePath, combined)
	if err != nil {
		j.tel.ReportBroken(report_mirror_failed, err, telemetry.KV{Key: "path", Value: j.cfg.SqlitePath})
		return report, fmt.Errorf("mirror combined table: %w", err)
	}
	report.Mirrored = true
	return report, nil
}

func mirror(ctx context.Context, path string, table dataset.Table) error {
	database, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer database.Close()
	return store.NewStore(database).ReplaceAll(ctx, table)
}
