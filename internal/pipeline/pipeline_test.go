package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"understat-pipeline/internal/analysis"
	"understat-pipeline/internal/components/chrono"
	"understat-pipeline/internal/components/telemetry"
	"understat-pipeline/internal/dataset"
	"understat-pipeline/internal/store"
	"understat-pipeline/internal/understat"
	"understat-pipeline/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mutex   sync.Mutex
	results map[string]understat.FetchResult
	calls   []string
	seasons []string
	onFetch func()
}

func (f *fakeSource) FetchLeaguePlayers(ctx context.Context, league, season string) understat.FetchResult {
	f.mutex.Lock()
	f.calls = append(f.calls, league)
	f.seasons = append(f.seasons, season)
	f.mutex.Unlock()

	if f.onFetch != nil {
		f.onFetch()
	}
	res, ok := f.results[league]
	if !ok {
		return understat.FetchResult{Status: understat.FetchOK, Players: []map[string]any{}, Attempts: 1}
	}
	return res
}

func ok(players ...map[string]any) understat.FetchResult {
	return understat.FetchResult{Status: understat.FetchOK, Players: players, Attempts: 1}
}

func exhausted() understat.FetchResult {
	return understat.FetchResult{Status: understat.FetchExhausted, Attempts: 3, Err: errors.New("503 Service Unavailable")}
}

var october = time.Date(2025, time.October, 3, 9, 30, 0, 0, time.UTC)

func testConfig(dir string) Config {
	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.LeaguePauseMillis = 0
	return cfg
}

func files(t testing.TB, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFetchWithoutHistorical(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{results: map[string]understat.FetchResult{
		"EPL": ok(
			map[string]any{"id": "8260", "player_name": " Erling Haaland ", "position": "F S", "goals": "9", "xG": "6.94", "extra": "x"},
			map[string]any{"id": "1250", "player_name": "Mohamed Salah", "position": "", "goals": "abc"},
		),
		"La_liga":    exhausted(),
		"Bundesliga": ok(map[string]any{"id": "2", "player_name": "Harry Kane", "position": "F", "games": "6"}),
	}}
	rec := &telemetry.Recorder{}

	job := NewFetchJob(testConfig(dir), source, chrono.FixedImpl{Time: october}, rec)
	report, err := job.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"EPL", "La_liga", "Bundesliga", "Serie_A", "Ligue_1", "RFPL"}, source.calls)
	for _, s := range source.seasons {
		require.Equal(t, "2025", s)
	}
	require.Equal(t, 3, report.FreshRows)
	require.False(t, report.Merged)
	require.Len(t, report.Failed(), 1)
	require.Equal(t, "La_Liga", report.Failed()[0].League.Name)

	require.ElementsMatch(t, []string{
		"understat_players_aggregated_2025_latest.csv",
		"understat_players_aggregated_2025_latest.parquet",
	}, files(t, dir))
	require.Equal(t, []string{
		"fetch: pipeline.fetch-league",
		"fetch: pipeline.merge-skipped",
	}, rec.IDs(telemetry.LevelWarning))

	table, header, err := dataset.ReadCSV(report.LatestCSV)
	require.NoError(t, err)
	require.Empty(t, header.Extra)
	require.Len(t, table, 3)

	first := table[0]
	require.Equal(t, "Erling Haaland", first.PlayerName)
	require.Equal(t, "EPL", first.League)
	require.Equal(t, int64(2025), first.Year)
	require.Equal(t, "2025/26", first.Season)
	require.Equal(t, "F", first.PrimaryPosition)
	require.Equal(t, 6.94, *first.XG)
	require.Nil(t, first.Games)
	require.Equal(t, "2025-10-03T09:30:00Z", first.ScrapeTimestamp)

	require.Nil(t, table[1].Goals)
	require.Equal(t, "", table[1].PrimaryPosition)
	require.Equal(t, "Bundesliga", table[2].League)

	parquetTable, err := dataset.ReadParquet(report.LatestParquet)
	require.NoError(t, err)
	diff := cmp.Diff(table, parquetTable)
	if diff != "" {
		t.Fatal(diff)
	}
}

const historicalCSV = `Unnamed: 0,id,player_name,team_title,position,goals,xG,games,league,year,season,primary_position
0,5678.0,Old Timer,Arsenal,M,4,3.5,20,EPL,2014,2014/15,M
1,91,Someone Else,Roma,D,1,0.5,12,Serie_A,2014,2014/15,D
`

func TestFetchMergesHistorical(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.SqlitePath = filepath.Join(dir, "db", "players.db")
	require.NoError(t, os.WriteFile(cfg.HistoricalPath(), []byte(historicalCSV), 0644))

	source := &fakeSource{results: map[string]understat.FetchResult{
		"EPL": ok(map[string]any{"id": "1", "player_name": "New Face", "team_title": "Chelsea", "goals": "2"}),
	}}
	rec := &telemetry.Recorder{}

	report, err := NewFetchJob(cfg, source, chrono.FixedImpl{Time: october}, rec).Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Merged)
	require.True(t, report.Mirrored)
	require.Equal(t, 3, report.CombinedRows)
	require.Equal(t, []string{"Unnamed: 0"}, report.ExtraColumns)
	require.Contains(t, rec.IDs(telemetry.LevelWarning), "fetch: pipeline.sqlite-columns")

	combined, _, err := dataset.ReadCSV(cfg.CombinedCSVPath())
	require.NoError(t, err)
	require.Len(t, combined, 3)
	require.Equal(t, "5678.0", combined[0].ID)
	require.Equal(t, "Old Timer", combined[0].PlayerName)
	require.Equal(t, "Someone Else", combined[1].PlayerName)
	require.Equal(t, "New Face", combined[2].PlayerName)
	require.Equal(t, "2025/26", combined[2].Season)
	require.Equal(t, []dataset.Cell{{Column: "Unnamed: 0", Value: "1"}}, combined[1].Extra)
	require.Equal(t, []dataset.Cell{{Column: "Unnamed: 0", Value: ""}}, combined[2].Extra)

	combinedParquet, err := dataset.ReadParquet(cfg.CombinedParquetPath())
	require.NoError(t, err)
	diff := cmp.Diff(combined, combinedParquet)
	if diff != "" {
		t.Fatal(diff)
	}

	database, err := store.Open(context.Background(), cfg.SqlitePath)
	require.NoError(t, err)
	defer database.Close()
	mirrored, err := store.NewStore(database).Load(context.Background())
	require.NoError(t, err)
	// the sqlite mirror only holds the fixed columns
	diff = cmp.Diff(combined, mirrored, cmpopts.IgnoreFields(dataset.Record{}, "Extra"))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchAllLeaguesFailed(t *testing.T) {
	dir := t.TempDir()
	results := map[string]understat.FetchResult{}
	for _, l := range understat.Leagues {
		results[l.Code] = exhausted()
	}
	results["RFPL"] = understat.FetchResult{Status: understat.FetchPermanent, Attempts: 1, Err: errors.New("404 Not Found")}
	rec := &telemetry.Recorder{}

	_, err := NewFetchJob(testConfig(dir), &fakeSource{results: results}, chrono.FixedImpl{Time: october}, rec).
		Run(context.Background())
	require.ErrorIs(t, err, ErrAllLeaguesFailed)
	require.Empty(t, files(t, dir))
	require.Equal(t, []string{"fetch: pipeline.fetch"}, rec.IDs(telemetry.LevelBroken))
}

func TestFetchNoRows(t *testing.T) {
	dir := t.TempDir()
	rec := &telemetry.Recorder{}

	report, err := NewFetchJob(testConfig(dir), &fakeSource{}, chrono.FixedImpl{Time: october}, rec).
		Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.FreshRows)
	require.Empty(t, files(t, dir))
	require.Equal(t, []string{"fetch: pipeline.fetch-empty"}, rec.IDs(telemetry.LevelWarning))
}

func TestFetchCancelledDuringPause(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.LeaguePauseMillis = int(time.Hour / time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{onFetch: cancel}

	_, err := NewFetchJob(cfg, source, chrono.FixedImpl{Time: october}, &telemetry.Recorder{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, source.calls, 1)
	require.Empty(t, files(t, dir))
}

func TestFetchBeforeAugustUsesPreviousSeason(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{results: map[string]understat.FetchResult{
		"EPL": ok(map[string]any{"id": "1"}),
	}}

	july := time.Date(2025, time.July, 31, 23, 59, 0, 0, time.UTC)
	report, err := NewFetchJob(testConfig(dir), source, chrono.FixedImpl{Time: july}, &telemetry.Recorder{}).
		Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024", source.seasons[0])
	require.Equal(t, "2024/25", report.Season.Label())
	require.Equal(t, filepath.Join(dir, "understat_players_aggregated_2024_latest.csv"), report.LatestCSV)
}

func TestAnalyzeJob(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	var combined dataset.Table
	for _, league := range []string{"EPL", "Bundesliga"} {
		for _, season := range []string{"2024/25", "2023/24"} {
			combined = append(combined,
				dataset.Record{ID: "1", PlayerName: "A", TeamTitle: league + " FC", League: league, Season: season, Goals: testutil.Float(10), Games: testutil.Float(20), PrimaryPosition: "F"},
				dataset.Record{ID: "2", PlayerName: "B", TeamTitle: league + " United", League: league, Season: season, Goals: testutil.Float(3), Games: testutil.Float(2), PrimaryPosition: "M"},
			)
		}
	}
	require.NoError(t, dataset.WriteCSV(cfg.CombinedCSVPath(), combined))

	rec := &telemetry.Recorder{}
	summary, err := NewAnalyzeJob(cfg, chrono.FixedImpl{Time: october}, rec).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, summary.Overview.TotalRecords)
	require.Equal(t, []string{"2023/24", "2024/25"}, summary.Overview.SeasonsCovered)
	require.Equal(t, "2024/25", summary.Overview.CurrentSeason)
	require.Equal(t, "2025-10-03 09:30:00", summary.Overview.LastUpdated)
	require.Len(t, summary.XGVsGoalsCurrent, 1)
	require.Len(t, summary.TeamPerformance, 4)

	exported, err := analysis.ReadSummary(cfg.AnalysisPath())
	require.NoError(t, err)
	diff := cmp.Diff(summary, exported)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestAnalyzeJobWithoutCombined(t *testing.T) {
	_, err := NewAnalyzeJob(testConfig(t.TempDir()), chrono.FixedImpl{Time: october}, &telemetry.Recorder{}).
		Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	err = os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// trailing commas and comments are fine
		data_dir: "/srv/understat",
		league_pause_ms: 2000,
		log: { dir: "/var/log/understat" },
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{ competition: "La_Liga" }`), 0644)
	require.NoError(t, err)

	cfg, err = LoadConfig(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "/srv/understat", cfg.DataDir)
	require.Equal(t, 2000, cfg.LeaguePauseMillis)
	require.Equal(t, "La_Liga", cfg.Competition)
	require.Equal(t, "/var/log/understat", cfg.Log.Dir)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 3, cfg.MaxAttempts)
	require.Len(t, cfg.Leagues, 6)
	require.Equal(t, filepath.Join("/srv/understat", "understat_players_aggregated_2014_2024.csv"), cfg.HistoricalPath())
}
