package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"understat-pipeline/internal/analysis"
	"understat-pipeline/internal/pipeline"
	"understat-pipeline/internal/understat"
	"understat-pipeline/lib/season"

	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	summary := analysis.Summary{
		Overview: analysis.Overview{
			TotalRecords:   2,
			SeasonsCovered: []string{"2023/24", "2024/25"},
			CurrentSeason:  "2024/25",
		},
		TopScorersBySeason: []analysis.TopScorer{
			{Season: "2023/24", Player: "Erling Haaland", Team: "Manchester City", Goals: 27, XG: 29.754},
		},
		PositionAnalysis: []analysis.PositionAverage{
			{Position: "GK", AvgShots: 0.1},
		},
	}

	var out strings.Builder
	renderSummary(&out, summary)
	text := out.String()
	require.Contains(t, text, "2023/24, 2024/25")
	require.Contains(t, text, "Erling Haaland")
	require.Contains(t, text, "29.75")
	require.Contains(t, text, "GK")
	require.Contains(t, text, "0 team seasons, 0 players in the current season sample")
}

func TestRenderFetchReport(t *testing.T) {
	report := pipeline.FetchReport{
		Season: season.Current(time.Date(2025, time.September, 14, 12, 0, 0, 0, time.UTC)),
		Leagues: []pipeline.LeagueReport{
			{League: understat.Leagues[0], Status: understat.FetchOK, Players: 500, Attempts: 1},
			{League: understat.Leagues[1], Status: understat.FetchExhausted, Attempts: 3, Err: errors.New("503 Service Unavailable")},
		},
		FreshRows: 500,
		LatestCSV: "latest.csv", LatestParquet: "latest.parquet",
	}

	var out strings.Builder
	renderFetchReport(&out, report)
	text := out.String()
	require.Contains(t, text, "season 2025/26")
	require.Contains(t, text, "La_Liga")
	require.Contains(t, text, "exhausted")
	require.Contains(t, text, "503 Service Unavailable")
	require.Contains(t, text, "season snapshot: latest.csv, latest.parquet")
	require.NotContains(t, text, "combined snapshot")
}

func TestFailedCommandStillFinishes(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.json5")
	err := os.WriteFile(configFile, []byte(`{data_dir: "`+filepath.ToSlash(dir)+`", timezone: "UTC"}`), 0644)
	require.NoError(t, err)

	var finished []string
	original := finish
	finish = func(ctx context.Context, name string) {
		finished = append(finished, name)
	}
	t.Cleanup(func() { finish = original })

	// there is no combined snapshot to analyze
	err = execute(context.Background(), []string{"analyze", "--config", configFile})
	require.ErrorContains(t, err, "analyze")
	require.Equal(t, []string{"analyze"}, finished)
	require.Equal(t, dir, cfg.DataDir)
}
