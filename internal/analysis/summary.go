package analysis

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"understat-pipeline/lib/osutil"

	"github.com/goccy/go-json"
)

// Summary is the precomputed view of one competition consumed by the web page.
type Summary struct {
	Overview           Overview          `json:"overview"`
	TopScorersBySeason []TopScorer       `json:"top_scorers_by_season"`
	XGVsGoalsCurrent   []ScatterPoint    `json:"xg_vs_goals_current"`
	TeamPerformance    []TeamSeason      `json:"team_performance"`
	PositionAnalysis   []PositionAverage `json:"position_analysis"`
}

type Overview struct {
	TotalRecords   int      `json:"total_records"`
	SeasonsCovered []string `json:"seasons_covered"`
	UniquePlayers  int      `json:"unique_players"`
	TeamsCount     int      `json:"teams_count"`
	CurrentSeason  string   `json:"current_season"`
	LastUpdated    string   `json:"last_updated"`
}

type TopScorer struct {
	Season string  `json:"season"`
	Player string  `json:"player"`
	Team   string  `json:"team"`
	Goals  int     `json:"goals"`
	XG     float64 `json:"xG"`
}

type ScatterPoint struct {
	Name  string  `json:"name"`
	Team  string  `json:"team"`
	Goals int     `json:"goals"`
	XG    float64 `json:"xG"`
	Games int     `json:"games"`
}

type TeamSeason struct {
	Season       string  `json:"season"`
	Team         string  `json:"team"`
	TotalGoals   int     `json:"total_goals"`
	TotalXG      float64 `json:"total_xG"`
	TotalAssists int     `json:"total_assists"`
}

type PositionAverage struct {
	Position     string  `json:"position"`
	AvgGoals     float64 `json:"avg_goals"`
	AvgXG        float64 `json:"avg_xG"`
	AvgAssists   float64 `json:"avg_assists"`
	AvgKeyPasses float64 `json:"avg_key_passes"`
	AvgShots     float64 `json:"avg_shots"`
}

// EncodeSummary writes the summary as JSON indented with 2 spaces.
func EncodeSummary(w io.Writer, summary Summary) error {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// WriteSummary replaces the export at path.
func WriteSummary(path string, summary Summary) error {
	return osutil.WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeSummary(w, summary)
	})
}

func ReadSummary(path string) (Summary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	dec := json.NewDecoder(bytes.NewReader(content))
	err = dec.Decode(&summary)
	if err != nil {
		return Summary{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return summary, nil
}
