package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"understat-pipeline/cmd/understat/utils"
	"understat-pipeline/internal/analysis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary [path/to/export.json]",
	Short: "Pretty prints an analysis export, defaults to the configured export.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.AnalysisPath()
		if len(args) > 0 {
			path = args[0]
		}
		summary, err := analysis.ReadSummary(path)
		if err != nil {
			return fmt.Errorf("read analysis export: %w", err)
		}
		renderSummary(os.Stdout, summary)
		return nil
	},
}

func renderOverview(out io.Writer, competition string, overview analysis.Overview) {
	t := utils.NewTable(out)
	if competition != "" {
		t.SetTitle(competition)
	}
	t.AppendRows([]table.Row{
		{"records", overview.TotalRecords},
		{"seasons", strings.Join(overview.SeasonsCovered, ", ")},
		{"players", overview.UniquePlayers},
		{"teams", overview.TeamsCount},
		{"current season", overview.CurrentSeason},
		{"last updated", overview.LastUpdated},
	})
	t.Render()
}

func renderSummary(out io.Writer, summary analysis.Summary) {
	renderOverview(out, "", summary.Overview)

	scorers := utils.NewTable(out)
	scorers.SetTitle("top scorers")
	scorers.AppendHeader(table.Row{"Season", "Player", "Team", "Goals", "xG"})
	for _, s := range summary.TopScorersBySeason {
		scorers.AppendRow(table.Row{s.Season, s.Player, s.Team, s.Goals, fmt.Sprintf("%.2f", s.XG)})
	}
	scorers.Render()

	positions := utils.NewTable(out)
	positions.SetTitle("positions")
	positions.AppendHeader(table.Row{"Position", "Goals", "xG", "Assists", "Key passes", "Shots"})
	for _, p := range summary.PositionAnalysis {
		positions.AppendRow(table.Row{
			p.Position,
			fmt.Sprintf("%.2f", p.AvgGoals),
			fmt.Sprintf("%.2f", p.AvgXG),
			fmt.Sprintf("%.2f", p.AvgAssists),
			fmt.Sprintf("%.2f", p.AvgKeyPasses),
			fmt.Sprintf("%.2f", p.AvgShots),
		})
	}
	positions.Render()

	fmt.Fprintf(
		out,
		"%d team seasons, %d players in the current season sample\n",
		len(summary.TeamPerformance),
		len(summary.XGVsGoalsCurrent),
	)
}
