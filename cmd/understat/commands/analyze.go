package commands

import (
	"fmt"
	"os"
	"understat-pipeline/internal/components/telemetry"
	"understat-pipeline/internal/pipeline"

	"github.com/spf13/cobra"
)

var competition string

func init() {
	analyzeCmd.Flags().StringVar(&competition, "competition", "", "The league to summarize, overrides the config.")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [--competition <league>]",
	Short: "Summarizes one competition out of the combined snapshot into a JSON export.",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobCfg := cfg
		if competition != "" {
			jobCfg.Competition = competition
		}

		job := pipeline.NewAnalyzeJob(jobCfg, clock, telemetry.SlogAPI{})
		summary, err := job.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		renderOverview(os.Stdout, jobCfg.Competition, summary.Overview)
		fmt.Fprintf(os.Stdout, "exported to %s\n", jobCfg.AnalysisPath())
		return nil
	},
}
