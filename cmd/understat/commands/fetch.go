package commands

import (
	"fmt"
	"io"
	"os"
	"understat-pipeline/cmd/understat/utils"
	"understat-pipeline/internal/components/telemetry"
	"understat-pipeline/internal/pipeline"
	"understat-pipeline/internal/understat"
	"understat-pipeline/lib/restyutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches the current season of every league and appends it to the historical snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cfg.SourceOptions()
		if cfg.HTTPDumpDir != "" {
			output, err := restyutil.NewFilesystemOutput(cfg.HTTPDumpDir)
			if err != nil {
				return fmt.Errorf("create http dump directory: %w", err)
			}
			opts.Output = output
		}
		client := understat.NewClient(opts, telemetry.SlogAPI{})

		job := pipeline.NewFetchJob(cfg, client, clock, telemetry.SlogAPI{})
		report, err := job.Run(cmd.Context())
		renderFetchReport(os.Stdout, report)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		return nil
	},
}

func renderFetchReport(out io.Writer, report pipeline.FetchReport) {
	t := utils.NewTable(out)
	t.SetTitle(fmt.Sprintf("season %s", report.Season.Label()))
	t.AppendHeader(table.Row{"League", "Status", "Players", "Attempts", "Error"})
	for _, l := range report.Leagues {
		errText := ""
		if l.Err != nil {
			errText = l.Err.Error()
		}
		t.AppendRow(table.Row{l.League.Name, l.Status.String(), l.Players, l.Attempts, errText})
	}
	t.AppendFooter(table.Row{"", "rows", report.FreshRows, "", ""})
	t.Render()

	if report.LatestCSV != "" {
		fmt.Fprintf(out, "season snapshot: %s, %s\n", report.LatestCSV, report.LatestParquet)
	}
	if report.Merged {
		fmt.Fprintf(out, "combined snapshot (%d rows): %s, %s\n", report.CombinedRows, report.CombinedCSV, report.CombinedParquet)
	}
}
