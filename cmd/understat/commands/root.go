package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	"understat-pipeline/internal/components/chrono"
	"understat-pipeline/internal/pipeline"
	"understat-pipeline/lib/serviceutil"
	"understat-pipeline/lib/telemetry"

	"github.com/spf13/cobra"
)

const serviceName = "understat"

var (
	configPath string
	debug      bool
)

// set up by the root command before any subcommand runs
var (
	cfg     pipeline.Config
	clock   chrono.API
	tel     telemetry.Telemetry
	started time.Time
)

var rootCmd = &cobra.Command{
	Use:   "understat",
	Short: "understat fetches player statistics from understat.com and summarizes them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		started = time.Now()

		err := serviceutil.LoadDotenv(".env", ".env.local")
		if err != nil {
			return fmt.Errorf("load env: %w", err)
		}
		cfg, err = pipeline.LoadConfig(configPath)
		if err != nil {
			return err
		}
		err = telemetry.InitSlog(cfg.Log, debug)
		if err != nil {
			return err
		}

		std, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		clock = std

		tel, err = telemetry.SetupFromEnv(cmd.Context(), serviceName)
		if err != nil {
			slog.Warn("failed to setup telemetry, continuing without exporters", "err", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// finish runs after every command, failed ones included, so the run stats
// and pending spans of a failed run still get exported.
var finish = func(ctx context.Context, name string) {
	if started.IsZero() {
		return
	}
	telemetry.ReportRunStats(ctx, name, started)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := tel.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "The config file to read, a missing file means defaults.")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level.")
}

func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	name := serviceName
	if cmd != nil {
		name = cmd.Name()
	}
	finish(ctx, name)
	return err
}

func ExecuteContext(ctx context.Context) {
	err := execute(ctx, os.Args[1:])
	if err != nil {
		serviceutil.Fatal("understat failed", err)
	}
}
