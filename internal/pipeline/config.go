package pipeline

import (
	"fmt"
	"path/filepath"
	"time"
	"understat-pipeline/internal/understat"
	"understat-pipeline/lib/configutil"
	"understat-pipeline/lib/telemetry"
)

// Config holds every path, league and threshold the jobs use, unset fields
// fall back to DefaultConfig.
type Config struct {
	// directory every snapshot and export is read from and written to
	DataDir string `json:"data_dir"`
	// historical snapshot the fresh season is appended to
	HistoricalFile string `json:"historical_file"`
	// combined snapshots are written as <name>.csv and <name>.parquet
	CombinedName string `json:"combined_name"`
	// per run snapshots are written as <prefix>_<season>_latest.csv/.parquet
	LatestPrefix string `json:"latest_prefix"`

	Leagues []understat.League `json:"leagues"`
	// pause between two league requests
	LeaguePauseMillis int `json:"league_pause_ms"`

	SourceURL          string `json:"source_url"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
	MaxAttempts        int    `json:"max_attempts"`
	InitialBackoffMsec int    `json:"initial_backoff_ms"`
	// when set every HTTP exchange with understat is dumped into this directory
	HTTPDumpDir string `json:"http_dump_dir"`

	// league filtered by the analyze job
	Competition  string `json:"competition"`
	AnalysisFile string `json:"analysis_file"`

	// when set the combined table is mirrored into this sqlite database
	SqlitePath string `json:"sqlite_path"`
	// IANA name of the timezone the season is resolved in
	Timezone string `json:"timezone"`

	Log telemetry.LogConfig `json:"log"`
}

func DefaultConfig() Config {
	leagues := make([]understat.League, len(understat.Leagues))
	copy(leagues, understat.Leagues)

	return Config{
		DataDir:            ".",
		HistoricalFile:     "understat_players_aggregated_2014_2024.csv",
		CombinedName:       "understat_players_aggregated_2014_td",
		LatestPrefix:       "understat_players_aggregated",
		Leagues:            leagues,
		LeaguePauseMillis:  1500,
		SourceURL:          understat.PlayersStatsURL,
		TimeoutSeconds:     30,
		MaxAttempts:        3,
		InitialBackoffMsec: 1000,
		Competition:        "EPL",
		AnalysisFile:       "epl_analysis_data.json",
		Timezone:           "Local",
		Log: telemetry.LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads `path` (and its .local. override) on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func (c Config) path(name string) string {
	return filepath.Join(c.DataDir, name)
}

func (c Config) HistoricalPath() string {
	return c.path(c.HistoricalFile)
}

func (c Config) CombinedCSVPath() string {
	return c.path(c.CombinedName + ".csv")
}

func (c Config) CombinedParquetPath() string {
	return c.path(c.CombinedName + ".parquet")
}

// LatestPaths returns the csv and parquet paths of the per run snapshots.
func (c Config) LatestPaths(seasonCode string) (string, string) {
	name := fmt.Sprintf("%s_%s_latest", c.LatestPrefix, seasonCode)
	return c.path(name + ".csv"), c.path(name + ".parquet")
}

func (c Config) AnalysisPath() string {
	return c.path(c.AnalysisFile)
}

func (c Config) LeaguePause() time.Duration {
	return time.Duration(c.LeaguePauseMillis) * time.Millisecond
}

// SourceOptions are the understat client options described by the config.
func (c Config) SourceOptions() understat.Options {
	return understat.Options{
		URL:            c.SourceURL,
		Timeout:        time.Duration(c.TimeoutSeconds) * time.Second,
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: time.Duration(c.InitialBackoffMsec) * time.Millisecond,
	}
}
