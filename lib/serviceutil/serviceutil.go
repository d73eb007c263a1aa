package serviceutil

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Fatal logs the error and exits, it is meant for failures a batch run
// cannot recover from.
func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

// LoadDotenv loads the given env files into the process environment without
// overriding variables that are already set. Files that do not exist are skipped.
func LoadDotenv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		slog.Debug("loaded env file", "file", f)
	}
	return nil
}
