package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes every dumped HTTP exchange to <dir>/<id>.txt, it
// is what to look at when understat changes its response shape.
type FilesystemOutput struct {
	dir string
}

// NewFilesystemOutput starts from an empty `dir` so dumps of different runs
// never mix.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	if err := os.RemoveAll(dir); err != nil {
		return FilesystemOutput{}, fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return FilesystemOutput{}, fmt.Errorf("create %s: %w", dir, err)
	}
	return FilesystemOutput{dir: dir}, nil
}

func (o FilesystemOutput) Path(id string) string {
	return filepath.Join(o.dir, id+".txt")
}

// Write never fails the request being dumped, errors are only logged.
func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(o.Path(id), []byte(contents), 0644)
	if err != nil {
		slog.Warn("failed to dump http message", "id", id, "path", o.Path(id), "err", err)
	}
}
