package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the override file of a config, ex. config.json5 -> config.local.json5
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readFile decodes a json5 file into `out`, found is false when the file
// does not exist or is empty.
func readFile(path string, out any) (found bool, err error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(content) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(content, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads `name` and layers `<name>.local.<ext>` on top of it, fields set
// in the local file win. os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readFile(name, &out)
	if err != nil {
		return out, err
	}

	localPath := LocalPath(name)
	var override T
	foundLocal, err := readFile(localPath, &override)
	if err != nil {
		return out, err
	}
	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merged config with local overrides", "local", localPath)
	}
	return out, nil
}

// ReadConfigWithDefaults is ReadConfig but any field left unset by the files is
// taken from `defaults`. Missing files are not an error.
func ReadConfigWithDefaults[T any](name string, defaults T) (T, error) {
	out, err := ReadConfig[T](name)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return out, err
	}
	err = mergo.Merge(&out, defaults)
	if err != nil {
		return out, err
	}
	return out, nil
}

// ReadRecursively looks for `name` in the working directory and then in every
// parent up to the root, the first match is read with ReadConfig.
func ReadRecursively[T any](name string) (T, error) {
	var zero T
	current, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return zero, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return zero, os.ErrNotExist
		}
		current = parent
	}
}
