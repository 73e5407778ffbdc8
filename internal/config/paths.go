package config

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the project config file looked up by Locate.
const FileName = ".dossier.yml"

// Locate returns the nearest FileName in dir or one of its parents, or ""
// when there is none. An empty dir starts from the working directory.
func Locate(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	start, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for candidate := range ancestors(start) {
		path := filepath.Join(candidate, FileName)
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			return "", fmt.Errorf("config path %q is a directory", path)
		case err == nil:
			return path, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("stat config path %q: %w", path, err)
		}
	}
	return "", nil
}

// ancestors yields dir and each parent up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}
