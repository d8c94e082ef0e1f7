// Package fileutil provides case-insensitive file lookup for ROM and cue files.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no entry matches the requested name.
var ErrNotFound = errors.New("file not found")

// FindFileCaseInsensitive searches dir for a regular file whose name matches
// filename ignoring case. ROM collections copied from other systems often
// disagree on casing ("PONG.CH8" vs "pong.ch8").
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/roms", "PONG.CH8")
//	// finds "pong.ch8", "Pong.ch8", ...
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if name, ok := match(entries, filename); ok {
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
}

// FindFileCaseInsensitiveFS is FindFileCaseInsensitive for an fs.FS
// (embed.FS, os.DirFS, ebiten's dropped files). The returned path uses
// forward slashes.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if name, ok := match(entries, filename); ok {
		return path.Join(dir, name), nil
	}
	return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
}

// ResolvePath returns p if it exists, otherwise the case-insensitive match of
// its base name inside its directory.
func ResolvePath(p string) (string, error) {
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	return FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
}

// HasExtension reports whether name ends in one of exts, ignoring case.
// Extensions include the leading dot.
func HasExtension(name string, exts ...string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func match(entries []fs.DirEntry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return entry.Name(), true
		}
	}
	return "", false
}
