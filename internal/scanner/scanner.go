// Package scanner enumerates candidate video files under a source tree.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".m4v":  true,
	".wmv":  true,
	".ts":   true,
	".m2ts": true,
}

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanVideos recursively collects video files under root, sorted by path so
// batch runs process files in a deterministic order. An invalid root is an
// error; unreadable subtrees are skipped.
func ScanVideos(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid directory %s: not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsVideoFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
