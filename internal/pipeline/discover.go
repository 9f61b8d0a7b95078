package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported video file extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".dv":   true,
	".mov":  true,
	".mp4":  true,
	".m2ts": true,
	".mts":  true,
	".avi":  true,
	".mkv":  true,
	".mpg":  true,
	".mpeg": true,
	".m4v":  true,
}

// Discover walks dir, collects files with video extensions, skips hidden
// files (bounce leftovers among them), and returns the paths sorted
// lexicographically for deterministic processing order.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Expand turns command-line arguments into the files of a batch. Directories
// are discovered recursively; plain files are kept whatever their extension.
// Duplicates are dropped, first occurrence wins.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			add(a)
			continue
		}
		found, err := Discover(a)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}
