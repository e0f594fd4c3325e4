package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindExportFiles walks dir and returns every candidate export file (.csv or
// .txt), skipping OS metadata files. Paths are returned sorted.
func FindExportFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &FileError{Path: dir, Op: "open", Err: err}
	}
	if !info.IsDir() {
		return nil, &FileError{Path: dir, Op: "open", Err: fmt.Errorf("not a directory")}
	}

	var files []string
	var dirsScanned int

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			dirsScanned++
			return nil
		}
		if isExportCandidate(info.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		LogInfo("Scanned %d directories under %s, found no .csv or .txt files", dirsScanned, dir)
	}
	sort.Strings(files)
	return files, nil
}

func isExportCandidate(name string) bool {
	if strings.HasPrefix(name, "$") || strings.HasPrefix(name, "._") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv" || ext == ".txt"
}

// ResolveInputs combines explicit paths with files discovered under dir
func ResolveInputs(args []string, dir string) ([]string, error) {
	dir = expandHome(dir)
	paths := append([]string(nil), args...)
	if dir != "" || len(paths) == 0 {
		found, err := FindExportFiles(dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no export files found (pass files or --path to the directory holding your Dexcom exports)")
	}
	return paths, nil
}

// expandHome expands a leading ~/ as config files are not shell expanded
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
