package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var workbookExts = map[string]bool{".xlsx": true, ".xlsm": true, ".xls": true, ".csv": true}

// expandInputs resolves a glob into workbook paths. Directories contribute
// the workbooks directly inside them.
func expandInputs(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files found matching pattern %s", pattern)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		if !info.IsDir() {
			files = append(files, match)
			continue
		}

		entries, err := os.ReadDir(match)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !workbookExts[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			files = append(files, filepath.Join(match, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
