package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// DefaultPattern matches the drilling-machine input files.
const DefaultPattern = "drilling_machine*.json"

// Discover returns the regular files in inputDir whose names match pattern,
// deduplicated and sorted lexicographically so repeated runs process files
// in the same order.
func Discover(inputDir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(inputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		files = append(files, filepath.Clean(path))
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}
