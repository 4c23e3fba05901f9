package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// tempFilePrefix marks spreadsheet lock files left by an open editor.
const tempFilePrefix = "~$"

// Eligible reports whether path names a table file a run should process.
func Eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, tempFilePrefix) {
		return false
	}

	return strings.EqualFold(filepath.Ext(base), ".csv")
}

// Collect walks root recursively and returns every eligible table file as a
// slash-separated path relative to root, sorted lexicographically. The sort
// order is the run's processing order, so allocation is reproducible.
func Collect(root string) ([]string, error) {
	var targets []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Eligible(path) {
			return nil
		}

		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return rerr
		}
		targets = append(targets, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(targets)

	return targets, nil
}

// CollectFromList filters a newline-separated list of changed paths (for
// example a git diff listing) down to eligible files that exist under root.
// Paths may be absolute or relative to root. The result is sorted and
// deduplicated; an empty result means the caller should fall back to a full
// Collect.
func CollectFromList(root, list string) ([]string, error) {
	seen := make(map[string]struct{})
	var targets []string

	for _, line := range strings.Split(list, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !Eligible(line) {
			continue
		}

		abs := line
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, line)
		}

		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}

		rel, err := filepath.Rel(root, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}

		key := filepath.ToSlash(rel)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		targets = append(targets, key)
	}

	sort.Strings(targets)

	return targets, nil
}
