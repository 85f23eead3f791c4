package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

var DefaultInclude = []string{"**/*.md"}

// Scan returns the regular files under root matching any include pattern and
// no exclude pattern. Patterns are relative to root and support "**".
func Scan(root string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("document: invalid pattern %q", p)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range include {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			rel, err := filepath.Rel(root, m)
			if err != nil {
				return nil, err
			}
			excluded, err := matchesAny(exclude, rel)
			if err != nil {
				return nil, err
			}
			if excluded || !isRegular(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func matchesAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.PathMatch(filepath.FromSlash(p), rel)
		if err != nil {
			return false, fmt.Errorf("match %s: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
