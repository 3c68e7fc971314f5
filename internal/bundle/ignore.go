package bundle

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mdflow-ai/mdflow/internal/logging"
)

// seedPatterns are always ignored regardless of any .gitignore.
var seedPatterns = []string{".git", "node_modules", ".DS_Store", "*.log"}

// ignoreSet filters glob matches the way git would, assembled from every
// .gitignore between the base directory and the repository root.
type ignoreSet struct {
	patterns []string
}

// loadIgnoreSet walks from dir up toward the filesystem root, collecting
// each .gitignore it sees and stopping at the first directory containing a
// .git entry. The seeds are always present.
func loadIgnoreSet(dir string) *ignoreSet {
	set := &ignoreSet{patterns: append([]string(nil), seedPatterns...)}

	current := dir
	for {
		set.addFile(filepath.Join(current, ".gitignore"))
		if _, err := os.Lstat(filepath.Join(current, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return set
}

func (s *ignoreSet) addFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			// Negations are not honored; skipping one only over-excludes.
			logging.Debug().Str("pattern", line).Msg("gitignore negation skipped")
			continue
		}
		line = strings.TrimSuffix(line, "/")
		s.patterns = append(s.patterns, line)
	}
}

// Match reports whether the relative path (slash-separated) is ignored.
// Patterns without a slash match any path segment; patterns with a slash
// match against the whole relative path.
func (s *ignoreSet) Match(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	segments := strings.Split(relPath, "/")
	for _, pattern := range s.patterns {
		if strings.Contains(pattern, "/") {
			pattern = strings.TrimPrefix(pattern, "/")
			if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(pattern+"/**", relPath); err == nil && ok {
				return true
			}
			continue
		}
		for _, seg := range segments {
			if ok, err := doublestar.Match(pattern, seg); err == nil && ok {
				return true
			}
		}
	}
	return false
}
