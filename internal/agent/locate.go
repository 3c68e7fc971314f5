package agent

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

// Locate finds the agent file: as given, then <cwd>/.mdflow/<name>, then
// <home>/.mdflow/<name>, then every entry on PATH. Bare names with no
// separator get the full search; paths are taken as-is.
func Locate(name, cwd, home string) (string, error) {
	candidates := []string{name}
	if !strings.ContainsRune(name, os.PathSeparator) && !strings.Contains(name, "/") {
		candidates = append(candidates,
			filepath.Join(cwd, ".mdflow", name),
			filepath.Join(home, ".mdflow", name),
		)
		for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
			if dir == "" {
				continue
			}
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", types.NewError(types.KindFileNotFound, "agent file %q not found", name)
}

// DriverFromFilename parses the driver name and interactive marker out of
// the agent filename: task.claude.md yields claude; fix.i.claude.md yields
// claude with the interactive marker set.
func DriverFromFilename(path string) (driver string, interactive bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".md") {
		return "", false
	}
	parts := strings.Split(strings.TrimSuffix(base, ".md"), ".")
	if len(parts) < 2 {
		return "", false
	}
	driver = parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		if p == "i" {
			interactive = true
			break
		}
	}
	return driver, interactive
}

// Slug derives the per-agent log directory name from the file name.
func Slug(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".md")
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "agent"
	}
	return out
}
