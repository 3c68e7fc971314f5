// Package bundle expands glob directives into XML-tagged multi-file bundles.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/internal/tokens"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// DefaultMaxInputSize caps any single imported file.
const DefaultMaxInputSize = 10 * 1024 * 1024

// Options configure a glob expansion.
type Options struct {
	// MaxInputSize caps each matched file; DefaultMaxInputSize when zero.
	MaxInputSize int64
	// ContextWindow is the resolved token limit for the whole bundle.
	ContextWindow int
	// Force disables the token ceiling (MDFLOW_FORCE_CONTEXT).
	Force bool
	// Warn receives human-facing warnings (over 50% of the limit).
	Warn func(msg string)
}

// Expand matches pattern under baseDir and formats the surviving files as
// an XML bundle. A pattern matching zero files yields an empty string.
func Expand(pattern, baseDir string, opts Options) (string, error) {
	if opts.MaxInputSize <= 0 {
		opts.MaxInputSize = DefaultMaxInputSize
	}

	full := expandHome(pattern)
	if !filepath.IsAbs(full) {
		// Join also cleans ./ and ../ segments out of the pattern.
		full = filepath.Join(baseDir, full)
	}

	matches, err := doublestar.FilepathGlob(full)
	if err != nil {
		return "", types.WrapError(types.KindImportError, err, "bad glob pattern %q", pattern)
	}

	ignore := loadIgnoreSet(baseDir)

	type entry struct {
		rel     string
		abs     string
		content string
	}
	var entries []entry
	for _, abs := range matches {
		rel, relErr := filepath.Rel(baseDir, abs)
		if relErr != nil {
			rel = abs
		}
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if ignore.Match(rel) {
			continue
		}
		if IsBinaryFile(abs) {
			logging.Debug().Str("file", abs).Msg("skipping binary file in glob")
			continue
		}
		if info.Size() > opts.MaxInputSize {
			return "", types.NewError(types.KindFileSizeLimit,
				"%s exceeds maximum input size (%d bytes)", abs, opts.MaxInputSize)
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return "", types.WrapError(types.KindImportError, err, "reading %s", abs)
		}
		entries = append(entries, entry{rel: rel, abs: abs, content: string(data)})
	}

	if len(entries) == 0 {
		return "", nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	var blocks []string
	total := 0
	for _, e := range entries {
		total += tokens.Estimate(e.content)
		blocks = append(blocks, formatBlock(e.rel, e.content))
	}

	if limit := opts.ContextWindow; limit > 0 {
		if total > limit && !opts.Force {
			return "", types.NewError(types.KindFileSizeLimit,
				"glob %q matched %d files totalling ~%d tokens, over the %d-token context limit (set %s to override)",
				pattern, len(entries), total, limit, tokens.EnvForceContext)
		}
		if total > limit/2 && opts.Warn != nil {
			opts.Warn(fmt.Sprintf("glob %q is using ~%d of %d context tokens", pattern, total, limit))
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}

func formatBlock(relPath, content string) string {
	tag := TagSlug(filepath.Base(relPath))
	return fmt.Sprintf("<%s path=%q>\n%s\n</%s>", tag, filepath.ToSlash(relPath), content, tag)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// TagSlug derives the XML tag for a file: name without extension, lowered,
// non-alphanumeric runs collapsed to "-", a leading digit prefixed with "_",
// "file" when nothing is left.
func TagSlug(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	slug := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "file"
	}
	if slug[0] >= '0' && slug[0] <= '9' {
		slug = "_" + slug
	}
	return slug
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
