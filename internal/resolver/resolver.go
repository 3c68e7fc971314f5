// Package resolver orchestrates directive resolution: parse, resolve under
// a bounded-concurrency group, inject. The final body is deterministic
// regardless of completion order because replacements are applied in
// descending index order.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mdflow-ai/mdflow/internal/bundle"
	"github.com/mdflow-ai/mdflow/internal/directive"
	"github.com/mdflow-ai/mdflow/internal/fetch"
	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/internal/shellexec"
	"github.com/mdflow-ai/mdflow/internal/symbol"
	"github.com/mdflow-ai/mdflow/internal/tokens"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// DefaultConcurrency is the resolver semaphore capacity.
const DefaultConcurrency = 10

// ImportStack is the chain of files currently being expanded. It is passed
// by value into each recursion; sibling resolutions never share a stack.
type ImportStack struct {
	display   []string
	canonical []string
}

// Push returns a new stack with the entry appended.
func (s ImportStack) Push(display, canonical string) ImportStack {
	return ImportStack{
		display:   append(append([]string(nil), s.display...), display),
		canonical: append(append([]string(nil), s.canonical...), canonical),
	}
}

// Contains reports whether the canonical path is already being expanded.
func (s ImportStack) Contains(canonical string) bool {
	for _, c := range s.canonical {
		if c == canonical {
			return true
		}
	}
	return false
}

// Chain renders the import chain ending at the offending entry.
func (s ImportStack) Chain(display string) string {
	return strings.Join(append(append([]string(nil), s.display...), display), " -> ")
}

// Tracker records the logical paths and URLs actually resolved, in
// completion order. Dry-run introspection only.
type Tracker struct {
	mu      sync.Mutex
	entries []string
}

func (t *Tracker) record(entry string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
}

// Entries returns the recorded list.
func (t *Tracker) Entries() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.entries...)
}

// Progress receives lifecycle events for live command directives.
type Progress interface {
	Start(id int, command string)
	Update(id int, chunk string)
	Finish(id int)
}

// Resolver expands the directives of a body into replacement text.
type Resolver struct {
	// Concurrency caps in-flight resolutions; DefaultConcurrency if zero.
	Concurrency int
	// MaxInputSize caps each imported file.
	MaxInputSize int64
	// ContextWindow is the token limit for glob bundles.
	ContextWindow int
	// Shell runs command and fence directives. Its Progress field is
	// overridden per directive.
	Shell shellexec.Runner
	// Fetcher resolves URL directives.
	Fetcher *fetch.Fetcher
	// Dash receives live-directive events; may be nil.
	Dash Progress
	// Tracker records resolved imports; may be nil.
	Tracker *Tracker
	// Warn receives human-facing warnings; may be nil.
	Warn func(msg string)
}

// Expand runs the three-phase pipeline over body. baseDir is the directory
// of the containing file; stack holds the files already being expanded.
func (r *Resolver) Expand(ctx context.Context, body, baseDir string, stack ImportStack) (string, error) {
	dirs := directive.Parse(body)
	if len(dirs) == 0 {
		return body, nil
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	replacements := make([]string, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range dirs {
		g.Go(func() error {
			text, err := r.resolve(gctx, d, baseDir, stack)
			if err != nil {
				return err
			}
			replacements[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	// Inject in descending index order so earlier offsets stay valid.
	order := make([]int, len(dirs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return dirs[order[a]].Index > dirs[order[b]].Index })

	out := body
	for _, i := range order {
		d := dirs[i]
		out = out[:d.Index] + replacements[i] + out[d.End():]
	}
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, d directive.Directive, baseDir string, stack ImportStack) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch d.Kind {
	case directive.KindFile:
		return r.resolveFile(ctx, d, baseDir, stack)
	case directive.KindGlob:
		r.Tracker.record(d.Path)
		return bundle.Expand(d.Path, baseDir, bundle.Options{
			MaxInputSize:  r.MaxInputSize,
			ContextWindow: r.ContextWindow,
			Force:         tokens.ForceContext(),
			Warn:          r.Warn,
		})
	case directive.KindSymbol:
		return r.resolveSymbol(d, baseDir, stack)
	case directive.KindURL:
		r.Tracker.record(d.URL)
		return r.Fetcher.Text(ctx, d.URL)
	case directive.KindCommand:
		return r.runLive(d.Index, d.Text, func(sh *shellexec.Runner) (string, error) {
			return sh.Command(ctx, d.Text, baseDir)
		})
	case directive.KindExecFence:
		label := d.Shebang
		if d.Lang != "" {
			label = d.Lang + ": " + d.Shebang
		}
		return r.runLive(d.Index, label, func(sh *shellexec.Runner) (string, error) {
			return sh.Fence(ctx, d, baseDir)
		})
	default:
		return "", types.NewError(types.KindImportError, "unhandled directive kind %s", d.Kind)
	}
}

// runLive wires a command or fence into the dashboard for its lifetime,
// keyed by the directive's body index.
func (r *Resolver) runLive(id int, label string, run func(*shellexec.Runner) (string, error)) (string, error) {
	sh := r.Shell
	if r.Dash != nil {
		r.Dash.Start(id, label)
		sh.Progress = func(chunk string) { r.Dash.Update(id, chunk) }
		defer r.Dash.Finish(id)
	}
	return run(&sh)
}

func (r *Resolver) resolveFile(ctx context.Context, d directive.Directive, baseDir string, stack ImportStack) (string, error) {
	path := resolvePath(d.Path, baseDir)

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		// A symlink pointing at itself surfaces as a link-resolution
		// failure; report it as the cycle it is.
		if strings.Contains(err.Error(), "too many links") {
			return "", types.NewError(types.KindCircularImport,
				"circular import: %s", stack.Chain(d.Path))
		}
		return "", types.NewError(types.KindFileNotFound, "import %s not found", d.Path)
	}
	canonical, _ = filepath.Abs(canonical)

	if stack.Contains(canonical) {
		return "", types.NewError(types.KindCircularImport,
			"circular import: %s", stack.Chain(d.Path))
	}

	content, err := r.readImport(path, d.Path)
	if err != nil {
		return "", err
	}

	if d.StartLine > 0 {
		content = sliceLines(content, d.StartLine, d.EndLine)
	}

	r.Tracker.record(d.Path)

	// File imports recurse with the imported file's directory as base.
	return r.Expand(ctx, content, filepath.Dir(path), stack.Push(d.Path, canonical))
}

func (r *Resolver) resolveSymbol(d directive.Directive, baseDir string, _ ImportStack) (string, error) {
	path := resolvePath(d.Path, baseDir)
	content, err := r.readImport(path, d.Path)
	if err != nil {
		return "", err
	}
	r.Tracker.record(d.Path + "#" + d.Symbol)
	return symbol.Extract(content, d.Symbol)
}

// readImport loads a directly imported file, enforcing existence, the input
// size cap, and the binary gate.
func (r *Resolver) readImport(path, display string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", types.NewError(types.KindFileNotFound, "import %s not found", display)
	}
	if info.IsDir() {
		return "", types.NewError(types.KindFileNotFound, "import %s is a directory", display)
	}
	maxSize := r.MaxInputSize
	if maxSize <= 0 {
		maxSize = bundle.DefaultMaxInputSize
	}
	if info.Size() > maxSize {
		return "", types.NewError(types.KindFileSizeLimit,
			"%s exceeds maximum input size (%d bytes)", display, maxSize)
	}
	if bundle.IsBinaryFile(path) {
		return "", types.NewError(types.KindBinaryFileImport, "%s is a binary file", display)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", types.WrapError(types.KindImportError, err, "reading %s", display)
	}
	logging.Debug().Str("file", path).Msg("imported file")
	return string(data), nil
}

// sliceLines returns lines start..end inclusive, 1-indexed, clamped.
func sliceLines(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) || end < start {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

func resolvePath(p, baseDir string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
