// Package dashboard renders a live progress surface for concurrently
// running inline commands and code fences. It is a presentation concern
// only: when the output stream is not a terminal the component is inert,
// and it never alters directive ordering, output capture, or exit codes.
package dashboard

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	tickInterval = 83 * time.Millisecond // ~12 Hz
	previewLen   = 15
	commandWidth = 40
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type row struct {
	id      int
	command string
	preview string
}

// Dashboard tracks live directives and repaints one line per entry.
type Dashboard struct {
	mu       sync.Mutex
	out      io.Writer
	enabled  bool
	rows     []*row
	byID     map[int]*row
	phase    int
	painted  int
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a dashboard writing to out. When tty is false every method is
// a no-op.
func New(out io.Writer, tty bool) *Dashboard {
	d := &Dashboard{
		out:     out,
		enabled: tty,
		byID:    map[int]*row{},
		stop:    make(chan struct{}),
	}
	if d.enabled {
		go d.loop()
	}
	return d
}

func (d *Dashboard) loop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			d.mu.Lock()
			d.clearLocked()
			d.mu.Unlock()
			return
		case <-ticker.C:
			d.mu.Lock()
			d.phase++
			d.paintLocked()
			d.mu.Unlock()
		}
	}
}

// Start registers a live directive.
func (d *Dashboard) Start(id int, command string) {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	r := &row{id: id, command: command}
	d.rows = append(d.rows, r)
	d.byID[id] = r
}

// Update appends a stdout chunk; only the tail is kept for preview.
func (d *Dashboard) Update(id int, chunk string) {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.byID[id]
	if !ok {
		return
	}
	s := strings.ReplaceAll(r.preview+chunk, "\n", " ")
	if n := len(s); n > previewLen {
		s = s[n-previewLen:]
	}
	r.preview = s
}

// Finish removes a terminated directive from the surface.
func (d *Dashboard) Finish(id int) {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.byID[id]
	if !ok {
		return
	}
	delete(d.byID, id)
	for i, existing := range d.rows {
		if existing == r {
			d.rows = append(d.rows[:i], d.rows[i+1:]...)
			break
		}
	}
}

// Close erases the surface and stops the repaint loop.
func (d *Dashboard) Close() {
	if !d.enabled {
		return
	}
	d.stopOnce.Do(func() { close(d.stop) })
}

// paintLocked rewrites the preceding N lines in place: cursor up, erase
// down, write. Rendering happens only when more than one directive is live.
func (d *Dashboard) paintLocked() {
	d.clearLocked()
	if len(d.rows) < 2 {
		return
	}
	spinner := color.New(color.FgCyan).Sprint(spinnerFrames[d.phase%len(spinnerFrames)])
	var b strings.Builder
	for _, r := range d.rows {
		cmd := r.command
		if len(cmd) > commandWidth {
			cmd = cmd[:commandWidth-1] + "…"
		}
		fmt.Fprintf(&b, "%s %-*s %s\n", spinner, commandWidth, cmd, r.preview)
	}
	fmt.Fprint(d.out, b.String())
	d.painted = len(d.rows)
}

func (d *Dashboard) clearLocked() {
	if d.painted == 0 {
		return
	}
	fmt.Fprintf(d.out, "\x1b[%dA\x1b[J", d.painted)
	d.painted = 0
}
