package dashboard

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDashboard_InertOffTTY(t *testing.T) {
	var buf lockedBuffer
	d := New(&buf, false)
	d.Start(1, "echo hi")
	d.Update(1, "output")
	d.Finish(1)
	d.Close()
	assert.Empty(t, buf.String())
}

func TestDashboard_RendersWithTwoLiveDirectives(t *testing.T) {
	var buf lockedBuffer
	d := New(&buf, true)
	d.Start(1, "sleep 1")
	d.Start(2, "curl https://example.com")
	d.Update(2, "a very long chunk of streamed output")

	time.Sleep(300 * time.Millisecond)
	d.Finish(1)
	d.Finish(2)
	d.Close()

	out := buf.String()
	assert.Contains(t, out, "sleep 1")
	// Only the last 15 characters of stdout are previewed.
	assert.Contains(t, out, "streamed output")
	assert.NotContains(t, out, "a very long chunk")
}

func TestDashboard_SingleDirectiveStaysQuiet(t *testing.T) {
	var buf lockedBuffer
	d := New(&buf, true)
	d.Start(1, "only one")
	time.Sleep(200 * time.Millisecond)
	d.Finish(1)
	d.Close()
	assert.NotContains(t, buf.String(), "only one")
}
