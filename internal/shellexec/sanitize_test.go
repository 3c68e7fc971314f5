package shellexec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red text", StripANSI("\x1b[31mred\x1b[0m text"))
	assert.Equal(t, "plain", StripANSI("plain"))
	assert.Equal(t, "move", StripANSI("\x1b[2Amove"))
}

func TestSanitize_BreaksEndRaw(t *testing.T) {
	out := Sanitize("before {% endraw %} after")
	assert.NotContains(t, out, "{% endraw %}")
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")

	out = Sanitize("{%endraw%}")
	assert.NotContains(t, out, "{%endraw%}")
}

func TestSanitize_Truncates(t *testing.T) {
	out := Sanitize(strings.Repeat("x", MaxOutputLength+500))
	assert.Len(t, out, MaxOutputLength+len("\n\n[Output truncated at 100000 characters]"))
	assert.Contains(t, out, "truncated")
}

func TestWrapRaw(t *testing.T) {
	assert.Equal(t, "{% raw %}\nhello\n{% endraw %}", WrapRaw("hello"))
}

func TestCombineStreams(t *testing.T) {
	assert.Equal(t, "err\nout", CombineStreams("err\n", "out\n"))
	assert.Equal(t, "out", CombineStreams("", "out"))
	assert.Equal(t, "err", CombineStreams("err", ""))
	assert.Equal(t, "", CombineStreams("", ""))
}
