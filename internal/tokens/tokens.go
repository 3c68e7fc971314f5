// Package tokens provides approximate token accounting for context-limit
// enforcement. Estimates use the chars/4 rule; exact tokenization is the
// driver's business, not ours.
package tokens

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides. The MA_-prefixed names are accepted for
// compatibility with older releases.
const (
	EnvModel               = "MDFLOW_MODEL"
	EnvModelCompat         = "MA_MODEL"
	EnvContextWindow       = "MDFLOW_CONTEXT_WINDOW"
	EnvContextWindowCompat = "MA_CONTEXT_WINDOW"
	EnvForceContext        = "MDFLOW_FORCE_CONTEXT"
	EnvForceContextCompat  = "MA_FORCE_CONTEXT"
)

// DefaultContextWindow is used when neither model nor override resolves.
const DefaultContextWindow = 200_000

// modelWindows maps model-name substrings to context windows.
var modelWindows = []struct {
	match  string
	window int
}{
	{"gemini", 1_000_000},
	{"claude", 200_000},
	{"gpt-5", 272_000},
	{"gpt-4o", 128_000},
	{"o3", 200_000},
	{"grok", 256_000},
}

// Estimate approximates the token count of text.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// ContextWindow resolves the applicable context limit. Precedence: explicit
// per-file override, MDFLOW_CONTEXT_WINDOW env, model lookup (front matter
// model, then MDFLOW_MODEL), default.
func ContextWindow(fileOverride int, model string) int {
	if fileOverride > 0 {
		return fileOverride
	}
	for _, env := range []string{EnvContextWindow, EnvContextWindowCompat} {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	if model == "" {
		model = os.Getenv(EnvModel)
		if model == "" {
			model = os.Getenv(EnvModelCompat)
		}
	}
	if model != "" {
		lower := strings.ToLower(model)
		for _, mw := range modelWindows {
			if strings.Contains(lower, mw.match) {
				return mw.window
			}
		}
	}
	return DefaultContextWindow
}

// ForceContext reports whether the glob token ceiling is disabled.
func ForceContext() bool {
	return os.Getenv(EnvForceContext) != "" || os.Getenv(EnvForceContextCompat) != ""
}
