package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"FATAL", FatalLevel},
		{"bogus", InfoLevel},
		{"  info  ", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestInit_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("k", "v").Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output, got %q", buf.String())
	}

	buf.Reset()
	Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level, got %q", buf.String())
	}
}

func TestInitAgentLog(t *testing.T) {
	home := t.TempDir()
	path := InitAgentLog(home, "task-claude")
	defer Init(DefaultConfig())

	want := filepath.Join(home, ".mdflow", "logs", "task-claude", "debug.log")
	if path != want {
		t.Fatalf("log path = %q, want %q", path, want)
	}
	if LogFilePath() != want {
		t.Errorf("LogFilePath() = %q", LogFilePath())
	}

	Info().Msg("recorded")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "recorded") {
		t.Errorf("log file missing entry: %q", string(data))
	}
}
