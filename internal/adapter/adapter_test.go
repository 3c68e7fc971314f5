package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

func TestLookup_Known(t *testing.T) {
	for _, name := range []string{"claude", "gemini", "codex", "copilot", "droid", "opencode"} {
		a := Lookup(name)
		assert.Equal(t, name, a.Name())
	}
}

func TestLookup_UnknownFallsBack(t *testing.T) {
	a := Lookup("mystery")
	assert.Equal(t, "mystery", a.Name())
	assert.Empty(t, a.Defaults())

	cfg := types.ConfigMap{"flag": true}
	assert.Equal(t, cfg, a.ApplyInteractive(cfg))
}

func TestClaude_InteractiveDropsPrint(t *testing.T) {
	a := Lookup("claude")
	assert.Equal(t, true, a.Defaults()["print"])

	cfg := types.ConfigMap{"print": true, "model": "opus"}
	out := a.ApplyInteractive(cfg)
	assert.NotContains(t, out, "print")
	assert.Equal(t, "opus", out["model"])
	// Pure: the input is untouched.
	assert.Equal(t, true, cfg["print"])
}

func TestCodex_SubcommandGate(t *testing.T) {
	a := Lookup("codex")
	assert.Equal(t, "exec", a.Defaults()["_subcommand"])
	out := a.ApplyInteractive(types.ConfigMap{"_subcommand": "exec"})
	assert.NotContains(t, out, "_subcommand")
}

func TestCopilot_PromptMapping(t *testing.T) {
	a := Lookup("copilot")
	d := a.Defaults()
	assert.Equal(t, "prompt", d["$1"])
	assert.Equal(t, true, d["silent"])

	out := a.ApplyInteractive(d)
	assert.Equal(t, "interactive", out["$1"])
	assert.NotContains(t, out, "silent")
}

func TestGemini_InteractivePromptFlag(t *testing.T) {
	a := Lookup("gemini")
	out := a.ApplyInteractive(types.ConfigMap{})
	assert.Equal(t, "prompt-interactive", out["$1"])
}

func TestBuiltinDefaults_OneEntryPerAdapter(t *testing.T) {
	layer := BuiltinDefaults()
	cmds := layer["commands"].(map[string]any)
	assert.Len(t, cmds, len(Names()))
	claude := cmds["claude"].(map[string]any)
	assert.Equal(t, true, claude["print"])
}
