package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

func TestBuildBindings_FrontMatterDefaults(t *testing.T) {
	cfg := types.ConfigMap{
		"_tone":        "formal",
		"_interactive": true,
		"_cwd":         "/x",
		"_subcommand":  "exec",
		"$style":       "brief",
		"$1":           "prompt",
		"model":        "opus",
	}
	b := BuildBindings(cfg, &Invocation{VarFlags: map[string]string{}}, "")

	assert.Equal(t, "formal", b["_tone"])
	assert.Equal(t, "brief", b["_style"], "$name declares a _name default")
	assert.Equal(t, "opus", b["model"], "plain keys are referenceable")
	assert.NotContains(t, b, "_interactive")
	assert.NotContains(t, b, "_cwd")
	assert.NotContains(t, b, "_subcommand")
	assert.NotContains(t, b, "_1", "$1 is a positional mapping, not a variable")
}

func TestBuildBindings_CLIOverridesFrontMatter(t *testing.T) {
	cfg := types.ConfigMap{"_tone": "formal"}
	inv := &Invocation{VarFlags: map[string]string{"_tone": "casual"}}
	b := BuildBindings(cfg, inv, "")
	assert.Equal(t, "casual", b["_tone"])
}

func TestBuildBindings_Positionals(t *testing.T) {
	inv := &Invocation{VarFlags: map[string]string{}, Positionals: []string{"hola", "English"}}
	b := BuildBindings(types.ConfigMap{}, inv, "")
	assert.Equal(t, "hola", b["_1"])
	assert.Equal(t, "English", b["_2"])
	assert.Equal(t, "hola English", b["_args"])
}

func TestBuildBindings_Stdin(t *testing.T) {
	b := BuildBindings(types.ConfigMap{}, &Invocation{VarFlags: map[string]string{}}, "piped data")
	assert.Equal(t, "piped data", b["_stdin"])

	b = BuildBindings(types.ConfigMap{}, &Invocation{VarFlags: map[string]string{}}, "")
	assert.NotContains(t, b, "_stdin")
}

func TestMissingPromptVars(t *testing.T) {
	free := map[string]bool{"_task": true, "_tone": true, "model": true}
	bindings := map[string]string{"_tone": "set"}
	assert.Equal(t, []string{"_task"}, MissingPromptVars(free, bindings))
}

func TestInteractiveFromConfig(t *testing.T) {
	assert.False(t, interactiveFromConfig(types.ConfigMap{}))
	assert.False(t, interactiveFromConfig(types.ConfigMap{"_i": false}))
	assert.True(t, interactiveFromConfig(types.ConfigMap{"_i": true}))
	// YAML empty value (_i:) parses as nil and still toggles.
	assert.True(t, interactiveFromConfig(types.ConfigMap{"_i": nil}))
	assert.True(t, interactiveFromConfig(types.ConfigMap{"_interactive": ""}))
}
