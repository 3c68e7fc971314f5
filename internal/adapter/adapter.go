// Package adapter maps driver names to their built-in defaults and the
// print-to-interactive transform. Unknown drivers get the default adapter,
// which contributes nothing.
package adapter

import (
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// Adapter describes one downstream driver.
type Adapter interface {
	// Name is the canonical tool identifier.
	Name() string
	// Defaults contributes the built-in defaults layer for this tool.
	Defaults() types.ConfigMap
	// ApplyInteractive converts print-mode config into the interactive
	// equivalents for this tool. Pure: the input map is not mutated.
	ApplyInteractive(cfg types.ConfigMap) types.ConfigMap
}

// registry holds the known adapters by name.
var registry = map[string]Adapter{}

func register(a Adapter) { registry[a.Name()] = a }

func init() {
	register(claudeAdapter{})
	register(geminiAdapter{})
	register(codexAdapter{})
	register(copilotAdapter{})
	register(droidAdapter{})
	register(opencodeAdapter{})
}

// Lookup returns the adapter for name, falling back to the default adapter.
func Lookup(name string) Adapter {
	if a, ok := registry[name]; ok {
		return a
	}
	return defaultAdapter{name: name}
}

// Names lists the registered driver names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

// BuiltinDefaults assembles the lowest cascade layer: one commands entry
// per registered adapter.
func BuiltinDefaults() types.ConfigMap {
	cmds := map[string]any{}
	for name, a := range registry {
		cmds[name] = map[string]any(a.Defaults())
	}
	return types.ConfigMap{"commands": cmds}
}

// claude runs one-shot with --print; interactive mode just drops it.
type claudeAdapter struct{}

func (claudeAdapter) Name() string { return "claude" }

func (claudeAdapter) Defaults() types.ConfigMap {
	return types.ConfigMap{"print": true}
}

func (claudeAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	out := cfg.Clone()
	delete(out, "print")
	return out
}

// gemini takes the prompt as a bare positional; interactive sessions want
// it on --prompt-interactive instead.
type geminiAdapter struct{}

func (geminiAdapter) Name() string { return "gemini" }

func (geminiAdapter) Defaults() types.ConfigMap {
	return types.ConfigMap{}
}

func (geminiAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	out := cfg.Clone()
	out["$1"] = "prompt-interactive"
	return out
}

// codex gates non-interactive behavior behind its exec subcommand.
type codexAdapter struct{}

func (codexAdapter) Name() string { return "codex" }

func (codexAdapter) Defaults() types.ConfigMap {
	return types.ConfigMap{"_subcommand": "exec"}
}

func (codexAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	out := cfg.Clone()
	delete(out, "_subcommand")
	return out
}

// copilot wants the body on --prompt and runs quiet by default.
type copilotAdapter struct{}

func (copilotAdapter) Name() string { return "copilot" }

func (copilotAdapter) Defaults() types.ConfigMap {
	return types.ConfigMap{"$1": "prompt", "silent": true}
}

func (copilotAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	out := cfg.Clone()
	out["$1"] = "interactive"
	delete(out, "silent")
	return out
}

// droid gates one-shot runs behind exec.
type droidAdapter struct{}

func (droidAdapter) Name() string { return "droid" }

func (droidAdapter) Defaults() types.ConfigMap {
	return types.ConfigMap{"_subcommand": "exec"}
}

func (droidAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	out := cfg.Clone()
	delete(out, "_subcommand")
	return out
}

// opencode one-shot runs go through its run subcommand.
type opencodeAdapter struct{}

func (opencodeAdapter) Name() string { return "opencode" }

func (opencodeAdapter) Defaults() types.ConfigMap {
	return types.ConfigMap{"_subcommand": "run"}
}

func (opencodeAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	out := cfg.Clone()
	delete(out, "_subcommand")
	return out
}

// defaultAdapter covers unknown tools: no defaults, identity transform.
type defaultAdapter struct {
	name string
}

func (d defaultAdapter) Name() string              { return d.name }
func (d defaultAdapter) Defaults() types.ConfigMap { return types.ConfigMap{} }

func (d defaultAdapter) ApplyInteractive(cfg types.ConfigMap) types.ConfigMap {
	return cfg.Clone()
}
