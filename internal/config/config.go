// Package config loads the mdflow configuration cascade. All functions are
// pure in the re-reading sense: nothing is cached here, callers memoize per
// invocation if they care.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// projectConfigNames are tried in order; the first existing file wins.
var projectConfigNames = []string{"mdflow.config.yaml", ".mdflow.yaml", ".mdflow.json"}

// Load merges the four layers in order of increasing precedence: built-in
// adapter defaults, the user global config, the git-root project config,
// and the working-directory project config. Parse errors at any layer
// degrade silently to an empty layer.
func Load(home, cwd string, builtin types.ConfigMap) types.ConfigMap {
	merged := builtin.Clone()

	merged = Merge(merged, readLayer(filepath.Join(home, ".mdflow", "config.yaml")))

	if root, ok := GitRoot(cwd); ok && root != cwd {
		if path := findProjectConfig(root); path != "" {
			merged = Merge(merged, readLayer(path))
		}
	}
	if path := findProjectConfig(cwd); path != "" {
		merged = Merge(merged, readLayer(path))
	}
	return merged
}

// Merge overlays over onto base: shallow per top-level key, except the
// "commands" mapping, which merges by command name. Inside each command the
// override layer replaces keys wholesale.
func Merge(base, over types.ConfigMap) types.ConfigMap {
	out := base.Clone()
	for k, v := range over {
		if k != "commands" {
			out[k] = v
			continue
		}
		baseCmds, okBase := out[k].(map[string]any)
		overCmds, okOver := v.(map[string]any)
		if !okBase || !okOver {
			out[k] = v
			continue
		}
		mergedCmds := make(map[string]any, len(baseCmds)+len(overCmds))
		for name, cfg := range baseCmds {
			mergedCmds[name] = cfg
		}
		for name, cfg := range overCmds {
			baseCfg, okB := mergedCmds[name].(map[string]any)
			overCfg, okO := cfg.(map[string]any)
			if !okB || !okO {
				mergedCmds[name] = cfg
				continue
			}
			combined := make(map[string]any, len(baseCfg)+len(overCfg))
			for kk, vv := range baseCfg {
				combined[kk] = vv
			}
			for kk, vv := range overCfg {
				combined[kk] = vv
			}
			mergedCmds[name] = combined
		}
		out[k] = mergedCmds
	}
	return out
}

// CommandDefaults extracts the merged defaults for one command name.
func CommandDefaults(merged types.ConfigMap, name string) types.ConfigMap {
	cmds, ok := merged["commands"].(map[string]any)
	if !ok {
		return types.ConfigMap{}
	}
	cfg, ok := cmds[name].(map[string]any)
	if !ok {
		return types.ConfigMap{}
	}
	return types.ConfigMap(cfg).Clone()
}

// GitRoot finds the nearest ancestor directory containing a .git entry.
// A regular directory or a file both count; the latter appears in
// worktrees.
func GitRoot(dir string) (string, bool) {
	current := dir
	for {
		if _, err := os.Lstat(filepath.Join(current, ".git")); err == nil {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

func findProjectConfig(dir string) string {
	for _, name := range projectConfigNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// readLayer parses one config file; any failure yields an empty layer.
func readLayer(path string) types.ConfigMap {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ConfigMap{}
	}

	// A plain map keeps nested mappings as map[string]any (yaml.v3 would
	// otherwise give them the named ConfigMap type).
	out := map[string]any{}
	if strings.HasSuffix(path, ".json") {
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		logging.Debug().Str("path", path).Err(err).Msg("skipping unparseable config layer")
		return types.ConfigMap{}
	}
	return types.ConfigMap(out)
}
