// Package argv compiles merged front-matter config into the driver
// argument vector. The key-by-key rules here are the single source of
// truth for how config maps onto a heterogeneous set of downstream CLIs.
package argv

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

// systemKeys are consumed by mdflow itself and never forwarded.
var systemKeys = map[string]bool{
	"args":           true,
	"context_window": true,
}

var positionalKeyPattern = regexp.MustCompile(`^\$\d+$`)

// Compile maps config plus the consumed-template-variable set and the
// driver positionals into a command plan for driverName.
func Compile(driverName string, config types.ConfigMap, consumedVars map[string]bool, positionals []string) *types.CommandPlan {
	plan := &types.CommandPlan{
		DriverName:        driverName,
		Positionals:       positionals,
		PositionalFlagMap: map[int]string{},
	}

	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := config[key]

		switch {
		case systemKeys[key]:
			continue
		case positionalKeyPattern.MatchString(key):
			n, _ := strconv.Atoi(key[1:])
			plan.PositionalFlagMap[n] = types.CoerceString(value)
			continue
		case strings.HasPrefix(key, "$"):
			// Template-variable declaration, not a flag.
			continue
		case key == "_subcommand":
			plan.SubcommandPrefix = stringList(value)
			continue
		case strings.HasPrefix(key, "_"):
			// Internal directives and template-variable defaults.
			continue
		case consumedVars[key]:
			continue
		}

		if key == "env" {
			// A mapping sets the process environment, not an arg; the
			// orchestrator owns that extraction. List or scalar env
			// passes through as a flag like any other.
			if _, ok := value.(map[string]any); ok {
				continue
			}
		}

		switch v := value.(type) {
		case nil:
			continue
		case bool:
			if !v {
				continue
			}
			plan.ArgvPrePositional = append(plan.ArgvPrePositional, flagName(key))
		case []any:
			for _, item := range v {
				plan.ArgvPrePositional = append(plan.ArgvPrePositional,
					flagName(key), types.CoerceString(item))
			}
		default:
			plan.ArgvPrePositional = append(plan.ArgvPrePositional,
				flagName(key), types.CoerceString(v))
		}
	}

	return plan
}

// flagName renders a config key as a flag: single-character keys get one
// dash, everything else two.
func flagName(key string) string {
	if len(key) == 1 {
		return "-" + key
	}
	return "--" + key
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, types.CoerceString(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{types.CoerceString(t)}
	}
}
