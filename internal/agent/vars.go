package agent

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mdflow-ai/mdflow/internal/bundle"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// internalKeys never become template-variable defaults.
var internalKeys = map[string]bool{
	"_interactive": true,
	"_i":           true,
	"_cwd":         true,
	"_subcommand":  true,
}

// BuildBindings assembles the variable binding set, lowest precedence
// first: front-matter defaults, CLI variable flags, positionals, piped
// stdin.
func BuildBindings(cfg types.ConfigMap, inv *Invocation, stdin string) map[string]string {
	bindings := map[string]string{}

	for key, value := range cfg {
		switch {
		case internalKeys[key]:
		case strings.HasPrefix(key, "_"):
			bindings[key] = types.CoerceString(value)
		case strings.HasPrefix(key, "$"):
			// $name (non-numeric) declares a template variable default
			// for _name; $1-style positional mappings stay out.
			name := key[1:]
			if _, err := strconv.Atoi(name); err != nil && name != "" {
				if _, exists := bindings["_"+name]; !exists {
					bindings["_"+name] = types.CoerceString(value)
				}
			}
		default:
			// Plain scalar keys are referenceable as {{ key }}; keys the
			// body actually uses are dropped from the argv by the compiler.
			switch value.(type) {
			case map[string]any, []any:
			default:
				bindings[key] = types.CoerceString(value)
			}
		}
	}

	for name, value := range inv.VarFlags {
		bindings[name] = value
	}

	for i, pos := range inv.Positionals {
		bindings["_"+strconv.Itoa(i+1)] = pos
	}
	if len(inv.Positionals) > 0 {
		bindings["_args"] = strings.Join(inv.Positionals, " ")
	}

	if stdin != "" {
		bindings["_stdin"] = stdin
	}

	return bindings
}

// ReadPipedStdin collects piped input up to the input size cap. Returns ""
// when stdin is a terminal.
func ReadPipedStdin(stdinTTY bool) (string, error) {
	if stdinTTY {
		return "", nil
	}
	limited := io.LimitReader(os.Stdin, bundle.DefaultMaxInputSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", types.WrapError(types.KindImportError, err, "reading stdin")
	}
	if len(data) > bundle.DefaultMaxInputSize {
		return "", types.NewError(types.KindFileSizeLimit, "piped input exceeds maximum input size")
	}
	return string(data), nil
}

// MissingPromptVars returns the _-prefixed free variables not yet bound,
// sorted for stable prompting order.
func MissingPromptVars(free map[string]bool, bindings map[string]string) []string {
	var missing []string
	for name := range free {
		if !strings.HasPrefix(name, "_") {
			// Non-underscore names are presumed CLI-flag names.
			continue
		}
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// PromptForVars asks the user once per missing variable on the terminal.
func PromptForVars(missing []string, bindings map[string]string) error {
	reader := bufio.NewReader(os.Stdin)
	for _, name := range missing {
		fmt.Fprintf(os.Stderr, "%s: ", strings.TrimPrefix(name, "_"))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return types.NewError(types.KindUserCancelled, "prompt for %s aborted", name)
		}
		bindings[name] = strings.TrimRight(line, "\r\n")
	}
	return nil
}
