package agent

import (
	"strings"
)

// Invocation is the outer CLI parsed into the pieces the orchestrator
// consumes: hijacked flags, template-variable bindings, passthrough flags,
// and bare positionals.
type Invocation struct {
	Agent string // file path or URL

	// Hijacked flags, consumed and never forwarded.
	Command     string // --_command / -_c
	DryRun      bool   // --_dry-run
	Trust       bool   // --_trust
	NoCache     bool   // --_no-cache
	Interactive bool   // --_interactive / -_i
	Cwd         string // --_cwd

	// VarFlags maps each --_<name> binding to its value; a later flag of
	// the same name replaces an earlier one.
	VarFlags map[string]string

	// Passthrough keeps unrecognized flags (and their values) for the
	// driver, in order.
	Passthrough []string

	// Positionals are the bare arguments after the agent file.
	Positionals []string
}

// ParseArgs splits raw CLI arguments. The first argument is the agent file
// when it does not start with "-"; a flag of the form --name with a following non-flag token
// consumes that token as its value.
func ParseArgs(args []string) *Invocation {
	inv := &Invocation{VarFlags: map[string]string{}}

	i := 0
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		inv.Agent = args[0]
		i = 1
	}

	for ; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			inv.Positionals = append(inv.Positionals, arg)
			continue
		}

		name, inlineValue, hasInline := strings.Cut(arg, "=")
		takeValue := func() (string, bool) {
			if hasInline {
				return inlineValue, true
			}
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				return args[i], true
			}
			return "", false
		}

		switch name {
		case "--_command", "-_c":
			if v, ok := takeValue(); ok {
				inv.Command = v
			}
		case "--_dry-run":
			inv.DryRun = true
		case "--_trust":
			inv.Trust = true
		case "--_no-cache":
			inv.NoCache = true
		case "--_interactive", "-_i":
			inv.Interactive = true
		case "--_cwd":
			if v, ok := takeValue(); ok {
				inv.Cwd = v
			}
		default:
			if varName, ok := templateFlagName(name); ok {
				if v, ok := takeValue(); ok {
					inv.VarFlags[varName] = v
				} else {
					inv.VarFlags[varName] = "true"
				}
				continue
			}
			// Passthrough flag; a following non-flag token is its value.
			if hasInline {
				inv.Passthrough = append(inv.Passthrough, arg)
				continue
			}
			inv.Passthrough = append(inv.Passthrough, name)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				inv.Passthrough = append(inv.Passthrough, args[i])
			}
		}
	}
	return inv
}

// templateFlagName recognizes --_<name> template-variable flags and returns
// the binding name including the underscore.
func templateFlagName(flag string) (string, bool) {
	if !strings.HasPrefix(flag, "--_") {
		return "", false
	}
	name := flag[2:] // keep the underscore
	if name == "_" {
		return "", false
	}
	return name, true
}
