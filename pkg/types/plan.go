package types

// CommandPlan is the compiled invocation of a downstream driver. It is
// consumed once by the orchestrator and discarded.
type CommandPlan struct {
	// DriverName is the binary to spawn ("claude", "codex", ...).
	DriverName string

	// ArgvPrePositional holds the flags compiled from front matter, in
	// rule order, before any positional section.
	ArgvPrePositional []string

	// Positionals are the driver positionals: the orchestrator passes the
	// rendered prompt first, then the CLI positionals the body did not
	// consume as template variables.
	Positionals []string

	// PositionalFlagMap maps 1-based positional index to the flag name a
	// "$N" front-matter key assigned it.
	PositionalFlagMap map[int]string

	// EnvAdditions are set on the driver's environment at spawn time.
	// Populated by the orchestrator from the env mapping in config.
	EnvAdditions map[string]string

	// SubcommandPrefix is inserted before all other argv ("_subcommand").
	SubcommandPrefix []string
}

// Argv assembles the final argument vector: subcommand prefix, flags, then
// every positional (a "$N"-mapped one as its --flag and value).
func (p *CommandPlan) Argv() []string {
	out := make([]string, 0, len(p.SubcommandPrefix)+len(p.ArgvPrePositional)+2*len(p.Positionals))
	out = append(out, p.SubcommandPrefix...)
	out = append(out, p.ArgvPrePositional...)
	for i, pos := range p.Positionals {
		if flag, ok := p.PositionalFlagMap[i+1]; ok {
			out = append(out, "--"+flag, pos)
		} else {
			out = append(out, pos)
		}
	}
	return out
}
