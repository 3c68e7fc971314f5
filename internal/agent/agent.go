// Package agent is the mdflow orchestrator: it turns an agent file plus
// CLI arguments into a fully expanded prompt and a driver invocation, then
// relays the driver's exit code.
package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/mdflow-ai/mdflow/internal/adapter"
	"github.com/mdflow-ai/mdflow/internal/argv"
	"github.com/mdflow-ai/mdflow/internal/config"
	"github.com/mdflow-ai/mdflow/internal/dashboard"
	"github.com/mdflow-ai/mdflow/internal/directive"
	"github.com/mdflow-ai/mdflow/internal/dotenv"
	"github.com/mdflow-ai/mdflow/internal/fetch"
	"github.com/mdflow-ai/mdflow/internal/frontmatter"
	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/internal/remote"
	"github.com/mdflow-ai/mdflow/internal/resolver"
	"github.com/mdflow-ai/mdflow/internal/shellexec"
	"github.com/mdflow-ai/mdflow/internal/template"
	"github.com/mdflow-ai/mdflow/internal/tokens"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// ToolName is the outer binary name, used to re-invoke markdown commands.
const ToolName = "mdflow"

// Runner holds the per-invocation environment.
type Runner struct {
	Home      string
	Cwd       string
	StdinTTY  bool
	StderrTTY bool
}

// Run executes an agent invocation and returns the process exit code.
func Run(args []string) int {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	r := &Runner{
		Home:      home,
		Cwd:       cwd,
		StdinTTY:  isatty.IsTerminal(os.Stdin.Fd()),
		StderrTTY: isatty.IsTerminal(os.Stderr.Fd()),
	}

	cell := &childCell{}
	sigState := &signalState{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := installSignals(cell, sigState, cancel)
	defer stop()

	code, err := r.run(ctx, cell, args)
	if sig := sigState.ExitCode(); sig != 0 {
		return sig
	}
	if err != nil {
		r.reportFailure(err)
		// An absent driver binary carries its own code (127); every
		// other failure maps through the error kind.
		if code != 0 {
			return code
		}
		return types.ExitCodeFor(err)
	}
	return code
}

func (r *Runner) reportFailure(err error) {
	kind := types.KindOf(err)
	msg := fmt.Sprintf("Agent failed: [%s] %v", kind, err)
	if r.StderrTTY {
		fmt.Fprintln(os.Stderr, color.RedString(msg))
		if path := logging.LogFilePath(); path != "" {
			fmt.Fprintf(os.Stderr, "See %s for details\n", path)
		}
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	logging.Error().Err(err).Str("kind", kind.String()).Msg("agent failed")
}

func (r *Runner) run(ctx context.Context, cell *childCell, args []string) (int, error) {
	inv := ParseArgs(args)

	dotenv.Load(r.Cwd)

	if inv.Agent == "" {
		if !r.StdinTTY {
			return 0, types.NewError(types.KindConfigurationError, "no agent file given")
		}
		picked, err := PickAgentFile(r.Cwd)
		if err != nil {
			return 0, err
		}
		inv.Agent = picked
	}

	path, err := r.resolveAgentPath(ctx, inv)
	if err != nil {
		return 0, err
	}

	logging.InitAgentLog(r.Home, Slug(path))
	logging.Info().Str("file", path).Msg("running agent")

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, types.WrapError(types.KindFileNotFound, err, "reading %s", path)
	}

	doc, err := frontmatter.Parse(string(data))
	if err != nil {
		return 0, err
	}

	driver, markerInteractive := r.resolveDriver(inv, path)
	if driver == "" {
		return 0, types.NewError(types.KindConfigurationError,
			"cannot determine driver for %s; name the file <task>.<driver>.md or pass --_command", filepath.Base(path))
	}

	cascade := config.Load(r.Home, r.Cwd, adapter.BuiltinDefaults())
	cfg := mergeFlat(config.CommandDefaults(cascade, driver), doc.Config)

	interactive := markerInteractive || inv.Interactive || interactiveFromConfig(cfg)
	if interactive {
		cfg = adapter.Lookup(driver).ApplyInteractive(cfg)
		delete(cfg, "_interactive")
		delete(cfg, "_i")
	}

	stdin, err := ReadPipedStdin(r.StdinTTY)
	if err != nil {
		return 0, err
	}
	bindings := BuildBindings(cfg, inv, stdin)

	invocationCwd := inv.Cwd
	if invocationCwd == "" {
		invocationCwd = types.CoerceString(cfg["_cwd"])
	}

	envAdd := envAdditions(cfg)
	childEnv := mergedEnv(envAdd)

	body, tracker, err := r.expandBody(ctx, doc.Body, path, cfg, bindings, invocationCwd, childEnv, inv.DryRun)
	if err != nil {
		return 0, err
	}

	freeVars := template.FreeVariables(body)
	missing := MissingPromptVars(freeVars, bindings)
	if len(missing) > 0 {
		if !r.StdinTTY {
			return 0, types.NewError(types.KindTemplateError,
				"missing template variables: %s", strings.Join(missing, ", "))
		}
		if err := PromptForVars(missing, bindings); err != nil {
			return 0, err
		}
	}

	rendered, err := template.Render(body, bindings)
	if err != nil {
		return 0, err
	}

	driverPositionals := []string{rendered}
	for i, pos := range inv.Positionals {
		if !freeVars["_"+strconv.Itoa(i+1)] {
			driverPositionals = append(driverPositionals, pos)
		}
	}

	plan := argv.Compile(driver, cfg, freeVars, driverPositionals)
	plan.ArgvPrePositional = append(plan.ArgvPrePositional, inv.Passthrough...)
	plan.EnvAdditions = envAdd

	if inv.DryRun {
		r.printDryRun(driver, plan.Argv(), rendered, tracker)
		return types.ExitOK, nil
	}

	return spawnDriver(cell, plan)
}

// resolveAgentPath handles remote URLs and the local search order.
func (r *Runner) resolveAgentPath(ctx context.Context, inv *Invocation) (string, error) {
	if remote.IsURL(inv.Agent) {
		store := &remote.Store{
			Home:      r.Home,
			Fetcher:   fetch.New(),
			TrustFlag: inv.Trust,
			NoCache:   inv.NoCache,
		}
		if r.StdinTTY {
			store.Trust = TrustPrompt
		}
		return store.Resolve(ctx, inv.Agent)
	}
	return Locate(inv.Agent, r.Cwd, r.Home)
}

// resolveDriver picks the driver: the hijacked --_command flag wins, then
// the filename convention.
func (r *Runner) resolveDriver(inv *Invocation, path string) (string, bool) {
	fromName, marker := DriverFromFilename(path)
	if inv.Command != "" {
		return inv.Command, marker
	}
	return fromName, marker
}

// expandBody runs the import resolver when the body holds any directive.
func (r *Runner) expandBody(ctx context.Context, body, path string, cfg types.ConfigMap, bindings map[string]string, invocationCwd string, env []string, dryRun bool) (string, *resolver.Tracker, error) {
	tracker := &resolver.Tracker{}
	if !directive.HasAny(body) {
		return body, tracker, nil
	}

	dash := dashboard.New(os.Stderr, r.StderrTTY)
	defer dash.Close()

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}
	canonical, _ = filepath.Abs(canonical)

	res := &resolver.Resolver{
		ContextWindow: tokens.ContextWindow(intValue(cfg["context_window"]), types.CoerceString(cfg["model"])),
		Shell: shellexec.Runner{
			ToolName:      ToolName,
			InvocationCwd: invocationCwd,
			Env:           env,
			Bindings:      bindings,
			DryRun:        dryRun,
		},
		Fetcher: fetch.New(),
		Dash:    dash,
		Tracker: tracker,
		Warn: func(msg string) {
			logging.Warn().Msg(msg)
			fmt.Fprintln(os.Stderr, color.YellowString("Warning: "+msg))
		},
	}

	stack := resolver.ImportStack{}.Push(filepath.Base(path), canonical)
	expanded, err := res.Expand(ctx, body, filepath.Dir(path), stack)
	if err != nil {
		return "", nil, err
	}
	return expanded, tracker, nil
}

func (r *Runner) printDryRun(driver string, argvFinal []string, prompt string, tracker *resolver.Tracker) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s %s %s\n", bold("Command:"), driver, strings.Join(quoteArgs(argvFinal), " "))
	if entries := tracker.Entries(); len(entries) > 0 {
		fmt.Printf("%s %s\n", bold("Imports:"), strings.Join(entries, ", "))
	}
	fmt.Printf("%s ~%d\n", bold("Tokens:"), tokens.Estimate(prompt))
	fmt.Printf("%s\n%s\n", bold("--- Prompt ---"), prompt)
}

func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\n\"") {
			out[i] = strconv.Quote(a)
		} else {
			out[i] = a
		}
	}
	return out
}

// mergeFlat overlays per-key; front matter wins over cascade defaults.
func mergeFlat(base, over types.ConfigMap) types.ConfigMap {
	out := base.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// interactiveFromConfig: any presence of _interactive/_i that is not
// literally false activates interactive mode, including YAML null.
func interactiveFromConfig(cfg types.ConfigMap) bool {
	for _, key := range []string{"_interactive", "_i"} {
		if v, ok := cfg[key]; ok && !types.IsFalse(v) {
			return true
		}
	}
	return false
}

// envAdditions extracts the mapping form of the env key.
func envAdditions(cfg types.ConfigMap) map[string]string {
	out := map[string]string{}
	if env, ok := cfg["env"].(map[string]any); ok {
		for k, v := range env {
			out[k] = types.CoerceString(v)
		}
	}
	return out
}

func mergedEnv(additions map[string]string) []string {
	env := os.Environ()
	for k, v := range additions {
		env = append(env, k+"="+v)
	}
	return env
}

func intValue(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return 0
}
