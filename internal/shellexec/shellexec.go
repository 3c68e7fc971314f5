// Package shellexec runs inline command directives and executable code
// fences with timeouts, output caps, and sanitization.
package shellexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mdflow-ai/mdflow/internal/directive"
	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/internal/template"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// CommandTimeout bounds each inline command and code fence.
const CommandTimeout = 30 * time.Second

const binarySniffLen = 1024

// Runner executes command directives against a shared invocation context.
type Runner struct {
	// ToolName is the outer binary name, prepended to markdown-file
	// commands so they re-enter the agent runner.
	ToolName string
	// InvocationCwd overrides the containing file's directory as the
	// working directory for commands (front matter _cwd).
	InvocationCwd string
	// Env is the child environment; process env when nil.
	Env []string
	// Bindings is the current template variable set; command text may
	// reference {{ _name }}.
	Bindings map[string]string
	// DryRun emits placeholders instead of executing.
	DryRun bool
	// Progress receives incremental stdout chunks for the dashboard.
	Progress func(chunk string)
}

// markdown-file command syntax: an optional ./, ../, ~/, or / prefix and a
// .md suffix. Such a line reruns a markdown agent recursively.
var markdownCommandPattern = regexp.MustCompile(`^(?:\.{1,2}/|~/|/)?[^\s]+\.md$`)

// Command executes an inline !` ` directive and returns the replacement
// text, wrapped as a raw block.
func (r *Runner) Command(ctx context.Context, text, fileDir string) (string, error) {
	cmdText := template.Substitute(text, r.Bindings)

	if markdownCommandPattern.MatchString(strings.TrimSpace(cmdText)) && r.ToolName != "" {
		cmdText = r.ToolName + " " + strings.TrimSpace(cmdText)
	}

	logging.Info().Str("command", cmdText).Msg("running inline command")

	if r.DryRun {
		return WrapRaw(fmt.Sprintf("[Dry Run: Command %q not executed]", cmdText)), nil
	}

	shellBin, shellArgs := platformShell()
	argv := append(append([]string(nil), shellArgs...), cmdText)
	stdout, stderr, exitCode, err := r.run(ctx, shellBin, argv, r.workDir(fileDir))
	if err != nil {
		return "", types.WrapError(types.KindCommandFailed, err, "command %q", cmdText)
	}

	out, cmdErr := r.finish(cmdText, stdout, stderr, exitCode)
	if cmdErr != nil {
		return "", cmdErr
	}
	return WrapRaw(out), nil
}

// Fence executes an executable code fence: the shebang plus code are written
// to a unique temporary script, marked executable, and spawned directly.
func (r *Runner) Fence(ctx context.Context, d directive.Directive, fileDir string) (string, error) {
	logging.Info().Str("lang", d.Lang).Str("shebang", d.Shebang).Msg("running code fence")

	if r.DryRun {
		return WrapRaw("[Dry Run: Code fence not executed]"), nil
	}

	script := d.Shebang + "\n" + d.Code + "\n"
	path := filepath.Join(os.TempDir(), fmt.Sprintf("mdflow-%s.%s", ulid.Make().String(), scriptExtension(d.Lang)))
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return "", types.WrapError(types.KindCommandFailed, err, "writing fence script")
	}
	defer os.Remove(path)

	stdout, stderr, exitCode, err := r.run(ctx, path, nil, r.workDir(fileDir))
	if err != nil {
		return "", types.WrapError(types.KindCommandFailed, err, "code fence (%s)", d.Lang)
	}

	out, fenceErr := r.finish("code fence", stdout, stderr, exitCode)
	if fenceErr != nil {
		return "", fenceErr
	}
	return WrapRaw(out), nil
}

// run spawns the process with piped stdout/stderr, streaming stdout to the
// progress callback, racing completion against CommandTimeout.
func (r *Runner) run(ctx context.Context, bin string, argv []string, dir string) (stdout, stderr string, exitCode int, err error) {
	runCtx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, argv...)
	cmd.Dir = dir
	if r.Env != nil {
		cmd.Env = r.Env
	} else {
		cmd.Env = os.Environ()
	}
	setProcessGroup(cmd)

	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", "", 0, err
	}

	if err := cmd.Start(); err != nil {
		return "", "", 0, err
	}

	var outBuf bytes.Buffer
	readDone := make(chan error, 1)
	go func() {
		chunk := make([]byte, 4096)
		for {
			n, readErr := outPipe.Read(chunk)
			if n > 0 {
				outBuf.Write(chunk[:n])
				if r.Progress != nil {
					r.Progress(string(chunk[:n]))
				}
			}
			if readErr != nil {
				if readErr == io.EOF {
					readDone <- nil
				} else {
					readDone <- readErr
				}
				return
			}
		}
	}()

	<-readDone
	waitErr := cmd.Wait()

	if runCtx.Err() == context.DeadlineExceeded {
		killProcessGroup(cmd)
		return "", "", 0, fmt.Errorf("timed out after %s", CommandTimeout)
	}
	if ctx.Err() != nil {
		killProcessGroup(cmd)
		return "", "", 0, ctx.Err()
	}

	exitCode = 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return "", "", 0, waitErr
		}
	}
	return outBuf.String(), errBuf.String(), exitCode, nil
}

// finish applies the shared post-processing: binary sniff, sanitization,
// exit-code check, stream combination.
func (r *Runner) finish(what, stdout, stderr string, exitCode int) (string, error) {
	sniff := stdout
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	if strings.IndexByte(sniff, 0) >= 0 {
		return "", types.NewError(types.KindCommandFailed, "%s produced binary output", what)
	}

	stdout = Sanitize(stdout)
	stderr = Sanitize(stderr)

	if exitCode != 0 {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = strings.TrimSpace(stdout)
		}
		return "", types.NewError(types.KindCommandFailed, "%s exited with code %d: %s", what, exitCode, detail)
	}

	return CombineStreams(stderr, stdout), nil
}

func (r *Runner) workDir(fileDir string) string {
	if r.InvocationCwd != "" {
		return r.InvocationCwd
	}
	return fileDir
}

// platformShell picks the shell invocation: cmd.exe /d /s /c on Windows,
// sh -c elsewhere.
func platformShell() (string, []string) {
	if runtime.GOOS == "windows" {
		shell := os.Getenv("COMSPEC")
		if shell == "" {
			shell = "cmd.exe"
		}
		return shell, []string{"/d", "/s", "/c"}
	}
	return "sh", []string{"-c"}
}

// scriptExtension maps the fence language to a temp-file extension.
func scriptExtension(lang string) string {
	switch lang {
	case "ts", "typescript":
		return "ts"
	case "js", "javascript":
		return "js"
	case "py", "python":
		return "py"
	case "sh":
		return "sh"
	case "bash":
		return "bash"
	case "":
		return "sh"
	default:
		return lang
	}
}

func setProcessGroup(cmd *exec.Cmd) {
	if runtime.GOOS != "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if runtime.GOOS == "windows" {
		_ = cmd.Process.Kill()
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
