package agent

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// childCell is the single-slot reference to the running driver process.
// The signal handler reads it to kill a live child.
type childCell struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

func (c *childCell) set(cmd *exec.Cmd) {
	c.mu.Lock()
	c.cmd = cmd
	c.mu.Unlock()
}

func (c *childCell) clear() { c.set(nil) }

func (c *childCell) kill(sig os.Signal) {
	c.mu.Lock()
	cmd := c.cmd
	c.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		s, ok := sig.(syscall.Signal)
		if !ok {
			s = syscall.SIGTERM
		}
		_ = cmd.Process.Signal(s)
	}
}

// signalState tracks cancellation triggered by SIGINT or SIGTERM.
type signalState struct {
	mu  sync.Mutex
	sig os.Signal
}

func (s *signalState) record(sig os.Signal) {
	s.mu.Lock()
	if s.sig == nil {
		s.sig = sig
	}
	s.mu.Unlock()
}

// ExitCode returns the signal exit code, or 0 when no signal fired.
func (s *signalState) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.sig {
	case syscall.SIGINT:
		return types.ExitSigint
	case syscall.SIGTERM:
		return types.ExitSigterm
	default:
		return 0
	}
}

// installSignals forwards SIGINT/SIGTERM to the child and the cancel func.
// Returns a stop function.
func installSignals(cell *childCell, state *signalState, cancel func()) func() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				state.record(sig)
				cell.kill(sig)
				cancel()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// ExitDriverMissing is relayed when the driver binary is absent.
const ExitDriverMissing = 127

// spawnDriver runs the plan's driver with inherited stdio and the plan's
// env additions, and relays its exit code. A missing binary exits 127.
func spawnDriver(cell *childCell, plan *types.CommandPlan) (int, error) {
	argv := plan.Argv()
	env := os.Environ()
	for k, v := range plan.EnvAdditions {
		env = append(env, k+"="+v)
	}

	cmd := exec.Command(plan.DriverName, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env

	logging.Info().Str("driver", plan.DriverName).Strs("argv", argv).Msg("spawning driver")

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ExitDriverMissing, types.NewError(types.KindConfigurationError,
				"driver %q not found on PATH", plan.DriverName)
		}
		return 0, types.WrapError(types.KindCommandFailed, err, "starting driver %s", plan.DriverName)
	}

	cell.set(cmd)
	defer cell.clear()

	err := cmd.Wait()
	code := cmd.ProcessState.ExitCode()
	if code < 0 {
		// Killed by signal; the signal state decides the final code.
		code = types.ExitError
	}
	if err != nil && code == 0 {
		code = types.ExitError
	}
	return code, nil
}
