package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "", CoerceString(nil))
	assert.Equal(t, "text", CoerceString("text"))
	assert.Equal(t, "true", CoerceString(true))
	assert.Equal(t, "false", CoerceString(false))
	assert.Equal(t, "8080", CoerceString(8080))
	assert.Equal(t, "8080", CoerceString(float64(8080)))
	assert.Equal(t, "0.5", CoerceString(0.5))
}

func TestIsFalse(t *testing.T) {
	assert.True(t, IsFalse(false))
	assert.True(t, IsFalse("false"))
	assert.False(t, IsFalse(nil))
	assert.False(t, IsFalse(""))
	assert.False(t, IsFalse(true))
	assert.False(t, IsFalse("no"))
}

func TestConfigMapClone(t *testing.T) {
	orig := ConfigMap{"a": 1}
	clone := orig.Clone()
	clone["a"] = 2
	clone["b"] = 3
	assert.Equal(t, 1, orig["a"])
	assert.NotContains(t, orig, "b")
}

func TestErrorKinds(t *testing.T) {
	err := NewError(KindCircularImport, "cycle: %s", "a -> b -> a")
	assert.Equal(t, KindCircularImport, KindOf(err))
	assert.Contains(t, err.Error(), "a -> b -> a")

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, KindCircularImport, KindOf(wrapped))

	cause := errors.New("boom")
	werr := WrapError(KindNetworkError, cause, "context")
	assert.ErrorIs(t, werr, cause)
	assert.Equal(t, KindNetworkError, KindOf(werr))
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeFor(nil))
	assert.Equal(t, ExitOK, ExitCodeFor(NewError(KindEarlyExit, "dry run")))
	assert.Equal(t, ExitConfig, ExitCodeFor(NewError(KindConfigurationError, "bad")))
	assert.Equal(t, ExitSigint, ExitCodeFor(NewError(KindUserCancelled, "no")))
	assert.Equal(t, ExitError, ExitCodeFor(NewError(KindCommandFailed, "boom")))
	assert.Equal(t, ExitError, ExitCodeFor(errors.New("plain")))
}

func TestCommandPlanArgv(t *testing.T) {
	plan := &CommandPlan{
		DriverName:        "copilot",
		SubcommandPrefix:  []string{"run"},
		ArgvPrePositional: []string{"--silent"},
		Positionals:       []string{"the prompt", "extra"},
		PositionalFlagMap: map[int]string{1: "prompt"},
	}
	assert.Equal(t, []string{"run", "--silent", "--prompt", "the prompt", "extra"}, plan.Argv())
}
