package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies agent failures. Each kind maps to a process exit
// class in ExitCodeFor.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindFileNotFound
	KindFileSizeLimit
	KindBinaryFileImport
	KindSymbolNotFound
	KindCircularImport
	KindNetworkError
	KindUnsupportedContentType
	KindCommandFailed
	KindTemplateError
	KindImportError
	KindConfigurationError
	KindSecurityError
	KindUserCancelled
	KindEarlyExit
)

// String returns the human-readable kind name used in top-level messages.
func (k ErrorKind) String() string {
	switch k {
	case KindFileNotFound:
		return "FileNotFound"
	case KindFileSizeLimit:
		return "FileSizeLimit"
	case KindBinaryFileImport:
		return "BinaryFileImport"
	case KindSymbolNotFound:
		return "SymbolNotFound"
	case KindCircularImport:
		return "CircularImport"
	case KindNetworkError:
		return "NetworkError"
	case KindUnsupportedContentType:
		return "UnsupportedContentType"
	case KindCommandFailed:
		return "CommandFailed"
	case KindTemplateError:
		return "TemplateError"
	case KindImportError:
		return "ImportError"
	case KindConfigurationError:
		return "ConfigurationError"
	case KindSecurityError:
		return "SecurityError"
	case KindUserCancelled:
		return "UserCancelled"
	case KindEarlyExit:
		return "EarlyExitRequest"
	default:
		return "Error"
	}
}

// AgentError carries a kind plus a message and optional cause.
type AgentError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AgentError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AgentError) Unwrap() error { return e.Err }

// NewError creates an AgentError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *AgentError {
	return &AgentError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind to an underlying error.
func WrapError(kind ErrorKind, err error, format string, args ...any) *AgentError {
	return &AgentError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the ErrorKind from an error chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Process exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitConfig  = 2
	ExitSigint  = 130
	ExitSigterm = 143
)

// ExitCodeFor maps an error to the process exit code the orchestrator
// relays. The driver's own exit code is handled separately by the caller.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindEarlyExit:
		return ExitOK
	case KindConfigurationError:
		return ExitConfig
	case KindUserCancelled:
		return ExitSigint
	default:
		return ExitError
	}
}
