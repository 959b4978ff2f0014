package errors

import (
	"errors"
	"fmt"
)

// Exit codes for setup-cloudsql-proxy
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitNetworkError  = 2
	ExitDownloadError = 3
	ExitAuthError     = 4
	ExitInternalError = 5
	ExitTimeout       = 6
	ExitConfigError   = 7
)

// Kind classifies an ActionError.
type Kind string

const (
	KindGeneral  Kind = "general"
	KindNetwork  Kind = "network"
	KindDownload Kind = "download"
	KindAuth     Kind = "auth"
	KindInternal Kind = "internal"
	KindTimeout  Kind = "timeout"
	KindConfig   Kind = "config"
)

var kindCodes = map[Kind]int{
	KindGeneral:  ExitGeneralError,
	KindNetwork:  ExitNetworkError,
	KindDownload: ExitDownloadError,
	KindAuth:     ExitAuthError,
	KindInternal: ExitInternalError,
	KindTimeout:  ExitTimeout,
	KindConfig:   ExitConfigError,
}

// ActionError is the base error type for setup-cloudsql-proxy
type ActionError struct {
	Kind    Kind
	Code    int
	Message string
	Cause   error
}

func (e *ActionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *ActionError) ExitCode() int {
	return e.Code
}

// New creates a new ActionError of the given kind
func New(kind Kind, message string) *ActionError {
	return &ActionError{
		Kind:    kind,
		Code:    codeFor(kind),
		Message: message,
	}
}

// Wrap wraps an existing error with an ActionError of the given kind
func Wrap(kind Kind, message string, cause error) *ActionError {
	return &ActionError{
		Kind:    kind,
		Code:    codeFor(kind),
		Message: message,
		Cause:   cause,
	}
}

func codeFor(kind Kind) int {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return ExitGeneralError
}

// Common error constructors

// NetworkError returns an error for a failed release or binary fetch
func NetworkError(message string, cause error) *ActionError {
	return Wrap(KindNetwork, message, cause)
}

// DownloadError returns an error for filesystem failures while provisioning
func DownloadError(message string, cause error) *ActionError {
	return Wrap(KindDownload, message, cause)
}

// AuthError returns an error for authentication failures
func AuthError(message string, cause error) *ActionError {
	return Wrap(KindAuth, message, cause)
}

// InternalError returns an error for socket root and directory listing failures
func InternalError(message string, cause error) *ActionError {
	return Wrap(KindInternal, message, cause)
}

// Timeout returns an error for an expired wait
func Timeout(message string) *ActionError {
	return New(KindTimeout, message)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *ActionError {
	return Wrap(KindConfig, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *ActionError {
	return New(KindConfig, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr.ExitCode()
	}
	return ExitGeneralError
}

// KindOf returns the kind of the first ActionError in err's chain,
// or KindGeneral when there is none.
func KindOf(err error) Kind {
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Kind
	}
	return KindGeneral
}

// IsKind reports whether err's chain contains an ActionError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
