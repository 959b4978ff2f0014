// Package errors provides typed errors with exit codes for setup-cloudsql-proxy.
//
// # Error Types
//
// ActionError is the base error type that wraps an error with a kind and an
// exit code:
//
//	type ActionError struct {
//	    Kind    Kind   // Failure category
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess       = 0  // Success
//	ExitGeneralError  = 1  // General/unknown errors
//	ExitNetworkError  = 2  // Release index or binary fetch failed
//	ExitDownloadError = 3  // Writing or chmod-ing the proxy binary failed
//	ExitAuthError     = 4  // Google Cloud authentication failed
//	ExitInternalError = 5  // Socket root or directory listing failure
//	ExitTimeout       = 6  // Proxy socket never appeared
//	ExitConfigError   = 7  // Missing or invalid input
//
// A timeout is deliberately distinct from the other kinds so callers can tell
// "the proxy never started" apart from "the proxy started but never became
// ready".
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
