// Package logging provides logging utilities for setup-cloudsql-proxy.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("resolved release", "tag", tag, "os", p.OS, "arch", p.Arch)
//	logging.Warn("proxy exited", "pid", pid, "code", code)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Downloading Cloud SQL Proxy %s...", tag)
//	logging.UserSuccess("Cloud SQL Proxy ready at %s", path)
//	logging.UserWarning("No credentials file, checking existing authentication")
//	logging.UserError("Failed to start proxy: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators, coloured with lipgloss when the
// destination is a terminal:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
