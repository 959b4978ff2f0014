// Package actions writes step results back to the GitHub Actions runner.
//
// Outputs, exported variables and PATH entries go to the files the runner
// names in GITHUB_OUTPUT, GITHUB_ENV and GITHUB_PATH. Each is skipped when
// its variable is unset, so the tool also works outside a runner.
package actions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

// Files are the runner command files.
type Files struct {
	Output string // GITHUB_OUTPUT
	Env    string // GITHUB_ENV
	Path   string // GITHUB_PATH
}

// FilesFromEnv reads the runner file locations using getenv.
func FilesFromEnv(getenv func(string) string) Files {
	return Files{
		Output: getenv("GITHUB_OUTPUT"),
		Env:    getenv("GITHUB_ENV"),
		Path:   getenv("GITHUB_PATH"),
	}
}

// Runner writes results for the current step.
type Runner struct {
	fs    system.FileSystem
	files Files
	out   io.Writer

	// Setenv and Getenv reach the current process environment.
	Setenv func(key, value string) error
	Getenv func(key string) string
}

// New creates a Runner. Annotations are written to out; nil means stdout.
func New(fs system.FileSystem, files Files, out io.Writer) *Runner {
	if fs == nil {
		fs = system.DefaultFS()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Runner{
		fs:     fs,
		files:  files,
		out:    out,
		Setenv: os.Setenv,
		Getenv: os.Getenv,
	}
}

// Entry is one name and value for GITHUB_OUTPUT or GITHUB_ENV.
type Entry struct {
	Name  string
	Value string
}

// SetOutput sets a step output.
func (r *Runner) SetOutput(name, value string) error {
	return r.SetOutputs(Entry{Name: name, Value: value})
}

// SetOutputs sets step outputs in a single write, so either all of them
// reach GITHUB_OUTPUT or none do.
func (r *Runner) SetOutputs(entries ...Entry) error {
	for _, e := range entries {
		logging.Debug("set output", "name", e.Name, "value", e.Value)
	}
	return r.appendEntries(r.files.Output, "GITHUB_OUTPUT", entries)
}

// ExportVariable sets name for later steps and for this process.
func (r *Runner) ExportVariable(name, value string) error {
	return r.ExportVariables(Entry{Name: name, Value: value})
}

// ExportVariables writes entries to GITHUB_ENV in a single write, then sets
// them in this process.
func (r *Runner) ExportVariables(entries ...Entry) error {
	if err := r.appendEntries(r.files.Env, "GITHUB_ENV", entries); err != nil {
		return err
	}
	for _, e := range entries {
		if err := r.Setenv(e.Name, e.Value); err != nil {
			return fmt.Errorf("setenv %s: %w", e.Name, err)
		}
		logging.Debug("export variable", "name", e.Name, "value", e.Value)
	}
	return nil
}

// AddPath prepends dir to PATH for later steps and for this process.
func (r *Runner) AddPath(dir string) error {
	path := dir
	if cur := r.Getenv("PATH"); cur != "" {
		path = dir + string(os.PathListSeparator) + cur
	}
	if err := r.Setenv("PATH", path); err != nil {
		return fmt.Errorf("setenv PATH: %w", err)
	}

	if r.files.Path == "" {
		logging.Debug("GITHUB_PATH not set, skipping", "dir", dir)
		return nil
	}
	if err := r.fs.AppendFile(r.files.Path, []byte(dir+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(r.files.Path), err)
	}
	return nil
}

// Error emits an error annotation, which also marks the step as failed in
// the runner UI.
func (r *Runner) Error(msg string) {
	fmt.Fprintf(r.out, "::error::%s\n", escapeData(msg))
}

// Debug emits a debug annotation, shown only when step debugging is on.
func (r *Runner) Debug(msg string) {
	fmt.Fprintf(r.out, "::debug::%s\n", escapeData(msg))
}

// appendEntries writes name<<delim\nvalue\ndelim\n for each entry to file
// with one append.
func (r *Runner) appendEntries(file, variable string, entries []Entry) error {
	if file == "" {
		logging.Debug(variable+" not set, skipping", "entries", len(entries))
		return nil
	}

	var buf strings.Builder
	for _, e := range entries {
		delim := "ghadelimiter_" + uuid.NewString()
		if strings.Contains(e.Name, delim) || strings.Contains(e.Value, delim) {
			return fmt.Errorf("%s: value for %s contains the delimiter", variable, e.Name)
		}
		fmt.Fprintf(&buf, "%s<<%s\n%s\n%s\n", e.Name, delim, e.Value, delim)
	}

	if err := r.fs.AppendFile(file, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", variable, err)
	}
	return nil
}

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}
