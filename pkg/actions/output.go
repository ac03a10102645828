// Package actions emits step outputs in the GitHub Actions convention.
//
// Outputs are name=value lines appended to the file named by the
// GITHUB_OUTPUT environment variable. Outside of a workflow run the
// variable is unset and emission is a no-op, so the same binary works
// unchanged in CI and on a developer machine.
package actions

import (
	"fmt"
	"os"
	"strings"
)

// EnvOutputFile is the environment variable naming the output file.
const EnvOutputFile = "GITHUB_OUTPUT"

// OutputWriter appends name=value pairs to a workflow output file.
type OutputWriter struct {
	path string
}

// NewOutputWriter returns a writer backed by the file named in
// GITHUB_OUTPUT. When the variable is unset the writer discards outputs.
func NewOutputWriter() *OutputWriter {
	return &OutputWriter{path: os.Getenv(EnvOutputFile)}
}

// NewOutputWriterForPath returns a writer backed by an explicit file path.
// An empty path discards outputs.
func NewOutputWriterForPath(path string) *OutputWriter {
	return &OutputWriter{path: path}
}

// Enabled reports whether outputs are written anywhere.
func (w *OutputWriter) Enabled() bool {
	return w != nil && w.path != ""
}

// Set appends a single name=value output line. Multi-line values are not
// supported by the plain name=value form and are rejected.
func (w *OutputWriter) Set(name, value string) error {
	if !w.Enabled() {
		return nil
	}
	if name == "" {
		return fmt.Errorf("output name is empty")
	}
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("output %q contains a newline", name)
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	_, writeErr := fmt.Fprintf(f, "%s=%s\n", name, value)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("write output %q: %w", name, writeErr)
	}
	return closeErr
}
