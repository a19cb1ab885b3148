package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A demo step or render failed
	ExitCommandError = 2 // Bad arguments, unknown demo, unreadable config
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// formatter writes command results as text or as a JSON envelope.
type formatter struct {
	format  string
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *formatter {
	return &formatter{format: opts.Format, out: out, errOut: errOut, verbose: opts.Verbose}
}

// success emits data. In text mode text renders it instead.
func (f *formatter) success(data any, text func(w io.Writer) error) error {
	if f.format == "json" {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return enc.Encode(response{Status: "ok", Data: data})
	}
	return text(f.out)
}

// logf writes diagnostics to stderr when verbose output is on, so JSON on
// stdout stays parseable.
func (f *formatter) logf(format string, args ...any) {
	if !f.verbose {
		return
	}
	fmt.Fprintf(f.errOut, format+"\n", args...)
}
