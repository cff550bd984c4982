package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries an exit code through cobra's error return chain.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and underlying error.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// GetExitCode extracts the exit code from an error chain.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope for JSON output.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError describes a failure in JSON output.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// OutputFormatter handles JSON vs text output for commands.
type OutputFormatter struct {
	Format    string
	Verbose   bool
	Writer    io.Writer
	ErrWriter io.Writer
}

// NewOutputFormatter creates a formatter writing to the given streams.
func NewOutputFormatter(format string, verbose bool, out, errOut io.Writer) *OutputFormatter {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &OutputFormatter{Format: format, Verbose: verbose, Writer: out, ErrWriter: errOut}
}

// Success emits a success payload. In text mode the caller renders the
// payload itself and passes a pre-rendered string; in JSON mode any value
// is wrapped in the response envelope.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "success", Data: data})
	}
	if s, ok := data.(string); ok && s != "" {
		fmt.Fprintln(f.Writer, s)
	}
	return nil
}

// Error emits a failure payload and returns an ExitError with the given code.
func (f *OutputFormatter) Error(code int, errCode, message string, details string) error {
	if f.Format == "json" {
		resp := CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: errCode, Message: message, Details: details},
		}
		if err := f.writeJSON(resp); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.ErrWriter, "Error: %s\n", message)
		if details != "" && f.Verbose {
			fmt.Fprintf(f.ErrWriter, "  %s\n", details)
		}
	}
	return NewExitError(code, fmt.Errorf("%s", message))
}

// VerboseLog writes a progress line to stderr when verbose is enabled.
// Text mode only; JSON output stays machine-parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if f.Verbose && f.Format != "json" {
		fmt.Fprintf(f.ErrWriter, format+"\n", args...)
	}
}

func (f *OutputFormatter) writeJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
