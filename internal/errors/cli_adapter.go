package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Process exit codes by error category. Categories missing here exit 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryLint:       3,
	CategoryConfig:     7,
	CategoryInternal:   10,
	CategoryBuild:      11,
	CategoryCompile:    11,
	CategoryTemplate:   11,
	CategoryFileSystem: 11,
	CategoryRuntime:    12,
	CategoryCanceled:   130,
}

// CLIErrorAdapter turns a command error into a stderr message and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// ExitCodeFor returns 0 for nil, the category code for classified errors and
// 1 otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if abe, ok := As(err); ok {
		if code, known := exitCodes[abe.Category]; known {
			return code
		}
	}
	return 1
}

// FormatError renders err for the terminal. Verbose mode prints the full
// chain; otherwise config problems print only their message and compile or
// template failures keep the compiler output, which carries the location.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	abe, ok := As(err)
	switch {
	case !ok:
		return fmt.Sprintf("Error: %v", err)
	case a.verbose:
		return abe.Error()
	case abe.Category == CategoryConfig || abe.Category == CategoryValidation:
		return abe.Message
	case (abe.Category == CategoryCompile || abe.Category == CategoryTemplate) && abe.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", abe.Category, abe.Message, abe.Cause)
	default:
		return fmt.Sprintf("%s: %s", abe.Category, abe.Message)
	}
}

// Report writes the formatted error and returns the exit code without
// exiting.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}
	abe, classified := As(err)
	switch {
	case !classified:
		a.logger.Error("Unclassified error", "error", err)
	case a.verbose || abe.Category == CategoryInternal || abe.Category == CategoryRuntime:
		attrs := []any{"category", string(abe.Category), "severity", string(abe.Severity)}
		for k, v := range abe.Context {
			attrs = append(attrs, k, v)
		}
		a.logger.Error(abe.Message, attrs...)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError reports err and exits the process. A nil error returns.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(a.Report(err))
}
