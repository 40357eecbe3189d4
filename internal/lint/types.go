package lint

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError indicates code that will not parse or run.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single linting problem found in a file.
type Issue struct {
	FilePath string   // Project-relative path to the file
	Severity Severity // Issue severity level
	Rule     string   // Rule identifier (e.g., "syntax")
	Message  string   // Brief description of the issue
	Line     int      // 1-based line number (0 if file-level issue)
	Column   int      // 1-based column (0 if unknown)
	Source   string   // Offending source line, when available
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int // Total files scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Rule checks the contents of a single script.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check inspects src and returns any issues found. filePath is used
	// only for reporting.
	Check(filePath string, src []byte) []Issue
}
