package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, target string) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, target string) error {
	if _, err := fmt.Fprintf(w, "Linting scripts in: %s\n", target); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	current := ""
	for _, issue := range result.Issues {
		if issue.FilePath != current {
			current = issue.FilePath
			if _, err := fmt.Fprintf(w, "\n%s\n", current); err != nil {
				return err
			}
		}
		if err := f.formatIssue(w, issue); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d file%s scanned\n", result.FilesTotal, pluralize(result.FilesTotal)); err != nil {
		return err
	}
	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if len(result.Issues) == 0 {
		_, err := fmt.Fprintln(w, "✨ All scripts pass linting!")
		return err
	}
	return nil
}

func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) error {
	icon := "⚠"
	if issue.Severity == SeverityError {
		icon = "✗"
	}
	if _, err := fmt.Fprintf(w, "  %s line %d, col %d, %s (%s)\n", icon, issue.Line, issue.Column, issue.Message, issue.Rule); err != nil {
		return err
	}
	if src := strings.TrimSpace(issue.Source); src != "" {
		if _, err := fmt.Fprintf(w, "      %s\n", src); err != nil {
			return err
		}
	}
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Target       string      `json:"target"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath string `json:"file_path"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, target string) error {
	output := JSONOutput{
		Target:       target,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       []JSONIssue{},
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath: issue.FilePath,
			Severity: issue.Severity.String(),
			Rule:     issue.Rule,
			Message:  issue.Message,
			Line:     issue.Line,
			Column:   issue.Column,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	if format == "json" {
		return NewJSONFormatter()
	}
	return NewTextFormatter()
}
