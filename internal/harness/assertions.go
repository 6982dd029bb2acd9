package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/pir/internal/validate"
)

// AssertionError is produced when an expectation clause fails.
// It includes the full findings list to help debug the failure.
type AssertionError struct {
	Clause   string          // Expectation clause for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Report   validate.Report // Full findings for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with the failed clause
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Clause)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Full findings for context
	fmt.Fprintf(&buf, "\nFindings:\n")
	if len(e.Report.Errors) == 0 && len(e.Report.Warnings) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for _, f := range e.Report.Errors {
		fmt.Fprintf(&buf, "  error   %s: %s\n", f.Code, f.Message)
	}
	for _, f := range e.Report.Warnings {
		fmt.Fprintf(&buf, "  warning %s: %s\n", f.Code, f.Message)
	}

	return buf.String()
}

// EvaluateExpectation checks every expectation clause against the report.
// Returns one message per failed clause; an empty slice means the report
// matched. Message clauses are substring matches, code clauses are exact.
func EvaluateExpectation(report validate.Report, e *Expectation) []string {
	var errors []string
	fail := func(clause, expected, actual string) {
		ae := &AssertionError{
			Clause:   clause,
			Expected: expected,
			Actual:   actual,
			Report:   report,
		}
		errors = append(errors, ae.Error())
	}

	if e.Valid != report.Valid() {
		if e.Valid {
			fail("valid", "no errors", fmt.Sprintf("%d error(s)", len(report.Errors)))
		} else {
			fail("valid", "at least one error", "no errors")
		}
	}

	for _, want := range e.Errors {
		if !containsSubstring(report.ErrorMessages(), want) {
			fail("errors", fmt.Sprintf("an error containing %q", want),
				describeMessages(report.ErrorMessages()))
		}
	}

	for _, want := range e.Warnings {
		if !containsSubstring(report.WarningMessages(), want) {
			fail("warnings", fmt.Sprintf("a warning containing %q", want),
				describeMessages(report.WarningMessages()))
		}
	}

	for _, code := range e.ErrorCodes {
		if !containsCode(report.Errors, code) {
			fail("error_codes", fmt.Sprintf("an error with code %s", code),
				describeCodes(report.Errors))
		}
	}

	for _, code := range e.WarningCodes {
		if !containsCode(report.Warnings, code) {
			fail("warning_codes", fmt.Sprintf("a warning with code %s", code),
				describeCodes(report.Warnings))
		}
	}

	return errors
}

// containsSubstring reports whether any message contains want.
func containsSubstring(messages []string, want string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, want) {
			return true
		}
	}
	return false
}

// containsCode reports whether any finding carries the code exactly.
func containsCode(findings []validate.Finding, code string) bool {
	for _, f := range findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func describeMessages(messages []string) string {
	if len(messages) == 0 {
		return "no findings"
	}
	return strings.Join(messages, "; ")
}

func describeCodes(findings []validate.Finding) string {
	if len(findings) == 0 {
		return "no findings"
	}
	codes := make([]string, len(findings))
	for i, f := range findings {
		codes[i] = f.Code
	}
	return strings.Join(codes, ", ")
}
