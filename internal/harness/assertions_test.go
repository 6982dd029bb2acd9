package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pir/internal/validate"
)

func TestEvaluateExpectation_CleanMatch(t *testing.T) {
	failures := EvaluateExpectation(validate.Report{}, &Expectation{Valid: true})
	assert.Empty(t, failures)
}

func TestEvaluateExpectation_ValidMismatch(t *testing.T) {
	report := validate.Report{
		Errors: []validate.Finding{
			{Code: validate.ErrEdgeTargetMissing, Message: "edge a->b: target not found"},
		},
	}

	failures := EvaluateExpectation(report, &Expectation{Valid: true})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "Expectation failed: valid")
	assert.Contains(t, failures[0], "Expected: no errors")
	assert.Contains(t, failures[0], "Actual: 1 error(s)")
}

func TestEvaluateExpectation_InvalidButClean(t *testing.T) {
	failures := EvaluateExpectation(validate.Report{}, &Expectation{
		Valid:      false,
		ErrorCodes: []string{"V100"},
	})

	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "Expected: at least one error")
	assert.Contains(t, failures[1], "an error with code V100")
	assert.Contains(t, failures[1], "no findings")
}

func TestEvaluateExpectation_MessageSubstrings(t *testing.T) {
	report := validate.Report{
		Errors: []validate.Finding{
			{Code: validate.ErrEdgeTargetMissing, Message: "edge task1->ghost: target not found"},
		},
		Warnings: []validate.Finding{
			{Code: validate.WarnUnreachable, Message: "node end: not reachable from any start node"},
		},
	}

	matched := EvaluateExpectation(report, &Expectation{
		Valid:    false,
		Errors:   []string{"target not found"},
		Warnings: []string{"not reachable"},
	})
	assert.Empty(t, matched)

	failures := EvaluateExpectation(report, &Expectation{
		Valid:  false,
		Errors: []string{"source not found"},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], `an error containing "source not found"`)
	assert.Contains(t, failures[0], "edge task1->ghost: target not found")
}

func TestEvaluateExpectation_CodesMatchExactly(t *testing.T) {
	report := validate.Report{
		Errors: []validate.Finding{
			{Code: validate.ErrEdgeTargetMissing, Message: "edge a->b: target not found"},
		},
	}

	assert.Empty(t, EvaluateExpectation(report, &Expectation{
		Valid:      false,
		ErrorCodes: []string{"V101"},
	}))

	// A code prefix must not match.
	failures := EvaluateExpectation(report, &Expectation{
		Valid:      false,
		ErrorCodes: []string{"V1"},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "an error with code V1")
}

func TestEvaluateExpectation_WarningCodes(t *testing.T) {
	report := validate.Report{
		Warnings: []validate.Finding{
			{Code: validate.WarnDuplicateEdge, Message: "edge a->b: duplicate edge"},
		},
	}

	assert.Empty(t, EvaluateExpectation(report, &Expectation{
		Valid:        true,
		WarningCodes: []string{"V112"},
	}))

	failures := EvaluateExpectation(report, &Expectation{
		Valid:        true,
		WarningCodes: []string{"V110"},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "a warning with code V110")
	assert.Contains(t, failures[0], "V112")
}

func TestAssertionError_Format(t *testing.T) {
	ae := &AssertionError{
		Clause:   "valid",
		Expected: "no errors",
		Actual:   "1 error(s)",
		Report: validate.Report{
			Errors: []validate.Finding{
				{Code: "V101", Message: "edge a->b: target not found"},
			},
			Warnings: []validate.Finding{
				{Code: "V110", Message: "node c: not reachable from any start node"},
			},
		},
	}

	want := strings.Join([]string{
		"Expectation failed: valid",
		"  Expected: no errors",
		"  Actual: 1 error(s)",
		"",
		"Findings:",
		"  error   V101: edge a->b: target not found",
		"  warning V110: node c: not reachable from any start node",
		"",
	}, "\n")
	assert.Equal(t, want, ae.Error())
}

func TestAssertionError_NoFindings(t *testing.T) {
	ae := &AssertionError{
		Clause:   "valid",
		Expected: "at least one error",
		Actual:   "no errors",
	}

	assert.Contains(t, ae.Error(), "Findings:\n  (none)\n")
}
