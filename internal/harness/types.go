package harness

import (
	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/validate"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation clause matched.
	Pass bool `json:"pass"`

	// Model is the graph the build steps produced.
	Model *model.Model `json:"-"`

	// Report holds the validation findings the expectation was checked
	// against.
	Report validate.Report `json:"report"`

	// Errors contains expectation mismatch messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
