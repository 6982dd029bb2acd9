package harness

import (
	"fmt"
	"testing"

	"github.com/roach88/pir/internal/builder"
	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/validate"
)

// RunScenario executes a scenario: the build steps construct a model
// through the builder, the graph is validated under the scenario's
// profile, and the findings are checked against the expectation.
//
// An error return means the scenario infrastructure failed (a build step
// was rejected); expectation mismatches are reported on the Result.
func RunScenario(scenario *Scenario) (*Result, error) {
	b := builder.New()
	for i, step := range scenario.Build {
		if err := applyStep(b, step); err != nil {
			return nil, fmt.Errorf("build step %d: %w", i, err)
		}
	}

	m := b.Build()

	profile := validate.DefaultProfile()
	if scenario.Strict {
		profile = validate.StrictProfile()
	}
	report := validate.ModelWithProfile(m, profile)

	result := NewResult()
	result.Model = m
	result.Report = report
	for _, msg := range EvaluateExpectation(report, &scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

// applyStep dispatches one build clause to the builder.
func applyStep(b *builder.Builder, step BuildStep) error {
	switch {
	case step.Node != nil:
		return b.AddNode(builder.NodeSpec{
			ID:         step.Node.ID,
			Kind:       step.Node.Kind,
			Name:       step.Node.Name,
			Lane:       step.Node.Lane,
			PolicyRef:  step.Node.PolicyRef,
			Extensions: step.Node.Extensions,
		})
	case step.Edge != nil:
		return b.AddEdge(builder.EdgeSpec{
			Source:     step.Edge.Source,
			Target:     step.Edge.Target,
			Guard:      step.Edge.Guard,
			Label:      step.Edge.Label,
			Undirected: step.Edge.Undirected,
		})
	case step.Resource != nil:
		return b.SetResourcePool(step.Resource.ID, model.ResourcePool{
			Name:        step.Resource.Name,
			Capacity:    step.Resource.Capacity,
			Skills:      step.Resource.Skills,
			CostPerHour: step.Resource.CostPerHour,
			Schedule:    step.Resource.Schedule,
		})
	case step.Metadata != nil:
		return b.SetMetadata(step.Metadata.Key, step.Metadata.Value)
	case step.View != nil:
		return b.SetView(builder.ViewSpec{
			ID:        step.View.ID,
			Name:      step.View.Name,
			Viewpoint: step.View.Viewpoint,
			Nodes:     step.View.Nodes,
			Edges:     step.View.Edges,
			Props:     step.View.Props,
		})
	case step.Mapping != nil:
		return b.AddMapping(step.Mapping.Node, step.Mapping.Refs...)
	case step.Representation != nil:
		return b.AttachRepresentation(step.Representation.Format, step.Representation.Data)
	}
	// validateStep guarantees one clause is set.
	return fmt.Errorf("empty build step")
}

// Runner executes a set of scenarios as named subtests.
type Runner struct {
	scenarios []*Scenario
}

// NewRunner creates a runner over the given scenarios.
func NewRunner(scenarios ...*Scenario) *Runner {
	return &Runner{scenarios: scenarios}
}

// Run executes every scenario under t.Run. A scenario whose build steps
// fail aborts its subtest; expectation mismatches are reported
// individually so one subtest shows every failed clause.
func (r *Runner) Run(t *testing.T) {
	for _, scenario := range r.scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunScenario(scenario)
			if err != nil {
				t.Fatalf("scenario %s: %v", scenario.Name, err)
			}
			for _, msg := range result.Errors {
				t.Error(msg)
			}
		})
	}
}
