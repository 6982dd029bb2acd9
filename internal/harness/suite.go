package harness

import "fmt"

// SuiteResult summarizes a run over a set of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure records one failed scenario.
type ScenarioFailure struct {
	Scenario string `json:"scenario"`
	Error    string `json:"error"`
}

// RunSuite executes every scenario and aggregates the outcomes.
// Unlike Runner.Run it needs no testing.T, so tooling can run a
// conformance directory and report a summary.
func RunSuite(scenarios []*Scenario) *SuiteResult {
	suite := &SuiteResult{}

	for _, scenario := range scenarios {
		suite.Total++

		result, err := RunScenario(scenario)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Error:    fmt.Sprintf("scenario execution failed: %v", err),
			})
			continue
		}

		if !result.Pass {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Error:    fmt.Sprintf("expectations failed: %v", result.Errors),
			})
			continue
		}

		suite.Passed++
	}

	return suite
}

// RunSuiteDir loads and runs every scenario in dir.
func RunSuiteDir(dir string) (*SuiteResult, error) {
	scenarios, err := LoadScenarioDir(dir)
	if err != nil {
		return nil, err
	}
	return RunSuite(scenarios), nil
}
