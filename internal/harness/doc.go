// Package harness provides scenario-driven conformance testing for the
// process model builder and validator.
//
// The harness loads build/expect scenarios from YAML, constructs each
// described graph through the builder, validates it, and checks the
// resulting findings against the scenario's expectation.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	strict: false
//	build:
//	  - node: { id: start, kind: start-event, name: "Order received" }
//	  - node: { id: task1, kind: task, name: "Process order" }
//	  - edge: { source: start, target: task1 }
//	  - metadata: { key: process_name, value: demo }
//	expect:
//	  valid: true
//	  warnings:
//	    - "not reachable"
//	  warning_codes: [V110]
//
// Each build step sets exactly one of node, edge, resource, metadata,
// view, mapping, representation. Steps apply in order through the
// builder, so scenarios exercise the same permissive semantics that
// notation adapters rely on: last write wins for repeated node IDs, and
// edges may be added before their endpoints exist.
//
// # Expectations
//
// The expect block pins the validation outcome:
//
//   - valid: the expected overall verdict. Only errors affect validity;
//     warnings never do.
//   - errors / warnings: substrings that must appear in some finding
//     message of that severity.
//   - error_codes / warning_codes: codes that must appear among the
//     findings of that severity.
//
// A scenario with strict: true validates under the strict profile,
// which reports dangling nodes and duplicate edges as errors.
//
// # Golden Snapshots
//
// RunWithGolden compares the built model's canonical JSON against
// testdata/golden/{name}.golden. Canonical serialization (sorted keys,
// no insignificant whitespace) keeps snapshots byte-stable across runs.
// Rendered notation output can be pinned the same way with
// AssertRenderGolden. Regenerate snapshots with:
//
//	go test ./internal/harness -update
//
// # Usage
//
// Run a directory of scenarios as subtests:
//
//	scenarios, err := harness.LoadScenarioDir("testdata/scenarios")
//	if err != nil {
//	    t.Fatal(err)
//	}
//	harness.NewRunner(scenarios...).Run(t)
//
// Or run a suite without a testing.T and inspect the summary:
//
//	suite, err := harness.RunSuiteDir("testdata/scenarios")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d/%d passed\n", suite.Passed, suite.Total)
package harness
