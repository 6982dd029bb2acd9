package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios build a process model step by step and assert on the
// validation findings the finished graph produces.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the subtest
	// and golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Strict applies the strict validation profile: dangling nodes and
	// duplicate edges are reported as errors instead of warnings.
	Strict bool `yaml:"strict,omitempty"`

	// Build contains the construction steps, applied in order.
	// Each step carries exactly one clause.
	Build []BuildStep `yaml:"build"`

	// Expect specifies the expected validation outcome.
	Expect Expectation `yaml:"expect"`
}

// BuildStep is a one-of: exactly one clause must be set.
type BuildStep struct {
	Node           *NodeStep           `yaml:"node,omitempty"`
	Edge           *EdgeStep           `yaml:"edge,omitempty"`
	Resource       *ResourceStep       `yaml:"resource,omitempty"`
	Metadata       *MetadataStep       `yaml:"metadata,omitempty"`
	View           *ViewStep           `yaml:"view,omitempty"`
	Mapping        *MappingStep        `yaml:"mapping,omitempty"`
	Representation *RepresentationStep `yaml:"representation,omitempty"`
}

// NodeStep registers a node. Re-using an id overwrites the previous
// definition (last write wins), matching the builder's default policy.
type NodeStep struct {
	ID         string            `yaml:"id"`
	Kind       string            `yaml:"kind"`
	Name       string            `yaml:"name,omitempty"`
	Lane       string            `yaml:"lane,omitempty"`
	PolicyRef  string            `yaml:"policy_ref,omitempty"`
	Extensions map[string]string `yaml:"extensions,omitempty"`
}

// EdgeStep appends an edge. Endpoints need not exist yet; referential
// integrity is asserted through the expectation, not at build time.
type EdgeStep struct {
	Source     string `yaml:"source"`
	Target     string `yaml:"target"`
	Guard      string `yaml:"guard,omitempty"`
	Label      string `yaml:"label,omitempty"`
	Undirected bool   `yaml:"undirected,omitempty"`
}

// ResourceStep upserts a resource pool configuration.
type ResourceStep struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name,omitempty"`
	Capacity    int               `yaml:"capacity,omitempty"`
	Skills      []string          `yaml:"skills,omitempty"`
	CostPerHour float64           `yaml:"cost_per_hour,omitempty"`
	Schedule    map[string]string `yaml:"schedule,omitempty"`
}

// MetadataStep upserts a process-level metadata entry.
type MetadataStep struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// ViewStep upserts a diagram view.
type ViewStep struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name,omitempty"`
	Viewpoint string            `yaml:"viewpoint,omitempty"`
	Nodes     []string          `yaml:"nodes,omitempty"`
	Edges     []string          `yaml:"edges,omitempty"`
	Props     map[string]string `yaml:"props,omitempty"`
}

// MappingStep appends cross-notation references for a node.
type MappingStep struct {
	Node string   `yaml:"node"`
	Refs []string `yaml:"refs"`
}

// RepresentationStep attaches original source text under a format key.
type RepresentationStep struct {
	Format string `yaml:"format"`
	Data   string `yaml:"data"`
}

// Expectation specifies the expected validation outcome.
// Message entries are substring matches against finding messages;
// code entries match finding codes exactly.
type Expectation struct {
	// Valid is the expected overall verdict: true means no findings at
	// error severity.
	Valid bool `yaml:"valid"`

	// Errors lists substrings that must each appear in some error message.
	Errors []string `yaml:"errors,omitempty"`

	// Warnings lists substrings that must each appear in some warning message.
	Warnings []string `yaml:"warnings,omitempty"`

	// ErrorCodes lists codes that must each appear among the errors.
	ErrorCodes []string `yaml:"error_codes,omitempty"`

	// WarningCodes lists codes that must each appear among the warnings.
	WarningCodes []string `yaml:"warning_codes,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expect:" vs "expects:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario in dir, sorted by file name.
// Scenario names must be unique across the directory because they key
// subtests and golden files.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenario dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := seen[sc.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), sc.Name, prev)
		}
		seen[sc.Name] = filepath.Base(path)
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Build) == 0 {
		return fmt.Errorf("build list is required and must be non-empty")
	}

	for i := range s.Build {
		if err := validateStep(i, &s.Build[i]); err != nil {
			return err
		}
	}

	return validateExpectation(&s.Expect)
}

// validateStep checks the one-of constraint and the clause's required
// fields so typos fail at load time with the step index.
func validateStep(index int, step *BuildStep) error {
	var set []string
	if step.Node != nil {
		set = append(set, "node")
	}
	if step.Edge != nil {
		set = append(set, "edge")
	}
	if step.Resource != nil {
		set = append(set, "resource")
	}
	if step.Metadata != nil {
		set = append(set, "metadata")
	}
	if step.View != nil {
		set = append(set, "view")
	}
	if step.Mapping != nil {
		set = append(set, "mapping")
	}
	if step.Representation != nil {
		set = append(set, "representation")
	}

	if len(set) == 0 {
		return fmt.Errorf("build[%d]: step must set one of node, edge, resource, metadata, view, mapping, representation", index)
	}
	if len(set) > 1 {
		return fmt.Errorf("build[%d]: step sets %v, exactly one clause is allowed", index, set)
	}

	switch {
	case step.Node != nil:
		if step.Node.ID == "" {
			return fmt.Errorf("build[%d].node: id is required", index)
		}
		if step.Node.Kind == "" {
			return fmt.Errorf("build[%d].node: kind is required", index)
		}
	case step.Edge != nil:
		if step.Edge.Source == "" {
			return fmt.Errorf("build[%d].edge: source is required", index)
		}
		if step.Edge.Target == "" {
			return fmt.Errorf("build[%d].edge: target is required", index)
		}
	case step.Resource != nil:
		if step.Resource.ID == "" {
			return fmt.Errorf("build[%d].resource: id is required", index)
		}
	case step.Metadata != nil:
		if step.Metadata.Key == "" {
			return fmt.Errorf("build[%d].metadata: key is required", index)
		}
	case step.View != nil:
		if step.View.ID == "" {
			return fmt.Errorf("build[%d].view: id is required", index)
		}
	case step.Mapping != nil:
		if step.Mapping.Node == "" {
			return fmt.Errorf("build[%d].mapping: node is required", index)
		}
		if len(step.Mapping.Refs) == 0 {
			return fmt.Errorf("build[%d].mapping: refs list is required and must be non-empty", index)
		}
	case step.Representation != nil:
		if step.Representation.Format == "" {
			return fmt.Errorf("build[%d].representation: format is required", index)
		}
	}

	return nil
}

// validateExpectation rejects contradictory and toothless expectations.
func validateExpectation(e *Expectation) error {
	if e.Valid && (len(e.Errors) > 0 || len(e.ErrorCodes) > 0) {
		return fmt.Errorf("expect: valid is true but error expectations are present")
	}
	if !e.Valid && len(e.Errors) == 0 && len(e.ErrorCodes) == 0 {
		return fmt.Errorf("expect: invalid scenarios must name at least one expected error or error code")
	}
	return nil
}
