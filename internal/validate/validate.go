// Package validate checks process models for structural problems.
//
// Validation is pure and total: every rule runs over the whole model, all
// findings are collected, and nothing short-circuits. Hard integrity breaks
// (edges into nowhere, corrupted node keys) are errors; soft structural
// smells (unreachable nodes, dangling work) are warnings. The split is
// deliberate - a model parsed from a half-finished diagram must still be
// inspectable, diffable, and storable.
package validate

import (
	"fmt"
	"slices"

	"github.com/roach88/pir/internal/model"
)

// Validation finding codes (V100-V199)
const (
	// Referential integrity errors (V100-V109)
	ErrEdgeSourceMissing = "V100" // edge source is not a known node
	ErrEdgeTargetMissing = "V101" // edge target is not a known node
	ErrNodeIDMismatch    = "V102" // nodes map key differs from node id

	// Structural warnings (V110-V119)
	WarnUnreachable     = "V110" // node unreachable from every start node
	WarnDangling        = "V111" // non-terminal node without outgoing edges
	WarnDuplicateEdge   = "V112" // repeated source/target/guard triple
	WarnViewUnknownNode = "V113" // view references a node that does not exist
)

// Finding is a single validation observation. Message carries the bare
// human-readable text; Code is the stable machine identifier.
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Report is the complete outcome of validating one model.
type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Valid reports whether the model passed without errors.
// Warnings do not affect validity.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// ErrorMessages returns the error texts in finding order.
func (r Report) ErrorMessages() []string {
	return messages(r.Errors)
}

// WarningMessages returns the warning texts in finding order.
func (r Report) WarningMessages() []string {
	return messages(r.Warnings)
}

func messages(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message
	}
	return out
}

// Profile adjusts finding severity for a notation family without changing
// the rules themselves. Promote lists warning codes reported as errors.
type Profile struct {
	Name    string
	Promote map[string]bool
}

// DefaultProfile keeps the standard severity split.
func DefaultProfile() Profile {
	return Profile{Name: "default"}
}

// StrictProfile treats dangling nodes and duplicate edges as errors.
// Notations that require explicit termination (BPMN-like) want this.
func StrictProfile() Profile {
	return Profile{
		Name: "strict",
		Promote: map[string]bool{
			WarnDangling:      true,
			WarnDuplicateEdge: true,
		},
	}
}

// Model validates m under the default profile.
// Returns all findings (does not fail-fast). The model is never mutated.
func Model(m *model.Model) Report {
	return ModelWithProfile(m, DefaultProfile())
}

// ModelWithProfile validates m and applies p's severity promotions.
func ModelWithProfile(m *model.Model, p Profile) Report {
	var errs []Finding
	errs = append(errs, referentialFindings(m)...)
	errs = append(errs, nodeKeyFindings(m)...)

	var warns []Finding
	warns = append(warns, unreachableFindings(m)...)
	warns = append(warns, danglingFindings(m)...)
	warns = append(warns, duplicateEdgeFindings(m)...)
	warns = append(warns, viewFindings(m)...)

	if len(p.Promote) > 0 {
		var kept []Finding
		for _, f := range warns {
			if p.Promote[f.Code] {
				errs = append(errs, f)
			} else {
				kept = append(kept, f)
			}
		}
		warns = kept
	}

	return Report{Errors: errs, Warnings: warns}
}

// referentialFindings checks every edge endpoint against the node map in a
// single forward pass. One finding per missing endpoint, so an edge with
// two ghosts produces two findings.
func referentialFindings(m *model.Model) []Finding {
	var findings []Finding
	for _, e := range m.Edges {
		if _, ok := m.Nodes[e.Source]; !ok {
			findings = append(findings, Finding{
				Code:    ErrEdgeSourceMissing,
				Message: fmt.Sprintf("edge %s->%s: source not found", e.Source, e.Target),
			})
		}
		if _, ok := m.Nodes[e.Target]; !ok {
			findings = append(findings, Finding{
				Code:    ErrEdgeTargetMissing,
				Message: fmt.Sprintf("edge %s->%s: target not found", e.Source, e.Target),
			})
		}
	}
	return findings
}

// nodeKeyFindings checks the map-key-equals-node-id invariant, in sorted
// key order.
func nodeKeyFindings(m *model.Model) []Finding {
	var findings []Finding
	for _, key := range m.NodeIDs() {
		if n := m.Nodes[key]; n.ID != key {
			findings = append(findings, Finding{
				Code:    ErrNodeIDMismatch,
				Message: fmt.Sprintf("node %s: id mismatch (node.id %s)", key, n.ID),
			})
		}
	}
	return findings
}

// duplicateEdgeFindings reports exact repeats of a source/target/guard
// triple, one finding per extra occurrence, in edge-sequence order.
// Duplicates are legal (the builder never rejects them) but usually
// indicate a double-drawn flow in the source diagram.
func duplicateEdgeFindings(m *model.Model) []Finding {
	type edgeKey struct {
		source, target, guard string
	}
	seen := make(map[edgeKey]bool, len(m.Edges))
	var findings []Finding
	for _, e := range m.Edges {
		k := edgeKey{e.Source, e.Target, e.Guard}
		if seen[k] {
			findings = append(findings, Finding{
				Code:    WarnDuplicateEdge,
				Message: fmt.Sprintf("edge %s->%s: duplicate edge", e.Source, e.Target),
			})
			continue
		}
		seen[k] = true
	}
	return findings
}

// viewFindings checks that every node id a view references exists,
// iterating views in sorted id order.
func viewFindings(m *model.Model) []Finding {
	viewIDs := make([]string, 0, len(m.Views))
	for id := range m.Views {
		viewIDs = append(viewIDs, id)
	}
	slices.Sort(viewIDs)

	var findings []Finding
	for _, viewID := range viewIDs {
		for _, nodeID := range m.Views[viewID].Nodes {
			if _, ok := m.Nodes[nodeID]; !ok {
				findings = append(findings, Finding{
					Code:    WarnViewUnknownNode,
					Message: fmt.Sprintf("view %s: node %s not found", viewID, nodeID),
				})
			}
		}
	}
	return findings
}
