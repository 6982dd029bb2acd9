package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pir/internal/model"
)

func nodeMap(ns ...model.Node) map[string]model.Node {
	m := make(map[string]model.Node, len(ns))
	for _, n := range ns {
		m[n.ID] = n
	}
	return m
}

// linearProcess is the canonical clean model: start -> task1 -> end.
func linearProcess() *model.Model {
	return &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "task1", Kind: model.KindTask, Name: "Do work"},
			model.Node{ID: "end", Kind: model.KindEndEvent, Name: "End"},
		),
		Edges: []model.Edge{
			{Source: "start", Target: "task1"},
			{Source: "task1", Target: "end"},
		},
	}
}

// =============================================================================
// Referential Integrity Tests
// =============================================================================

func TestValidateCleanModel(t *testing.T) {
	report := Model(linearProcess())

	assert.True(t, report.Valid())
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateMissingTarget(t *testing.T) {
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "task1", Kind: model.KindTask, Name: "Do work"},
		),
		Edges: []model.Edge{
			{Source: "start", Target: "task1"},
			{Source: "task1", Target: "ghost"},
		},
	}

	report := Model(m)

	assert.False(t, report.Valid())
	require.Equal(t, []string{"edge task1->ghost: target not found"}, report.ErrorMessages())
	assert.Equal(t, ErrEdgeTargetMissing, report.Errors[0].Code)
	assert.Empty(t, report.Warnings)
}

func TestValidateMissingSource(t *testing.T) {
	m := linearProcess()
	m.Edges = append(m.Edges, model.Edge{Source: "ghost", Target: "task1"})

	report := Model(m)

	require.Equal(t, []string{"edge ghost->task1: source not found"}, report.ErrorMessages())
	assert.Equal(t, ErrEdgeSourceMissing, report.Errors[0].Code)
	assert.Empty(t, report.Warnings)
}

func TestValidateBothEndpointsMissing(t *testing.T) {
	m := &model.Model{
		Nodes: map[string]model.Node{},
		Edges: []model.Edge{{Source: "ghost1", Target: "ghost2"}},
	}

	report := Model(m)

	require.Equal(t, []string{
		"edge ghost1->ghost2: source not found",
		"edge ghost1->ghost2: target not found",
	}, report.ErrorMessages())
	assert.Equal(t, ErrEdgeSourceMissing, report.Errors[0].Code)
	assert.Equal(t, ErrEdgeTargetMissing, report.Errors[1].Code)
}

func TestValidateNodeKeyMismatch(t *testing.T) {
	m := &model.Model{
		Nodes: map[string]model.Node{
			"a": {ID: "b", Kind: model.KindTask, Name: "Mislabeled"},
		},
	}

	report := Model(m)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, ErrNodeIDMismatch, report.Errors[0].Code)
	assert.Equal(t, "node a: id mismatch (node.id b)", report.Errors[0].Message)
}

func TestValidateErrorOrdering(t *testing.T) {
	// Edge findings come first in edge-sequence order, then key mismatches
	// in sorted key order.
	m := &model.Model{
		Nodes: map[string]model.Node{
			"k": {ID: "z", Kind: model.KindTask, Name: "Mislabeled"},
		},
		Edges: []model.Edge{
			{Source: "x", Target: "k"},
			{Source: "k", Target: "y"},
		},
	}

	report := Model(m)

	require.Equal(t, []string{
		"edge x->k: source not found",
		"edge k->y: target not found",
		"node k: id mismatch (node.id z)",
	}, report.ErrorMessages())
}

// =============================================================================
// Reachability Tests
// =============================================================================

func TestValidateUnreachableNode(t *testing.T) {
	m := linearProcess()
	m.Nodes["island"] = model.Node{ID: "island", Kind: model.KindTask, Name: "Orphan"}
	m.Edges = append(m.Edges, model.Edge{Source: "island", Target: "end"})

	report := Model(m)

	assert.True(t, report.Valid())
	require.Equal(t, []string{"node island: not reachable from any start node"}, report.WarningMessages())
	assert.Equal(t, WarnUnreachable, report.Warnings[0].Code)
}

func TestValidateUnreachableWarningClears(t *testing.T) {
	m := linearProcess()
	m.Nodes["island"] = model.Node{ID: "island", Kind: model.KindTask, Name: "Orphan"}
	m.Edges = append(m.Edges, model.Edge{Source: "island", Target: "end"})
	require.NotEmpty(t, Model(m).Warnings)

	// Wiring the island into the main flow clears the finding.
	m.Edges = append(m.Edges, model.Edge{Source: "task1", Target: "island"})

	report := Model(m)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateStartKindPrefix(t *testing.T) {
	// Any kind beginning with "start" seeds reachability, not just the
	// canonical start-event.
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "s", Kind: "start-signal", Name: "Signal"},
			model.Node{ID: "t", Kind: model.KindTask, Name: "Work"},
			model.Node{ID: "e", Kind: model.KindEndEvent, Name: "Done"},
		),
		Edges: []model.Edge{
			{Source: "s", Target: "t"},
			{Source: "t", Target: "e"},
		},
	}

	report := Model(m)

	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateInDegreeFallback(t *testing.T) {
	// No start-kind node anywhere: reachability falls back to nodes
	// without incoming directed edges.
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "a", Kind: model.KindTask, Name: "A"},
			model.Node{ID: "b", Kind: model.KindTask, Name: "B"},
			model.Node{ID: "c", Kind: "end-state", Name: "C"},
		),
		Edges: []model.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}

	report := Model(m)

	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateCyclicFallback(t *testing.T) {
	// Fully cyclic graph: no start kind, no in-degree-zero node. The
	// smallest id seeds the walk and the loop itself is never a finding.
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "a", Kind: model.KindTask, Name: "A"},
			model.Node{ID: "b", Kind: model.KindTask, Name: "B"},
		),
		Edges: []model.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}

	report := Model(m)

	assert.True(t, report.Valid())
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateUndirectedTraversal(t *testing.T) {
	// leaf hangs off hub by an association stored leaf->hub; the walk must
	// cross it against storage direction.
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "hub", Kind: model.KindTask, Name: "Hub"},
			model.Node{ID: "leaf", Kind: model.KindTask, Name: "Leaf"},
		),
		Edges: []model.Edge{
			{Source: "start", Target: "hub"},
			{Source: "leaf", Target: "hub", Undirected: true},
		},
	}

	report := Model(m)

	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateAssociationOnlyModel(t *testing.T) {
	// Architecture-style model: components joined purely by associations.
	// Undirected edges add no in-degree, so every component seeds the walk,
	// and an incident association satisfies the dangling check.
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "crm", Kind: "application-component", Name: "CRM"},
			model.Node{ID: "billing", Kind: "application-component", Name: "Billing"},
			model.Node{ID: "db", Kind: "technology-node", Name: "Database"},
		),
		Edges: []model.Edge{
			{Source: "crm", Target: "billing", Undirected: true},
			{Source: "billing", Target: "db", Undirected: true},
		},
	}

	report := Model(m)

	assert.True(t, report.Valid())
	assert.Empty(t, report.Warnings)
}

// =============================================================================
// Dangling Node Tests
// =============================================================================

func TestValidateDanglingNonTerminal(t *testing.T) {
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "task1", Kind: model.KindTask, Name: "Stops here"},
		),
		Edges: []model.Edge{{Source: "start", Target: "task1"}},
	}

	report := Model(m)

	assert.True(t, report.Valid())
	require.Equal(t, []string{"node task1: no outgoing edges and not a terminal node"}, report.WarningMessages())
	assert.Equal(t, WarnDangling, report.Warnings[0].Code)
}

func TestValidateTerminalKindsNotDangling(t *testing.T) {
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "e1", Kind: model.KindEndEvent, Name: "Done"},
			model.Node{ID: "e2", Kind: "end-state", Name: "Archived"},
		),
		Edges: []model.Edge{
			{Source: "start", Target: "e1"},
			{Source: "start", Target: "e2"},
		},
	}

	report := Model(m)

	assert.Empty(t, report.Warnings)
}

// =============================================================================
// Duplicate Edge Tests
// =============================================================================

func TestValidateDuplicateEdges(t *testing.T) {
	m := linearProcess()
	m.Edges = append(m.Edges,
		model.Edge{Source: "start", Target: "task1"},
		model.Edge{Source: "start", Target: "task1"},
	)

	report := Model(m)

	assert.True(t, report.Valid(), "duplicates are a warning, not an error")
	require.Equal(t, []string{
		"edge start->task1: duplicate edge",
		"edge start->task1: duplicate edge",
	}, report.WarningMessages())
	assert.Equal(t, WarnDuplicateEdge, report.Warnings[0].Code)
}

func TestValidateGuardedEdgesNotDuplicates(t *testing.T) {
	// Two flows between the same pair with different guards are alternate
	// paths, not copies.
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "gate", Kind: model.KindGatewayExclusive, Name: "Approved?"},
			model.Node{ID: "ship", Kind: model.KindTask, Name: "Ship"},
			model.Node{ID: "end", Kind: model.KindEndEvent, Name: "End"},
		),
		Edges: []model.Edge{
			{Source: "start", Target: "gate"},
			{Source: "gate", Target: "ship", Guard: "approved"},
			{Source: "gate", Target: "ship", Guard: "escalated"},
			{Source: "ship", Target: "end"},
		},
	}

	report := Model(m)

	assert.Empty(t, report.Warnings)
}

// =============================================================================
// View Integrity Tests
// =============================================================================

func TestValidateViewReferences(t *testing.T) {
	m := linearProcess()
	m.Views = map[string]model.View{
		"v2": {ID: "v2", Name: "Ops view", Nodes: []string{"ghost2"}},
		"v1": {ID: "v1", Name: "Flow view", Nodes: []string{"task1", "ghost1"}},
	}

	report := Model(m)

	assert.True(t, report.Valid())
	require.Equal(t, []string{
		"view v1: node ghost1 not found",
		"view v2: node ghost2 not found",
	}, report.WarningMessages())
	assert.Equal(t, WarnViewUnknownNode, report.Warnings[0].Code)
}

// =============================================================================
// Profile Tests
// =============================================================================

func TestStrictProfilePromotion(t *testing.T) {
	m := &model.Model{
		Nodes: nodeMap(
			model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"},
			model.Node{ID: "task1", Kind: model.KindTask, Name: "Stops here"},
			model.Node{ID: "island", Kind: model.KindTask, Name: "Orphan"},
		),
		Edges: []model.Edge{
			{Source: "start", Target: "task1"},
			{Source: "start", Target: "task1"},
			{Source: "island", Target: "task1"},
		},
	}

	standard := Model(m)
	assert.True(t, standard.Valid())
	require.Equal(t, []string{
		"node island: not reachable from any start node",
		"node task1: no outgoing edges and not a terminal node",
		"edge start->task1: duplicate edge",
	}, standard.WarningMessages())

	strict := ModelWithProfile(m, StrictProfile())
	assert.False(t, strict.Valid())
	require.Equal(t, []string{
		"node task1: no outgoing edges and not a terminal node",
		"edge start->task1: duplicate edge",
	}, strict.ErrorMessages())
	require.Equal(t, []string{
		"node island: not reachable from any start node",
	}, strict.WarningMessages())
}

// =============================================================================
// Purity Tests
// =============================================================================

func TestValidateDoesNotMutate(t *testing.T) {
	m := linearProcess()
	m.Edges = append(m.Edges, model.Edge{Source: "task1", Target: "ghost"})
	m.Views = map[string]model.View{
		"v1": {ID: "v1", Nodes: []string{"ghost"}},
	}
	before := model.MustHash(m)

	_ = Model(m)

	assert.Equal(t, before, model.MustHash(m))
}

func TestValidateDeterministic(t *testing.T) {
	m := linearProcess()
	m.Nodes["island"] = model.Node{ID: "island", Kind: model.KindTask, Name: "Orphan"}
	m.Views = map[string]model.View{
		"v1": {ID: "v1", Nodes: []string{"ghost1"}},
		"v2": {ID: "v2", Nodes: []string{"ghost2"}},
	}

	first := Model(m)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Model(m))
	}
}
