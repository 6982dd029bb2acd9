package flowcue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/notation"
	"github.com/roach88/pir/internal/validate"
)

const orderCUE = `process: "order-fulfillment"

metadata: {
	owner: "ops"
}

nodes: {
	start:  {kind: "start-event", name: "Start"}
	review: {kind: "task", name: "Review order", lane: "back-office"}
	ship:   {kind: "task", policy_ref: "policy/shipping"}
	done:   {kind: "end-event"}
}

edges: [
	{from: "start", to: "review"},
	{from: "review", to: "ship", guard: "approved == true"},
	{from: "review", to: "done", guard: "approved == false", label: "rejected"},
	{from: "ship", to: "done"},
]

resources: {
	clerks: {capacity: 3, skills: ["review"], cost_per_hour: 42.5}
}

views: {
	main: {name: "Main flow", viewpoint: "control-flow", nodes: ["start", "review", "ship", "done"]}
}

mappings: {
	review: ["bpmn:Task_Review"]
}
`

// =============================================================================
// Parse Tests
// =============================================================================

func TestParseDocument(t *testing.T) {
	m, err := New().Parse([]byte(orderCUE))
	require.NoError(t, err)

	report := validate.Model(m)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)

	require.Len(t, m.Nodes, 4)
	assert.Equal(t, model.KindStartEvent, m.Nodes["start"].Kind)
	assert.Equal(t, "Review order", m.Nodes["review"].Name)
	assert.Equal(t, "back-office", m.Nodes["review"].Lane)
	assert.Equal(t, "policy/shipping", m.Nodes["ship"].PolicyRef)

	require.Len(t, m.Edges, 4)
	assert.Equal(t, "approved == true", m.Edges[1].Guard)
	assert.Equal(t, "rejected", m.Edges[2].Label)

	pool, ok := m.Resources["clerks"]
	require.True(t, ok)
	assert.Equal(t, "clerks", pool.Name)
	assert.Equal(t, 3, pool.Capacity)
	assert.Equal(t, []string{"review"}, pool.Skills)
	assert.Equal(t, 42.5, pool.CostPerHour)

	assert.Equal(t, "flowcue", m.Metadata["notation"])
	assert.Equal(t, "order-fulfillment", m.Metadata["process_name"])
	assert.Equal(t, "ops", m.Metadata["owner"])

	view, ok := m.Views["main"]
	require.True(t, ok)
	assert.Equal(t, "control-flow", view.Viewpoint)
	assert.Equal(t, []string{"start", "review", "ship", "done"}, view.Nodes)

	assert.Equal(t, []string{"bpmn:Task_Review"}, m.Mappings["review"])
	assert.Equal(t, orderCUE, m.Representations[MediaType])
}

func TestParseUndirectedEdge(t *testing.T) {
	src := `
nodes: {
	crm: {kind: "task"}
	erp: {kind: "task"}
}
edges: [
	{from: "crm", to: "erp", undirected: true},
]
`
	m, err := New().Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, m.Edges, 1)
	assert.True(t, m.Edges[0].Undirected)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := New().Parse([]byte("nodes: {\n\tstart: {kind: \"start-event\"\n"))
	require.Error(t, err)

	var pe *notation.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "flowcue", pe.Notation)
	assert.Equal(t, "invalid CUE", pe.Message)
	assert.Greater(t, pe.Line, 0)
}

func TestParseConflictingValues(t *testing.T) {
	src := `
process: "a"
process: "b"
`
	_, err := New().Parse([]byte(src))
	require.Error(t, err)
	assert.True(t, notation.IsParseError(err))
}

func TestParseTypeMismatch(t *testing.T) {
	src := `
nodes: {a: {kind: "task"}}
resources: {
	clerks: {capacity: "three"}
}
`
	_, err := New().Parse([]byte(src))
	require.Error(t, err)

	var pe *notation.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "invalid CUE", pe.Message)
}

func TestParseUnknownFieldRejected(t *testing.T) {
	src := `
nodes: {a: {kind: "task"}}
egdes: [{from: "a", to: "a"}]
`
	_, err := New().Parse([]byte(src))
	require.Error(t, err)

	var pe *notation.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "invalid document", pe.Message)
	assert.Contains(t, pe.Detail, `unknown field "egdes"`)
}

func TestParseBlankNodeID(t *testing.T) {
	src := `nodes: {"": {kind: "task"}}`
	_, err := New().Parse([]byte(src))
	require.Error(t, err)

	var pe *notation.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "invalid document", pe.Message)
	assert.Contains(t, pe.Detail, "add_node")
}

func TestParseEmptyDocument(t *testing.T) {
	_, err := New().Parse([]byte("  \n\t"))
	require.Error(t, err)

	var pe *notation.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "empty document", pe.Message)
}

// =============================================================================
// Detector Tests
// =============================================================================

func TestDetectorHooks(t *testing.T) {
	a := New()
	assert.True(t, a.MatchesExtension(".cue"))
	assert.False(t, a.MatchesExtension(".yaml"))

	assert.True(t, a.Sniff([]byte("package flow\n\nnodes: {}\n")))
	assert.True(t, a.Sniff([]byte(orderCUE)))
	assert.False(t, a.Sniff([]byte("nodes:\n  - id: a\n    kind: task\n")))
	assert.False(t, a.Sniff([]byte("<definitions/>")))
}
