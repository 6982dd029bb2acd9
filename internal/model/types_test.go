package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeLookup(t *testing.T) {
	m := New()
	m.Nodes["task1"] = Node{ID: "task1", Kind: KindTask, Name: "Review"}

	n, ok := m.Node("task1")
	require.True(t, ok)
	assert.Equal(t, "Review", n.Name)

	_, ok = m.Node("ghost")
	assert.False(t, ok, "absence is a valid state, not an error")
}

func TestNodeIDsSorted(t *testing.T) {
	m := New()
	for _, id := range []string{"zebra", "alpha", "mid"} {
		m.Nodes[id] = Node{ID: id, Kind: KindTask, Name: id}
	}

	assert.Equal(t, []string{"alpha", "mid", "zebra"}, m.NodeIDs())
}

func TestCloneIsDeep(t *testing.T) {
	m := New()
	m.Nodes["a"] = Node{ID: "a", Kind: KindTask, Name: "A", Extensions: map[string]string{"x": "1"}}
	m.Edges = append(m.Edges, Edge{Source: "a", Target: "b"})
	m.Resources["pool"] = ResourcePool{Name: "pool", Capacity: 2, Skills: []string{"review"}}
	m.Metadata["owner"] = "ops"
	m.Views["v1"] = View{ID: "v1", Nodes: []string{"a"}}
	m.Mappings["a"] = []string{"ext1"}

	c := m.Clone()

	// Mutating the clone must not touch the original.
	c.Nodes["b"] = Node{ID: "b", Kind: KindTask, Name: "B"}
	c.Edges = append(c.Edges, Edge{Source: "b", Target: "a"})
	c.Metadata["owner"] = "someone-else"
	cn := c.Nodes["a"]
	cn.Extensions["x"] = "2"
	cp := c.Resources["pool"]
	cp.Skills[0] = "approve"
	cv := c.Views["v1"]
	cv.Nodes[0] = "z"
	c.Mappings["a"][0] = "other"

	assert.Len(t, m.Nodes, 1)
	assert.Len(t, m.Edges, 1)
	assert.Equal(t, "ops", m.Metadata["owner"])
	assert.Equal(t, "1", m.Nodes["a"].Extensions["x"])
	assert.Equal(t, []string{"review"}, m.Resources["pool"].Skills)
	assert.Equal(t, []string{"a"}, m.Views["v1"].Nodes)
	assert.Equal(t, []string{"ext1"}, m.Mappings["a"])
}

func TestCloneEqualContent(t *testing.T) {
	m := New()
	m.Nodes["a"] = Node{ID: "a", Kind: KindStartEvent, Name: "Start"}
	m.Edges = append(m.Edges, Edge{Source: "a", Target: "a", Guard: "loop"})
	m.Representations["flow+yaml"] = "process: p"

	c := m.Clone()
	assert.Equal(t, MustHash(m), MustHash(c), "clone must be content-identical")
}

func TestKindConventions(t *testing.T) {
	tests := []struct {
		kind     string
		start    bool
		terminal bool
	}{
		{KindStartEvent, true, false},
		{"startEvent", true, false},
		{"start-timer-event", true, false},
		{KindEndEvent, false, true},
		{"endEvent", false, true},
		{KindTask, false, false},
		{KindGatewayExclusive, false, false},
		{KindDecision, false, false},
		{"BusinessProcess", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.start, IsStartKind(tt.kind))
			assert.Equal(t, tt.terminal, IsTerminalKind(tt.kind))
		})
	}
}
