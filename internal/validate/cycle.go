package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pir/internal/model"
)

// CycleNote describes one directed cycle in the flow graph.
//
// Cycles are notes, not findings, because loops are legal process shapes:
// rework paths, retry loops, approval ping-pong. Consumers that need a
// DAG use TopologicalOrder instead.
type CycleNote struct {
	Path    []string `json:"path"` // cycle sequence, first id repeated last
	Message string   `json:"message"`
}

// AnalyzeCycles detects strongly connected components in the directed
// flow graph using Tarjan's algorithm. Undirected edges are ignored;
// associations are not control flow. A DAG yields no notes.
func AnalyzeCycles(m *model.Model) []CycleNote {
	if len(m.Edges) == 0 {
		return nil
	}

	adj := directedNeighbors(m)
	sccs := tarjanSCC(m.NodeIDs(), adj)

	var notes []CycleNote
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], adj) {
			notes = append(notes, cycleNote(scc, adj))
		}
	}
	return notes
}

// TopologicalOrder returns node ids in dependency order over the directed
// flow graph, ties broken by smallest id. Undirected edges do not
// constrain the order. Returns nil and false when the graph has a
// directed cycle.
func TopologicalOrder(m *model.Model) ([]string, bool) {
	ids := m.NodeIDs()
	adj := directedNeighbors(m)

	inDegree := make(map[string]int, len(ids))
	for _, targets := range adj {
		for _, t := range targets {
			inDegree[t]++
		}
	}

	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		freed := false
		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
				freed = true
			}
		}
		if freed {
			slices.Sort(ready)
		}
	}

	if len(order) != len(ids) {
		return nil, false
	}
	return order, true
}

// directedNeighbors is the control-flow adjacency: directed edges only,
// endpoints restricted to known nodes.
func directedNeighbors(m *model.Model) map[string][]string {
	adj := make(map[string][]string, len(m.Nodes))
	for _, e := range m.Edges {
		if e.Undirected {
			continue
		}
		if _, ok := m.Nodes[e.Source]; !ok {
			continue
		}
		if _, ok := m.Nodes[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

func hasSelfLoop(id string, adj map[string][]string) bool {
	return slices.Contains(adj[id], id)
}

// tarjanSCC finds strongly connected components. Roots are visited in
// sorted order so repeated runs produce the same component sequence.
// Single-node components without self-loops are not cycles.
func tarjanSCC(ids []string, adj map[string][]string) [][]string {
	var (
		index   int
		stack   []string
		indices = make(map[string]int, len(ids))
		lowlink = make(map[string]int, len(ids))
		onStack = make(map[string]bool, len(ids))
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v roots a component: pop the stack down to v
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, id := range ids {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}
	return sccs
}

// cycleNote renders a component as a walkable path. Multi-node components
// start at their smallest member so output is stable.
func cycleNote(scc []string, adj map[string][]string) CycleNote {
	if len(scc) == 1 {
		id := scc[0]
		return CycleNote{
			Path:    []string{id, id},
			Message: fmt.Sprintf("cycle: %s -> %s", id, id),
		}
	}

	path := cyclePath(scc, adj)
	return CycleNote{
		Path:    path,
		Message: fmt.Sprintf("cycle: %s", strings.Join(path, " -> ")),
	}
}

// cyclePath walks edges inside the component from its smallest member
// until the walk returns to the start.
func cyclePath(scc []string, adj map[string][]string) []string {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := slices.Min(scc)
	path := []string{start}
	visited := make(map[string]bool, len(scc))
	current := start
	for {
		visited[current] = true
		next := ""
		for _, neighbor := range adj[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
