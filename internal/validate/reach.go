package validate

import (
	"fmt"
	"slices"

	"github.com/roach88/pir/internal/model"
)

// startNodes resolves the entry points reachability is computed from.
//
// Preference order:
//  1. every node with a start kind
//  2. nodes with directed in-degree zero (diagram without explicit starts)
//  3. the lexicographically smallest node id (fully cyclic graph)
//
// Undirected edges never contribute in-degree: a node tied to the graph
// only by associations is still a candidate entry point.
func startNodes(m *model.Model) []string {
	var starts []string
	for id, n := range m.Nodes {
		if model.IsStartKind(n.Kind) {
			starts = append(starts, id)
		}
	}
	if len(starts) > 0 {
		slices.Sort(starts)
		return starts
	}

	inDegree := make(map[string]int, len(m.Nodes))
	for _, e := range m.Edges {
		if e.Undirected {
			continue
		}
		if _, ok := m.Nodes[e.Target]; ok {
			inDegree[e.Target]++
		}
	}
	for id := range m.Nodes {
		if inDegree[id] == 0 {
			starts = append(starts, id)
		}
	}
	if len(starts) > 0 {
		slices.Sort(starts)
		return starts
	}

	if ids := m.NodeIDs(); len(ids) > 0 {
		return ids[:1]
	}
	return nil
}

// flowNeighbors builds the traversal adjacency: directed edges forward,
// undirected edges both ways. Endpoints outside the node map are dropped;
// those are referential errors, not part of the graph.
func flowNeighbors(m *model.Model) map[string][]string {
	adj := make(map[string][]string, len(m.Nodes))
	add := func(from, to string) {
		if _, ok := m.Nodes[from]; !ok {
			return
		}
		if _, ok := m.Nodes[to]; !ok {
			return
		}
		adj[from] = append(adj[from], to)
	}
	for _, e := range m.Edges {
		add(e.Source, e.Target)
		if e.Undirected {
			add(e.Target, e.Source)
		}
	}
	return adj
}

// unreachableFindings runs a BFS over the flow adjacency from the start
// set and reports every node left unvisited, in sorted id order.
func unreachableFindings(m *model.Model) []Finding {
	if len(m.Nodes) == 0 {
		return nil
	}

	adj := flowNeighbors(m)
	visited := make(map[string]bool, len(m.Nodes))
	queue := startNodes(m)
	for _, id := range queue {
		visited[id] = true
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var findings []Finding
	for _, id := range m.NodeIDs() {
		if !visited[id] {
			findings = append(findings, Finding{
				Code:    WarnUnreachable,
				Message: fmt.Sprintf("node %s: not reachable from any start node", id),
			})
		}
	}
	return findings
}

// danglingFindings reports non-terminal nodes the flow stops at: no
// outgoing directed edge and no incident undirected edge, in sorted id
// order. An association satisfies the check because structural relations
// have no flow direction to continue.
func danglingFindings(m *model.Model) []Finding {
	hasOutgoing := make(map[string]bool, len(m.Nodes))
	for _, e := range m.Edges {
		hasOutgoing[e.Source] = true
		if e.Undirected {
			hasOutgoing[e.Target] = true
		}
	}

	var findings []Finding
	for _, id := range m.NodeIDs() {
		if hasOutgoing[id] || model.IsTerminalKind(m.Nodes[id].Kind) {
			continue
		}
		findings = append(findings, Finding{
			Code:    WarnDangling,
			Message: fmt.Sprintf("node %s: no outgoing edges and not a terminal node", id),
		})
	}
	return findings
}
