package testutil

import "github.com/roach88/pir/internal/model"

// OrderProcess returns a minimal valid process: start -> task1 -> end.
//
// The graph validates clean (no errors, no warnings) and is the shared
// happy-path baseline across package tests. Every call builds a fresh
// model; callers may mutate the result freely.
func OrderProcess() *model.Model {
	m := model.New()
	m.Nodes["start"] = model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Order received"}
	m.Nodes["task1"] = model.Node{ID: "task1", Kind: model.KindTask, Name: "Process order"}
	m.Nodes["end"] = model.Node{ID: "end", Kind: model.KindEndEvent, Name: "Order shipped"}
	m.Edges = []model.Edge{
		{Source: "start", Target: "task1"},
		{Source: "task1", Target: "end"},
	}
	m.Metadata["process_name"] = "order-fulfillment"
	return m
}

// BrokenEdge returns OrderProcess with the task1 -> end edge replaced by
// an edge to an undefined node.
//
// Validation yields exactly one error, "edge task1->ghost: target not
// found", plus an unreachable warning for end.
func BrokenEdge() *model.Model {
	m := OrderProcess()
	m.Edges = []model.Edge{
		{Source: "start", Target: "task1"},
		{Source: "task1", Target: "ghost"},
	}
	return m
}

// CycleWithEntry returns a process whose middle tasks form a rework loop
// reachable from the start node:
//
//	start -> review <-> revise, review -> end
//
// The graph validates clean; cycle analysis reports the single loop and
// topological ordering is impossible.
func CycleWithEntry() *model.Model {
	m := model.New()
	m.Nodes["start"] = model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Submitted"}
	m.Nodes["review"] = model.Node{ID: "review", Kind: model.KindTask, Name: "Review document"}
	m.Nodes["revise"] = model.Node{ID: "revise", Kind: model.KindTask, Name: "Revise document"}
	m.Nodes["end"] = model.Node{ID: "end", Kind: model.KindEndEvent, Name: "Approved"}
	m.Edges = []model.Edge{
		{Source: "start", Target: "review"},
		{Source: "review", Target: "revise", Guard: "changes_requested"},
		{Source: "revise", Target: "review"},
		{Source: "review", Target: "end", Guard: "approved"},
	}
	m.Metadata["process_name"] = "document-approval"
	return m
}

// Disconnected returns a process with an island component no start node
// reaches: start -> work -> end, plus island -> end.
//
// Validation yields no errors and exactly one warning, the island's
// unreachability. The island keeps an outgoing edge so the dangling rule
// stays quiet.
func Disconnected() *model.Model {
	m := model.New()
	m.Nodes["start"] = model.Node{ID: "start", Kind: model.KindStartEvent, Name: "Start"}
	m.Nodes["work"] = model.Node{ID: "work", Kind: model.KindTask, Name: "Main work"}
	m.Nodes["end"] = model.Node{ID: "end", Kind: model.KindEndEvent, Name: "Done"}
	m.Nodes["island"] = model.Node{ID: "island", Kind: model.KindTask, Name: "Orphaned step"}
	m.Edges = []model.Edge{
		{Source: "start", Target: "work"},
		{Source: "work", Target: "end"},
		{Source: "island", Target: "end"},
	}
	m.Metadata["process_name"] = "disconnected-demo"
	return m
}
