package model

import "slices"

// Node represents a typed graph vertex: an activity, event, gateway,
// decision, or any notation-specific element.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // open tag, see kinds.go for conventions
	Name string `json:"name"`

	// Lane is an optional grouping key for swimlanes/pools.
	Lane string `json:"lane,omitempty"`

	// PolicyRef optionally references an external decision/policy id.
	// Meaningful for gateways bound to DMN decisions. Never dereferenced here.
	PolicyRef string `json:"policy_ref,omitempty"`

	// Extensions holds notation-specific properties that do not fit the
	// canonical fields, preserved verbatim for round-tripping.
	Extensions map[string]string `json:"extensions,omitempty"`
}

// Edge represents a connection between two nodes, identified by node id.
// Endpoints are not required to exist at insertion time; referential
// integrity is the validator's job.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`

	// Guard is an opaque boolean expression string evaluated by a consumer
	// at runtime, never interpreted here.
	Guard string `json:"guard,omitempty"`

	Label string `json:"label,omitempty"`

	// Undirected marks structural relations (ArchiMate associations) that
	// carry no flow direction. Default false = directed sequence flow.
	Undirected bool `json:"undirected,omitempty"`
}

// ResourcePool describes a pool of resources with capacity and skills.
// Opaque to this package - consumed only by simulation collaborators.
type ResourcePool struct {
	Name        string            `json:"name"`
	Capacity    int               `json:"capacity"`
	Skills      []string          `json:"skills,omitempty"`
	CostPerHour float64           `json:"cost_per_hour,omitempty"`
	Schedule    map[string]string `json:"schedule,omitempty"` // shift rules, uninterpreted
}

// View is a diagram-specific selection of nodes and edges
// (e.g. an ArchiMate viewpoint).
type View struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	Viewpoint string            `json:"viewpoint,omitempty"`
	Nodes     []string          `json:"nodes,omitempty"`
	Edges     []string          `json:"edges,omitempty"`
	Props     map[string]string `json:"props,omitempty"`
}

// Model is the whole-graph entity: the canonical, notation-agnostic
// process intermediate representation.
//
// Nodes is keyed by node id; the key must equal Node.ID (checked by the
// validator, rule V102). Edges preserves insertion order and permits exact
// duplicates - multiple edges between the same pair are legal, e.g.
// alternate guarded paths.
type Model struct {
	Nodes map[string]Node `json:"nodes"`
	Edges []Edge          `json:"edges"`

	// Resources maps pool id to resource configuration.
	Resources map[string]ResourcePool `json:"resources,omitempty"`

	// Metadata holds process-level key-value strings: process name,
	// notation type, source format version.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Representations maps MIME-like format identifiers ("bpmn+xml",
	// "flow+yaml") to the original source text for that notation.
	Representations map[string]string `json:"representations,omitempty"`

	Views map[string]View `json:"views,omitempty"`

	// Mappings records cross-notation traceability: node id to the ids of
	// corresponding elements in other models.
	Mappings map[string][]string `json:"mappings,omitempty"`
}

// New returns an empty model with all collections initialized.
func New() *Model {
	return &Model{
		Nodes:           make(map[string]Node),
		Resources:       make(map[string]ResourcePool),
		Metadata:        make(map[string]string),
		Representations: make(map[string]string),
		Views:           make(map[string]View),
		Mappings:        make(map[string][]string),
	}
}

// Node returns the node registered under id. Absence is a valid graph
// state pending validation, so the second return is false rather than an
// error when the id is unknown.
func (m *Model) Node(id string) (Node, bool) {
	n, ok := m.Nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in sorted order.
func (m *Model) NodeIDs() []string {
	ids := make([]string, 0, len(m.Nodes))
	for id := range m.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (m *Model) Clone() *Model {
	c := &Model{
		Nodes:           make(map[string]Node, len(m.Nodes)),
		Edges:           slices.Clone(m.Edges),
		Resources:       make(map[string]ResourcePool, len(m.Resources)),
		Metadata:        cloneStringMap(m.Metadata),
		Representations: cloneStringMap(m.Representations),
		Views:           make(map[string]View, len(m.Views)),
		Mappings:        make(map[string][]string, len(m.Mappings)),
	}
	for id, n := range m.Nodes {
		n.Extensions = cloneStringMap(n.Extensions)
		c.Nodes[id] = n
	}
	for id, p := range m.Resources {
		p.Skills = slices.Clone(p.Skills)
		p.Schedule = cloneStringMap(p.Schedule)
		c.Resources[id] = p
	}
	for id, v := range m.Views {
		v.Nodes = slices.Clone(v.Nodes)
		v.Edges = slices.Clone(v.Edges)
		v.Props = cloneStringMap(v.Props)
		c.Views[id] = v
	}
	for id, refs := range m.Mappings {
		c.Mappings[id] = slices.Clone(refs)
	}
	return c
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
