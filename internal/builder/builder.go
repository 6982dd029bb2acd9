// Package builder provides incremental construction of process models.
//
// The builder is deliberately permissive: re-adding a node id overwrites
// the previous definition (last write wins) and edges are appended without
// any existence check, because iterative, adapter- or AI-driven editing
// legitimately redefines nodes and emits edges before their endpoints.
// Structural problems are the validator's job; the builder fails fast only
// on malformed primitive input (empty ids, empty keys) with an InputError.
//
// A Builder owns its graph. There is no shared default instance; callers
// needing several graphs create several builders. Builders are not safe
// for concurrent use.
package builder

import (
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/pir/internal/model"
)

var validate = validator.New()

// NodeSpec carries the inputs for a single add_node operation.
type NodeSpec struct {
	ID         string `validate:"required"`
	Kind       string `validate:"required"`
	Name       string
	Lane       string
	PolicyRef  string
	Extensions map[string]string
}

// EdgeSpec carries the inputs for a single add_edge operation.
type EdgeSpec struct {
	Source     string `validate:"required"`
	Target     string `validate:"required"`
	Guard      string
	Label      string
	Undirected bool
}

// ViewSpec carries the inputs for a set_view operation.
type ViewSpec struct {
	ID        string `validate:"required"`
	Name      string
	Viewpoint string
	Nodes     []string
	Edges     []string
	Props     map[string]string
}

// Builder incrementally constructs a model.Model.
type Builder struct {
	m           *model.Model
	strictNodes bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithStrictNodes rejects duplicate node ids with an InputError instead of
// the default last-write-wins overwrite.
func WithStrictNodes() Option {
	return func(b *Builder) { b.strictNodes = true }
}

// WithModel resumes construction on an existing model. The builder mutates
// the given model in place; callers wanting isolation should pass a clone.
func WithModel(m *model.Model) Option {
	return func(b *Builder) { b.m = m }
}

// New returns a builder over a fresh empty model.
func New(opts ...Option) *Builder {
	b := &Builder{m: model.New()}
	for _, opt := range opts {
		opt(b)
	}
	ensureCollections(b.m)
	return b
}

// ensureCollections initializes nil maps on models supplied via WithModel,
// e.g. ones decoded from JSON where empty collections are omitted.
func ensureCollections(m *model.Model) {
	if m.Nodes == nil {
		m.Nodes = make(map[string]model.Node)
	}
	if m.Resources == nil {
		m.Resources = make(map[string]model.ResourcePool)
	}
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	if m.Representations == nil {
		m.Representations = make(map[string]string)
	}
	if m.Views == nil {
		m.Views = make(map[string]model.View)
	}
	if m.Mappings == nil {
		m.Mappings = make(map[string][]string)
	}
}

// AddNode registers the node at spec.ID, overwriting any previous
// definition unless strict mode is active. Empty id or kind aborts the
// operation with an InputError; prior graph state is untouched.
func (b *Builder) AddNode(spec NodeSpec) error {
	if err := validate.Struct(spec); err != nil {
		return inputErrorFromStruct("add_node", err)
	}
	if b.strictNodes {
		if _, exists := b.m.Nodes[spec.ID]; exists {
			return newInputError("add_node", "id", ErrDuplicateNode,
				fmt.Sprintf("node %q already exists", spec.ID))
		}
	}
	b.m.Nodes[spec.ID] = model.Node{
		ID:         spec.ID,
		Kind:       spec.Kind,
		Name:       spec.Name,
		Lane:       spec.Lane,
		PolicyRef:  spec.PolicyRef,
		Extensions: maps.Clone(spec.Extensions),
	}
	return nil
}

// AddEdge appends an edge to the ordered sequence unconditionally. No
// existence check happens here: edges may legally precede their endpoints.
func (b *Builder) AddEdge(spec EdgeSpec) error {
	if err := validate.Struct(spec); err != nil {
		return inputErrorFromStruct("add_edge", err)
	}
	b.m.Edges = append(b.m.Edges, model.Edge{
		Source:     spec.Source,
		Target:     spec.Target,
		Guard:      spec.Guard,
		Label:      spec.Label,
		Undirected: spec.Undirected,
	})
	return nil
}

// SetResourcePool upserts a resource pool configuration by id.
func (b *Builder) SetResourcePool(id string, pool model.ResourcePool) error {
	if id == "" {
		return newInputError("set_resource_pool", "id", ErrMissingPoolID,
			"resource pool id is required")
	}
	pool.Skills = append([]string(nil), pool.Skills...)
	pool.Schedule = maps.Clone(pool.Schedule)
	b.m.Resources[id] = pool
	return nil
}

// SetMetadata upserts a process-level metadata entry.
func (b *Builder) SetMetadata(key, value string) error {
	if key == "" {
		return newInputError("set_metadata", "key", ErrMissingMetadataKey,
			"metadata key is required")
	}
	b.m.Metadata[key] = value
	return nil
}

// AttachRepresentation stores the original source text for a notation,
// keyed by a MIME-like format identifier such as "bpmn+xml".
func (b *Builder) AttachRepresentation(format, data string) error {
	if format == "" {
		return newInputError("attach_representation", "format", ErrMissingFormat,
			"representation format is required")
	}
	b.m.Representations[format] = data
	return nil
}

// SetView upserts a diagram view by id.
func (b *Builder) SetView(spec ViewSpec) error {
	if err := validate.Struct(spec); err != nil {
		return inputErrorFromStruct("set_view", err)
	}
	b.m.Views[spec.ID] = model.View{
		ID:        spec.ID,
		Name:      spec.Name,
		Viewpoint: spec.Viewpoint,
		Nodes:     append([]string(nil), spec.Nodes...),
		Edges:     append([]string(nil), spec.Edges...),
		Props:     maps.Clone(spec.Props),
	}
	return nil
}

// AddMapping appends cross-notation references for a node id.
func (b *Builder) AddMapping(nodeID string, refs ...string) error {
	if nodeID == "" {
		return newInputError("add_mapping", "node_id", ErrMissingMappingNode,
			"mapping node id is required")
	}
	b.m.Mappings[nodeID] = append(b.m.Mappings[nodeID], refs...)
	return nil
}

// Build returns a snapshot of the accumulated model. The builder remains
// usable afterward; the snapshot and further builder state diverge.
func (b *Builder) Build() *model.Model {
	return b.m.Clone()
}
