// Package flowyaml implements the flow YAML notation: a plain declarative
// format for hand-written process files.
//
// Decoding is strict (unknown fields are rejected, catching typos like
// "egdes:"), but the graph itself is taken as written - missing endpoints
// and unreachable nodes are validator territory.
package flowyaml

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pir/internal/builder"
	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/notation"
)

// MediaType is the representation key for flow YAML sources.
const MediaType = "flow+yaml"

// document is the top-level YAML shape.
type document struct {
	Process   string               `yaml:"process,omitempty"`
	Metadata  map[string]string    `yaml:"metadata,omitempty"`
	Nodes     []nodeEntry          `yaml:"nodes"`
	Edges     []edgeEntry          `yaml:"edges,omitempty"`
	Resources map[string]poolEntry `yaml:"resources,omitempty"`
	Views     []viewEntry          `yaml:"views,omitempty"`
	Mappings  map[string][]string  `yaml:"mappings,omitempty"`
}

type nodeEntry struct {
	ID         string            `yaml:"id"`
	Kind       string            `yaml:"kind"`
	Name       string            `yaml:"name,omitempty"`
	Lane       string            `yaml:"lane,omitempty"`
	PolicyRef  string            `yaml:"policy_ref,omitempty"`
	Extensions map[string]string `yaml:"extensions,omitempty"`
}

type edgeEntry struct {
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	Guard      string `yaml:"guard,omitempty"`
	Label      string `yaml:"label,omitempty"`
	Undirected bool   `yaml:"undirected,omitempty"`
}

type poolEntry struct {
	Name        string            `yaml:"name,omitempty"`
	Capacity    int               `yaml:"capacity"`
	Skills      []string          `yaml:"skills,omitempty"`
	CostPerHour float64           `yaml:"cost_per_hour,omitempty"`
	Schedule    map[string]string `yaml:"schedule,omitempty"`
}

type viewEntry struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name,omitempty"`
	Viewpoint string            `yaml:"viewpoint,omitempty"`
	Nodes     []string          `yaml:"nodes,omitempty"`
	Edges     []string          `yaml:"edges,omitempty"`
	Props     map[string]string `yaml:"props,omitempty"`
}

// Adapter implements notation.Adapter and notation.Renderer for flow YAML.
type Adapter struct{}

var (
	_ notation.Adapter  = (*Adapter)(nil)
	_ notation.Renderer = (*Adapter)(nil)
	_ notation.Detector = (*Adapter)(nil)
)

// New returns the flow YAML adapter.
func New() *Adapter { return &Adapter{} }

// Name implements notation.Adapter.
func (a *Adapter) Name() string { return "flowyaml" }

// MediaType implements notation.Adapter.
func (a *Adapter) MediaType() string { return MediaType }

// MatchesExtension implements notation.Detector.
func (a *Adapter) MatchesExtension(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// Sniff implements notation.Detector: a top-level process or nodes key.
func (a *Adapter) Sniff(src []byte) bool {
	for _, line := range strings.Split(string(src), "\n") {
		if strings.HasPrefix(line, "process:") || strings.HasPrefix(line, "nodes:") {
			return true
		}
	}
	return false
}

// Parse decodes a flow YAML document and builds the model through the
// builder, so malformed primitive input (blank ids) surfaces the same way
// syntax errors do.
func (a *Adapter) Parse(src []byte) (*model.Model, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &notation.ParseError{Notation: a.Name(), Message: "empty document"}
		}
		return nil, a.yamlError(err)
	}

	b := builder.New()
	if err := b.AttachRepresentation(MediaType, string(src)); err != nil {
		return nil, a.wrapInputError(err)
	}
	if err := b.SetMetadata("notation", a.Name()); err != nil {
		return nil, a.wrapInputError(err)
	}
	if doc.Process != "" {
		if err := b.SetMetadata("process_name", doc.Process); err != nil {
			return nil, a.wrapInputError(err)
		}
	}
	for _, key := range sortedKeys(doc.Metadata) {
		if err := b.SetMetadata(key, doc.Metadata[key]); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, n := range doc.Nodes {
		spec := builder.NodeSpec{
			ID:         n.ID,
			Kind:       n.Kind,
			Name:       n.Name,
			Lane:       n.Lane,
			PolicyRef:  n.PolicyRef,
			Extensions: n.Extensions,
		}
		if err := b.AddNode(spec); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, e := range doc.Edges {
		spec := builder.EdgeSpec{
			Source:     e.From,
			Target:     e.To,
			Guard:      e.Guard,
			Label:      e.Label,
			Undirected: e.Undirected,
		}
		if err := b.AddEdge(spec); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, id := range sortedKeys(doc.Resources) {
		p := doc.Resources[id]
		name := p.Name
		if name == "" {
			name = id
		}
		pool := model.ResourcePool{
			Name:        name,
			Capacity:    p.Capacity,
			Skills:      p.Skills,
			CostPerHour: p.CostPerHour,
			Schedule:    p.Schedule,
		}
		if err := b.SetResourcePool(id, pool); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, v := range doc.Views {
		spec := builder.ViewSpec{
			ID:        v.ID,
			Name:      v.Name,
			Viewpoint: v.Viewpoint,
			Nodes:     v.Nodes,
			Edges:     v.Edges,
			Props:     v.Props,
		}
		if err := b.SetView(spec); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, nodeID := range sortedKeys(doc.Mappings) {
		if err := b.AddMapping(nodeID, doc.Mappings[nodeID]...); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	return b.Build(), nil
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// yamlError folds a yaml.v3 failure into a ParseError, recovering the line
// number from the error text when present.
func (a *Adapter) yamlError(err error) error {
	pe := &notation.ParseError{
		Notation: a.Name(),
		Message:  "invalid YAML",
		Detail:   err.Error(),
	}
	if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			pe.Line = n
		}
	}
	return pe
}

// wrapInputError converts builder input failures (blank ids and the like)
// into parse errors; anything else passes through untouched.
func (a *Adapter) wrapInputError(err error) error {
	var ie *builder.InputError
	if errors.As(err, &ie) {
		return &notation.ParseError{
			Notation: a.Name(),
			Message:  "invalid document",
			Detail:   ie.Error(),
		}
	}
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
