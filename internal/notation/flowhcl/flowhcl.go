// Package flowhcl implements the flow HCL notation: the flow document
// schema as HCL blocks, for teams that keep process definitions next to
// infrastructure config.
//
// One process block, then node, edge, resource, view, and mapping blocks
// in any order. Parse-only: there is no renderer.
package flowhcl

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/roach88/pir/internal/builder"
	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/notation"
)

// MediaType is the representation key for flow HCL sources.
const MediaType = "flow+hcl"

// fileRoot mirrors the top-level blocks of a flow HCL document. There is
// no remain body: unknown blocks and attributes are decode errors.
type fileRoot struct {
	Process   *processBlock    `hcl:"process,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Edges     []*edgeBlock     `hcl:"edge,block"`
	Resources []*resourceBlock `hcl:"resource,block"`
	Views     []*viewBlock     `hcl:"view,block"`
	Mappings  []*mappingBlock  `hcl:"mapping,block"`
}

type processBlock struct {
	Name     string               `hcl:"name,label"`
	Metadata map[string]cty.Value `hcl:"metadata,optional"`
}

type nodeBlock struct {
	ID         string               `hcl:"id,label"`
	Kind       string               `hcl:"kind"`
	Name       string               `hcl:"name,optional"`
	Lane       string               `hcl:"lane,optional"`
	PolicyRef  string               `hcl:"policy_ref,optional"`
	Extensions map[string]cty.Value `hcl:"extensions,optional"`
}

type edgeBlock struct {
	From       string `hcl:"from"`
	To         string `hcl:"to"`
	Guard      string `hcl:"guard,optional"`
	Label      string `hcl:"label,optional"`
	Undirected bool   `hcl:"undirected,optional"`
}

type resourceBlock struct {
	ID          string            `hcl:"id,label"`
	Name        string            `hcl:"name,optional"`
	Capacity    int               `hcl:"capacity,optional"`
	Skills      []string          `hcl:"skills,optional"`
	CostPerHour float64           `hcl:"cost_per_hour,optional"`
	Schedule    map[string]string `hcl:"schedule,optional"`
}

type viewBlock struct {
	ID        string            `hcl:"id,label"`
	Name      string            `hcl:"name,optional"`
	Viewpoint string            `hcl:"viewpoint,optional"`
	Nodes     []string          `hcl:"nodes,optional"`
	Edges     []string          `hcl:"edges,optional"`
	Props     map[string]string `hcl:"props,optional"`
}

type mappingBlock struct {
	NodeID string   `hcl:"node,label"`
	Refs   []string `hcl:"refs"`
}

// Adapter implements notation.Adapter for flow HCL.
type Adapter struct{}

var (
	_ notation.Adapter  = (*Adapter)(nil)
	_ notation.Detector = (*Adapter)(nil)
)

// New returns the flow HCL adapter.
func New() *Adapter { return &Adapter{} }

// Name implements notation.Adapter.
func (a *Adapter) Name() string { return "flowhcl" }

// MediaType implements notation.Adapter.
func (a *Adapter) MediaType() string { return MediaType }

// MatchesExtension implements notation.Detector.
func (a *Adapter) MatchesExtension(ext string) bool {
	return ext == ".hcl"
}

var hclShapeRe = regexp.MustCompile(`(?m)^\s*(process|node|resource|view|mapping)\s+"[^"]*"\s*\{|^\s*edge\s*\{`)

// Sniff implements notation.Detector: a labelled flow block opener.
func (a *Adapter) Sniff(src []byte) bool {
	return hclShapeRe.Match(src)
}

// Parse decodes the blocks with gohcl (no eval context, so attribute
// values are literals) and builds the model through the builder.
func (a *Adapter) Parse(src []byte) (*model.Model, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, &notation.ParseError{Notation: a.Name(), Message: "empty document"}
	}

	file, diags := hclparse.NewParser().ParseHCL(src, "process.hcl")
	if diags.HasErrors() {
		return nil, a.diagError("malformed HCL", diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, a.diagError("invalid document", diags)
	}

	b := builder.New()
	if err := b.AttachRepresentation(MediaType, string(src)); err != nil {
		return nil, a.wrapInputError(err)
	}
	if err := b.SetMetadata("notation", a.Name()); err != nil {
		return nil, a.wrapInputError(err)
	}
	if root.Process != nil {
		if root.Process.Name != "" {
			if err := b.SetMetadata("process_name", root.Process.Name); err != nil {
				return nil, a.wrapInputError(err)
			}
		}
		meta, err := a.stringifyMap(root.Process.Metadata)
		if err != nil {
			return nil, err
		}
		for _, key := range sortedKeys(meta) {
			if err := b.SetMetadata(key, meta[key]); err != nil {
				return nil, a.wrapInputError(err)
			}
		}
	}

	for _, n := range root.Nodes {
		ext, err := a.stringifyMap(n.Extensions)
		if err != nil {
			return nil, err
		}
		spec := builder.NodeSpec{
			ID:         n.ID,
			Kind:       n.Kind,
			Name:       n.Name,
			Lane:       n.Lane,
			PolicyRef:  n.PolicyRef,
			Extensions: ext,
		}
		if err := b.AddNode(spec); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, e := range root.Edges {
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

	for _, r := range root.Resources {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		pool := model.ResourcePool{
			Name:        name,
			Capacity:    r.Capacity,
			Skills:      r.Skills,
			CostPerHour: r.CostPerHour,
			Schedule:    r.Schedule,
		}
		if err := b.SetResourcePool(r.ID, pool); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	for _, v := range root.Views {
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

	for _, mp := range root.Mappings {
		if err := b.AddMapping(mp.NodeID, mp.Refs...); err != nil {
			return nil, a.wrapInputError(err)
		}
	}

	return b.Build(), nil
}

// stringifyMap coerces annotation map values to strings, so numeric and
// boolean annotations decode without quoting.
func (a *Adapter) stringifyMap(vals map[string]cty.Value) (map[string]string, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(vals))
	for key, val := range vals {
		converted, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, &notation.ParseError{
				Notation: a.Name(),
				Message:  "invalid document",
				Detail:   fmt.Sprintf("annotation %q: %s", key, err),
			}
		}
		if converted.IsNull() {
			out[key] = ""
			continue
		}
		out[key] = converted.AsString()
	}
	return out, nil
}

// diagError folds HCL diagnostics into a ParseError, keeping the first
// error diagnostic's subject line when present.
func (a *Adapter) diagError(msg string, diags hcl.Diagnostics) error {
	pe := &notation.ParseError{
		Notation: a.Name(),
		Message:  msg,
		Detail:   diags.Error(),
	}
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		pe.Detail = d.Error()
		if d.Subject != nil {
			pe.Line = d.Subject.Start.Line
		}
		break
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
