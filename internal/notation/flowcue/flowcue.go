// Package flowcue implements the flow CUE notation: the flow document
// schema expressed in CUE, for configuration-heavy environments where
// process files live next to other CUE config.
//
// Nodes, resources, views, and mappings are structs keyed by identifier;
// edges stay an ordered list. Parse-only: CUE files are authored by hand,
// so there is no renderer.
package flowcue

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/pir/internal/builder"
	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/notation"
)

// MediaType is the representation key for flow CUE sources.
const MediaType = "flow+cue"

// Adapter implements notation.Adapter for flow CUE.
type Adapter struct{}

var (
	_ notation.Adapter  = (*Adapter)(nil)
	_ notation.Detector = (*Adapter)(nil)
)

// New returns the flow CUE adapter.
func New() *Adapter { return &Adapter{} }

// Name implements notation.Adapter.
func (a *Adapter) Name() string { return "flowcue" }

// MediaType implements notation.Adapter.
func (a *Adapter) MediaType() string { return MediaType }

// MatchesExtension implements notation.Detector.
func (a *Adapter) MatchesExtension(ext string) bool {
	return ext == ".cue"
}

var cueShapeRe = regexp.MustCompile(`(?m)^nodes:\s*\{`)

// Sniff implements notation.Detector: a package clause or a brace-valued
// top-level nodes field, which YAML would never produce.
func (a *Adapter) Sniff(src []byte) bool {
	trimmed := strings.TrimSpace(string(src))
	return strings.HasPrefix(trimmed, "package ") || cueShapeRe.MatchString(trimmed)
}

// Parse compiles the source with the CUE SDK (no CLI subprocess) and walks
// the top-level fields, building the model through the builder so blank
// identifiers surface the same way evaluation errors do.
func (a *Adapter) Parse(src []byte) (*model.Model, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, &notation.ParseError{Notation: a.Name(), Message: "empty document"}
	}

	v := cuecontext.New().CompileString(string(src))
	if err := v.Err(); err != nil {
		return nil, a.cueError(err)
	}

	b := builder.New()
	if err := b.AttachRepresentation(MediaType, string(src)); err != nil {
		return nil, a.wrapInputError(err)
	}
	if err := b.SetMetadata("notation", a.Name()); err != nil {
		return nil, a.wrapInputError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, a.cueError(err)
	}
	for iter.Next() {
		val := iter.Value()
		var err error
		switch iter.Label() {
		case "process":
			err = a.parseProcess(b, val)
		case "metadata":
			err = a.parseMetadata(b, val)
		case "nodes":
			err = a.parseNodes(b, val)
		case "edges":
			err = a.parseEdges(b, val)
		case "resources":
			err = a.parseResources(b, val)
		case "views":
			err = a.parseViews(b, val)
		case "mappings":
			err = a.parseMappings(b, val)
		default:
			err = a.fieldError(val, fmt.Sprintf("unknown field %q", iter.Label()))
		}
		if err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

func (a *Adapter) parseProcess(b *builder.Builder, v cue.Value) error {
	name, err := v.String()
	if err != nil {
		return a.cueError(err)
	}
	if name == "" {
		return nil
	}
	return a.wrapInputError(b.SetMetadata("process_name", name))
}

func (a *Adapter) parseMetadata(b *builder.Builder, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return a.cueError(err)
	}
	for iter.Next() {
		value, err := iter.Value().String()
		if err != nil {
			return a.cueError(err)
		}
		if err := b.SetMetadata(iter.Label(), value); err != nil {
			return a.wrapInputError(err)
		}
	}
	return nil
}

func (a *Adapter) parseNodes(b *builder.Builder, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return a.cueError(err)
	}
	for iter.Next() {
		nv := iter.Value()
		spec := builder.NodeSpec{ID: iter.Label()}
		if spec.Kind, err = a.stringAt(nv, "kind"); err != nil {
			return err
		}
		if spec.Name, err = a.stringAt(nv, "name"); err != nil {
			return err
		}
		if spec.Lane, err = a.stringAt(nv, "lane"); err != nil {
			return err
		}
		if spec.PolicyRef, err = a.stringAt(nv, "policy_ref"); err != nil {
			return err
		}
		if spec.Extensions, err = a.stringMapAt(nv, "extensions"); err != nil {
			return err
		}
		if err := b.AddNode(spec); err != nil {
			return a.wrapInputError(err)
		}
	}
	return nil
}

func (a *Adapter) parseEdges(b *builder.Builder, v cue.Value) error {
	list, err := v.List()
	if err != nil {
		return a.cueError(err)
	}
	for list.Next() {
		ev := list.Value()
		var spec builder.EdgeSpec
		if spec.Source, err = a.stringAt(ev, "from"); err != nil {
			return err
		}
		if spec.Target, err = a.stringAt(ev, "to"); err != nil {
			return err
		}
		if spec.Guard, err = a.stringAt(ev, "guard"); err != nil {
			return err
		}
		if spec.Label, err = a.stringAt(ev, "label"); err != nil {
			return err
		}
		if spec.Undirected, err = a.boolAt(ev, "undirected"); err != nil {
			return err
		}
		if err := b.AddEdge(spec); err != nil {
			return a.wrapInputError(err)
		}
	}
	return nil
}

func (a *Adapter) parseResources(b *builder.Builder, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return a.cueError(err)
	}
	for iter.Next() {
		id := iter.Label()
		pv := iter.Value()
		var pool model.ResourcePool
		if pool.Name, err = a.stringAt(pv, "name"); err != nil {
			return err
		}
		if pool.Name == "" {
			pool.Name = id
		}
		if pool.Capacity, err = a.intAt(pv, "capacity"); err != nil {
			return err
		}
		if pool.Skills, err = a.stringsAt(pv, "skills"); err != nil {
			return err
		}
		if pool.CostPerHour, err = a.floatAt(pv, "cost_per_hour"); err != nil {
			return err
		}
		if pool.Schedule, err = a.stringMapAt(pv, "schedule"); err != nil {
			return err
		}
		if err := b.SetResourcePool(id, pool); err != nil {
			return a.wrapInputError(err)
		}
	}
	return nil
}

func (a *Adapter) parseViews(b *builder.Builder, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return a.cueError(err)
	}
	for iter.Next() {
		vv := iter.Value()
		spec := builder.ViewSpec{ID: iter.Label()}
		if spec.Name, err = a.stringAt(vv, "name"); err != nil {
			return err
		}
		if spec.Viewpoint, err = a.stringAt(vv, "viewpoint"); err != nil {
			return err
		}
		if spec.Nodes, err = a.stringsAt(vv, "nodes"); err != nil {
			return err
		}
		if spec.Edges, err = a.stringsAt(vv, "edges"); err != nil {
			return err
		}
		if spec.Props, err = a.stringMapAt(vv, "props"); err != nil {
			return err
		}
		if err := b.SetView(spec); err != nil {
			return a.wrapInputError(err)
		}
	}
	return nil
}

func (a *Adapter) parseMappings(b *builder.Builder, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return a.cueError(err)
	}
	for iter.Next() {
		refs, err := a.stringList(iter.Value())
		if err != nil {
			return err
		}
		if err := b.AddMapping(iter.Label(), refs...); err != nil {
			return a.wrapInputError(err)
		}
	}
	return nil
}

// stringAt reads an optional string field; absent means "".
func (a *Adapter) stringAt(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", a.cueError(err)
	}
	return s, nil
}

func (a *Adapter) boolAt(v cue.Value, path string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	value, err := fv.Bool()
	if err != nil {
		return false, a.cueError(err)
	}
	return value, nil
}

func (a *Adapter) intAt(v cue.Value, path string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, a.cueError(err)
	}
	return int(n), nil
}

func (a *Adapter) floatAt(v cue.Value, path string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, a.cueError(err)
	}
	return f, nil
}

func (a *Adapter) stringsAt(v cue.Value, path string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	return a.stringList(fv)
}

func (a *Adapter) stringList(v cue.Value) ([]string, error) {
	list, err := v.List()
	if err != nil {
		return nil, a.cueError(err)
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, a.cueError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (a *Adapter) stringMapAt(v cue.Value, path string) (map[string]string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.Fields()
	if err != nil {
		return nil, a.cueError(err)
	}
	out := map[string]string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, a.cueError(err)
		}
		out[iter.Label()] = s
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// cueError folds a CUE evaluation failure into a ParseError, keeping the
// first error's source position when the SDK provides one.
func (a *Adapter) cueError(err error) error {
	pe := &notation.ParseError{
		Notation: a.Name(),
		Message:  "invalid CUE",
		Detail:   err.Error(),
	}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		pe.Detail = errs[0].Error()
		if positions := cueerrors.Positions(errs[0]); len(positions) > 0 && positions[0].IsValid() {
			pe.Line = positions[0].Line()
		}
	}
	return pe
}

// fieldError reports a schema violation at the value's source position.
func (a *Adapter) fieldError(v cue.Value, detail string) error {
	pe := &notation.ParseError{
		Notation: a.Name(),
		Message:  "invalid document",
		Detail:   detail,
	}
	if pos := v.Pos(); pos.IsValid() {
		pe.Line = pos.Line()
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
