// Package bpmn parses and renders BPMN 2.0 XML process definitions.
//
// The parser is intentionally minimal: it understands the flow-object
// subset that maps onto the canonical model (events, tasks and their
// subtypes, gateways, subprocesses, sequence flows, lanes) and ignores
// everything else - diagram interchange, data objects, message flows.
// Structural soundness of the result is the validator's concern.
package bpmn

import (
	"bytes"
	"strings"

	"github.com/beevik/etree"

	"github.com/roach88/pir/internal/builder"
	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/notation"
)

// Namespace is the BPMN 2.0 model namespace.
const Namespace = "http://www.omg.org/spec/BPMN/20100524/MODEL"

// MediaType is the representation key for original BPMN sources.
const MediaType = "bpmn+xml"

// extensionElement is the Extensions key carrying the original BPMN local
// element name, so rendering can reproduce task subtypes.
const extensionElement = "bpmn:element"

// nodeKinds maps BPMN local element names to canonical kinds. Task
// subtypes all collapse to task; the subtype survives in Extensions.
var nodeKinds = map[string]string{
	"startEvent":             model.KindStartEvent,
	"endEvent":               model.KindEndEvent,
	"task":                   model.KindTask,
	"userTask":               model.KindTask,
	"serviceTask":            model.KindTask,
	"manualTask":             model.KindTask,
	"scriptTask":             model.KindTask,
	"businessRuleTask":       model.KindTask,
	"sendTask":               model.KindTask,
	"receiveTask":            model.KindTask,
	"exclusiveGateway":       model.KindGatewayExclusive,
	"parallelGateway":        model.KindGatewayParallel,
	"subProcess":             model.KindSubprocess,
	"intermediateThrowEvent": "intermediate-throw-event",
	"intermediateCatchEvent": "intermediate-catch-event",
}

// Adapter implements notation.Adapter and notation.Renderer for BPMN 2.0.
type Adapter struct{}

var (
	_ notation.Adapter  = (*Adapter)(nil)
	_ notation.Renderer = (*Adapter)(nil)
	_ notation.Detector = (*Adapter)(nil)
)

// New returns the BPMN adapter.
func New() *Adapter { return &Adapter{} }

// Name implements notation.Adapter.
func (a *Adapter) Name() string { return "bpmn" }

// MediaType implements notation.Adapter.
func (a *Adapter) MediaType() string { return MediaType }

// MatchesExtension implements notation.Detector.
func (a *Adapter) MatchesExtension(ext string) bool {
	return ext == ".bpmn" || ext == ".xml"
}

// Sniff implements notation.Detector: XML shape plus the BPMN namespace.
func (a *Adapter) Sniff(src []byte) bool {
	trimmed := bytes.TrimSpace(src)
	return bytes.HasPrefix(trimmed, []byte("<")) && bytes.Contains(src, []byte(Namespace))
}

// Parse converts BPMN XML into a model. Leading whitespace before the XML
// declaration is tolerated; the untouched source is attached as the
// bpmn+xml representation.
func (a *Adapter) Parse(src []byte) (*model.Model, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimSpace(src)); err != nil {
		return nil, &notation.ParseError{
			Notation: a.Name(),
			Message:  "malformed XML",
			Detail:   err.Error(),
		}
	}

	root := doc.Root()
	if root == nil {
		return nil, &notation.ParseError{Notation: a.Name(), Message: "empty document"}
	}

	var processes []*etree.Element
	if root.Tag == "process" {
		processes = append(processes, root)
	}
	walk(root, func(el *etree.Element) {
		if el.Tag == "process" {
			processes = append(processes, el)
		}
	})
	if len(processes) == 0 {
		return nil, &notation.ParseError{Notation: a.Name(), Message: "no process element"}
	}

	b := builder.New()
	if err := b.AttachRepresentation(MediaType, string(src)); err != nil {
		return nil, err
	}
	if err := b.SetMetadata("notation", a.Name()); err != nil {
		return nil, err
	}
	first := processes[0]
	if id := first.SelectAttrValue("id", ""); id != "" {
		if err := b.SetMetadata("process_id", id); err != nil {
			return nil, err
		}
	}
	if name := first.SelectAttrValue("name", ""); name != "" {
		if err := b.SetMetadata("process_name", name); err != nil {
			return nil, err
		}
	}

	for _, proc := range processes {
		if err := parseProcess(b, proc); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// parseProcess maps one process element's flow objects and sequence flows.
// Nested subprocess content is flattened into the same graph.
func parseProcess(b *builder.Builder, proc *etree.Element) error {
	lanes := laneAssignments(proc)

	var nodeEls, flowEls []*etree.Element
	walk(proc, func(el *etree.Element) {
		if el.Tag == "sequenceFlow" {
			flowEls = append(flowEls, el)
			return
		}
		if _, ok := nodeKinds[el.Tag]; ok {
			nodeEls = append(nodeEls, el)
		}
	})

	for _, el := range nodeEls {
		id := el.SelectAttrValue("id", "")
		if id == "" {
			continue
		}
		spec := builder.NodeSpec{
			ID:   id,
			Kind: nodeKinds[el.Tag],
			Name: el.SelectAttrValue("name", id),
			Lane: lanes[id],
			Extensions: map[string]string{
				extensionElement: el.Tag,
			},
		}
		if err := b.AddNode(spec); err != nil {
			return err
		}
	}

	for _, sf := range flowEls {
		source := sf.SelectAttrValue("sourceRef", "")
		target := sf.SelectAttrValue("targetRef", "")
		if source == "" || target == "" {
			continue
		}
		spec := builder.EdgeSpec{
			Source: source,
			Target: target,
			Guard:  flowGuard(sf),
			Label:  sf.SelectAttrValue("name", ""),
		}
		if err := b.AddEdge(spec); err != nil {
			return err
		}
	}
	return nil
}

// laneAssignments maps flowNodeRef ids to their lane name, falling back to
// the lane id for unnamed lanes.
func laneAssignments(proc *etree.Element) map[string]string {
	lanes := make(map[string]string)
	walk(proc, func(el *etree.Element) {
		if el.Tag != "lane" {
			return
		}
		laneName := el.SelectAttrValue("name", "")
		if laneName == "" {
			laneName = el.SelectAttrValue("id", "")
		}
		if laneName == "" {
			return
		}
		for _, ref := range el.ChildElements() {
			if ref.Tag != "flowNodeRef" {
				continue
			}
			if id := strings.TrimSpace(ref.Text()); id != "" {
				lanes[id] = laneName
			}
		}
	})
	return lanes
}

// flowGuard extracts the text of a sequence flow's conditionExpression.
func flowGuard(sf *etree.Element) string {
	for _, child := range sf.ChildElements() {
		if child.Tag != "conditionExpression" {
			continue
		}
		if text := strings.TrimSpace(child.Text()); text != "" {
			return text
		}
	}
	return ""
}

// walk visits every element beneath el in document order.
func walk(el *etree.Element, visit func(*etree.Element)) {
	for _, child := range el.ChildElements() {
		visit(child)
		walk(child, visit)
	}
}
