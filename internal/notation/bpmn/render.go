package bpmn

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/roach88/pir/internal/model"
)

// kindElements maps canonical kinds back to their default BPMN element.
var kindElements = map[string]string{
	model.KindStartEvent:       "startEvent",
	model.KindEndEvent:         "endEvent",
	model.KindTask:             "task",
	model.KindGatewayExclusive: "exclusiveGateway",
	model.KindGatewayParallel:  "parallelGateway",
	model.KindSubprocess:       "subProcess",
	"intermediate-throw-event": "intermediateThrowEvent",
	"intermediate-catch-event": "intermediateCatchEvent",
}

// Render emits minimal BPMN XML: a definitions/process skeleton with one
// element per node and one sequenceFlow per directed edge. Nodes come out
// in sorted id order and flows in edge-sequence order, so output is
// deterministic for a given model. Undirected edges have no BPMN
// equivalent and are skipped.
func (a *Adapter) Render(m *model.Model) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	defs := doc.CreateElement("definitions")
	defs.CreateAttr("xmlns", Namespace)
	defs.CreateAttr("id", "Definitions_1")

	proc := defs.CreateElement("process")
	proc.CreateAttr("id", processID(m))
	if name := m.Metadata["process_name"]; name != "" {
		proc.CreateAttr("name", name)
	}
	proc.CreateAttr("isExecutable", "false")

	for _, id := range m.NodeIDs() {
		n := m.Nodes[id]
		el := proc.CreateElement(elementName(n))
		el.CreateAttr("id", n.ID)
		if n.Name != "" {
			el.CreateAttr("name", n.Name)
		}
	}

	flowNum := 0
	for _, e := range m.Edges {
		if e.Undirected {
			continue
		}
		flowNum++
		sf := proc.CreateElement("sequenceFlow")
		sf.CreateAttr("id", fmt.Sprintf("flow_%d", flowNum))
		sf.CreateAttr("sourceRef", e.Source)
		sf.CreateAttr("targetRef", e.Target)
		if e.Label != "" {
			sf.CreateAttr("name", e.Label)
		}
		if e.Guard != "" {
			sf.CreateElement("conditionExpression").SetText(e.Guard)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func processID(m *model.Model) string {
	if id := m.Metadata["process_id"]; id != "" {
		return id
	}
	return "Process_1"
}

// elementName picks the BPMN element for a node: the preserved original
// element when it is one we understand, otherwise the canonical kind's
// default, otherwise a generic task.
func elementName(n model.Node) string {
	if el := n.Extensions[extensionElement]; el != "" {
		if _, known := nodeKinds[el]; known {
			return el
		}
	}
	if el, ok := kindElements[n.Kind]; ok {
		return el
	}
	return "task"
}
