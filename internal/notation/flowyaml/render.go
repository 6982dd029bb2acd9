package flowyaml

import (
	"gopkg.in/yaml.v3"

	"github.com/roach88/pir/internal/model"
)

// Render emits a flow YAML document with stable ordering: nodes in sorted
// id order, edges in sequence order, views in sorted id order, map keys
// sorted by the YAML encoder. Source representations are not carried over;
// the rendered text is its own representation.
func (a *Adapter) Render(m *model.Model) ([]byte, error) {
	doc := document{
		Process:  m.Metadata["process_name"],
		Metadata: renderMetadata(m.Metadata),
	}

	for _, id := range m.NodeIDs() {
		n := m.Nodes[id]
		doc.Nodes = append(doc.Nodes, nodeEntry{
			ID:         n.ID,
			Kind:       n.Kind,
			Name:       n.Name,
			Lane:       n.Lane,
			PolicyRef:  n.PolicyRef,
			Extensions: n.Extensions,
		})
	}

	for _, e := range m.Edges {
		doc.Edges = append(doc.Edges, edgeEntry{
			From:       e.Source,
			To:         e.Target,
			Guard:      e.Guard,
			Label:      e.Label,
			Undirected: e.Undirected,
		})
	}

	if len(m.Resources) > 0 {
		doc.Resources = make(map[string]poolEntry, len(m.Resources))
		for id, p := range m.Resources {
			entry := poolEntry{
				Capacity:    p.Capacity,
				Skills:      p.Skills,
				CostPerHour: p.CostPerHour,
				Schedule:    p.Schedule,
			}
			if p.Name != id {
				entry.Name = p.Name
			}
			doc.Resources[id] = entry
		}
	}

	for _, id := range sortedKeys(m.Views) {
		v := m.Views[id]
		doc.Views = append(doc.Views, viewEntry{
			ID:        v.ID,
			Name:      v.Name,
			Viewpoint: v.Viewpoint,
			Nodes:     v.Nodes,
			Edges:     v.Edges,
			Props:     v.Props,
		})
	}

	if len(m.Mappings) > 0 {
		doc.Mappings = m.Mappings
	}

	return yaml.Marshal(doc)
}

// renderMetadata drops the keys Parse re-derives (process_name, notation)
// so a render/parse cycle is stable.
func renderMetadata(meta map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range meta {
		if k == "process_name" || k == "notation" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
