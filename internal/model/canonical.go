package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for the model.
// CRITICAL: this is the ONLY serialization that may be used for
// content-addressed identity computation (see hash.go).
//
// Key differences from standard json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No insignificant whitespace
//
// Empty optional collections are omitted; nodes and edges are always
// present so that an empty graph has a stable canonical form.
// Structurally equal models produce byte-identical output.
func MarshalCanonical(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeModel(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeModel(buf *bytes.Buffer, m *Model) error {
	buf.WriteByte('{')

	// Keys in canonical order: edges, mappings, metadata, nodes,
	// representations, resources, views.
	if err := writeKey(buf, "edges"); err != nil {
		return err
	}
	buf.WriteByte('[')
	for i, e := range m.Edges {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeEdge(buf, e); err != nil {
			return fmt.Errorf("edges[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')

	if len(m.Mappings) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "mappings"); err != nil {
			return err
		}
		if err := writeStringSliceMap(buf, m.Mappings); err != nil {
			return fmt.Errorf("mappings: %w", err)
		}
	}

	if len(m.Metadata) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "metadata"); err != nil {
			return err
		}
		if err := writeStringMap(buf, m.Metadata); err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
	}

	buf.WriteByte(',')
	if err := writeKey(buf, "nodes"); err != nil {
		return err
	}
	buf.WriteByte('{')
	for i, id := range sortedKeysCanonical(m.Nodes) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, id); err != nil {
			return err
		}
		if err := writeNode(buf, m.Nodes[id]); err != nil {
			return fmt.Errorf("nodes[%q]: %w", id, err)
		}
	}
	buf.WriteByte('}')

	if len(m.Representations) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "representations"); err != nil {
			return err
		}
		if err := writeStringMap(buf, m.Representations); err != nil {
			return fmt.Errorf("representations: %w", err)
		}
	}

	if len(m.Resources) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "resources"); err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, id := range sortedKeysCanonical(m.Resources) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(buf, id); err != nil {
				return err
			}
			if err := writePool(buf, m.Resources[id]); err != nil {
				return fmt.Errorf("resources[%q]: %w", id, err)
			}
		}
		buf.WriteByte('}')
	}

	if len(m.Views) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "views"); err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, id := range sortedKeysCanonical(m.Views) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(buf, id); err != nil {
				return err
			}
			if err := writeView(buf, m.Views[id]); err != nil {
				return fmt.Errorf("views[%q]: %w", id, err)
			}
		}
		buf.WriteByte('}')
	}

	buf.WriteByte('}')
	return nil
}

// writeNode emits a node object. Key order: extensions, id, kind, lane,
// name, policy_ref. Empty optionals are omitted.
func writeNode(buf *bytes.Buffer, n Node) error {
	buf.WriteByte('{')
	if len(n.Extensions) > 0 {
		if err := writeKey(buf, "extensions"); err != nil {
			return err
		}
		if err := writeStringMap(buf, n.Extensions); err != nil {
			return err
		}
		buf.WriteByte(',')
	}
	if err := writeKey(buf, "id"); err != nil {
		return err
	}
	if err := writeString(buf, n.ID); err != nil {
		return err
	}
	buf.WriteByte(',')
	if err := writeKey(buf, "kind"); err != nil {
		return err
	}
	if err := writeString(buf, n.Kind); err != nil {
		return err
	}
	if n.Lane != "" {
		buf.WriteByte(',')
		if err := writeKey(buf, "lane"); err != nil {
			return err
		}
		if err := writeString(buf, n.Lane); err != nil {
			return err
		}
	}
	buf.WriteByte(',')
	if err := writeKey(buf, "name"); err != nil {
		return err
	}
	if err := writeString(buf, n.Name); err != nil {
		return err
	}
	if n.PolicyRef != "" {
		buf.WriteByte(',')
		if err := writeKey(buf, "policy_ref"); err != nil {
			return err
		}
		if err := writeString(buf, n.PolicyRef); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeEdge emits an edge object. Key order: guard, label, source, target,
// undirected. Guard/label omitted when empty; undirected omitted when false.
func writeEdge(buf *bytes.Buffer, e Edge) error {
	buf.WriteByte('{')
	if e.Guard != "" {
		if err := writeKey(buf, "guard"); err != nil {
			return err
		}
		if err := writeString(buf, e.Guard); err != nil {
			return err
		}
		buf.WriteByte(',')
	}
	if e.Label != "" {
		if err := writeKey(buf, "label"); err != nil {
			return err
		}
		if err := writeString(buf, e.Label); err != nil {
			return err
		}
		buf.WriteByte(',')
	}
	if err := writeKey(buf, "source"); err != nil {
		return err
	}
	if err := writeString(buf, e.Source); err != nil {
		return err
	}
	buf.WriteByte(',')
	if err := writeKey(buf, "target"); err != nil {
		return err
	}
	if err := writeString(buf, e.Target); err != nil {
		return err
	}
	if e.Undirected {
		buf.WriteByte(',')
		if err := writeKey(buf, "undirected"); err != nil {
			return err
		}
		buf.WriteString("true")
	}
	buf.WriteByte('}')
	return nil
}

// writePool emits a resource pool. Key order: capacity, cost_per_hour,
// name, schedule, skills.
func writePool(buf *bytes.Buffer, p ResourcePool) error {
	buf.WriteByte('{')
	if err := writeKey(buf, "capacity"); err != nil {
		return err
	}
	buf.WriteString(strconv.Itoa(p.Capacity))
	if p.CostPerHour != 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "cost_per_hour"); err != nil {
			return err
		}
		if err := writeFloat(buf, p.CostPerHour); err != nil {
			return err
		}
	}
	buf.WriteByte(',')
	if err := writeKey(buf, "name"); err != nil {
		return err
	}
	if err := writeString(buf, p.Name); err != nil {
		return err
	}
	if len(p.Schedule) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "schedule"); err != nil {
			return err
		}
		if err := writeStringMap(buf, p.Schedule); err != nil {
			return err
		}
	}
	if len(p.Skills) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "skills"); err != nil {
			return err
		}
		if err := writeStringSlice(buf, p.Skills); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeView emits a view. Key order: edges, id, name, nodes, props, viewpoint.
func writeView(buf *bytes.Buffer, v View) error {
	buf.WriteByte('{')
	if len(v.Edges) > 0 {
		if err := writeKey(buf, "edges"); err != nil {
			return err
		}
		if err := writeStringSlice(buf, v.Edges); err != nil {
			return err
		}
		buf.WriteByte(',')
	}
	if err := writeKey(buf, "id"); err != nil {
		return err
	}
	if err := writeString(buf, v.ID); err != nil {
		return err
	}
	if v.Name != "" {
		buf.WriteByte(',')
		if err := writeKey(buf, "name"); err != nil {
			return err
		}
		if err := writeString(buf, v.Name); err != nil {
			return err
		}
	}
	if len(v.Nodes) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "nodes"); err != nil {
			return err
		}
		if err := writeStringSlice(buf, v.Nodes); err != nil {
			return err
		}
	}
	if len(v.Props) > 0 {
		buf.WriteByte(',')
		if err := writeKey(buf, "props"); err != nil {
			return err
		}
		if err := writeStringMap(buf, v.Props); err != nil {
			return err
		}
	}
	if v.Viewpoint != "" {
		buf.WriteByte(',')
		if err := writeKey(buf, "viewpoint"); err != nil {
			return err
		}
		if err := writeString(buf, v.Viewpoint); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeStringMap(buf *bytes.Buffer, m map[string]string) error {
	buf.WriteByte('{')
	for i, k := range sortedKeysCanonical(m) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, k); err != nil {
			return err
		}
		if err := writeString(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeStringSliceMap(buf *bytes.Buffer, m map[string][]string) error {
	buf.WriteByte('{')
	for i, k := range sortedKeysCanonical(m) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, k); err != nil {
			return err
		}
		if err := writeStringSlice(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeStringSlice(buf *bytes.Buffer, ss []string) error {
	buf.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, s); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// writeKey emits a canonical object key followed by ':'.
func writeKey(buf *bytes.Buffer, k string) error {
	if err := writeString(buf, k); err != nil {
		return err
	}
	buf.WriteByte(':')
	return nil
}

// writeFloat emits a finite float in Go's shortest round-trip form, which
// is deterministic for a given bit pattern. NaN and infinities have no
// JSON representation and are rejected.
func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite float %v is forbidden in canonical JSON", f)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// writeString produces a canonical JSON string with NFC normalization.
// CRITICAL: RFC 8785 compliance:
//   - No HTML escaping (<, >, & are NOT escaped)
//   - U+2028 and U+2029 are NOT escaped
//   - Only control characters (U+0000-U+001F), backslash, and quote are escaped
func writeString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false) // <, >, & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return err
	}

	// json.Encoder adds a trailing newline, remove it.
	out := tmp.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}

	// Go's encoder escapes U+2028/U+2029 for JavaScript compatibility, which
	// violates RFC 8785. Unescape them, but leave \\u2028 (literal backslash
	// followed by the text "u2028") alone.
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators converts   and   escape sequences back
// to literal characters. A sequence is a real escape only when preceded by
// an even number of backslashes; an odd count means the backslash itself
// is escaped and the "u2028" is literal text.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if i+6 <= len(data) && data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, " "...)
				} else {
					out = append(out, " "...)
				}
				i += 6
				continue
			}
		}
		out = append(out, data[i])
		i++
	}
	return out
}

// sortedKeysCanonical returns map keys in RFC 8785 canonical order
// (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces a DIFFERENT order.
func sortedKeysCanonical[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785. utf16.Encode handles surrogate pairs correctly; byte-wise
// comparison of the UTF-8 encoding does not.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
