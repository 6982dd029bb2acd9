// Package notation defines the contract between concrete process notations
// and the core model.
//
// An adapter owns one notation: it parses source text into a model and
// optionally renders a model back out. Adapters are permissive the same way
// the builder is - Parse returns whatever graph it understood and leaves
// structural problems to the validator. Only syntax-level failures
// (malformed XML, bad YAML) abort a parse.
package notation

import (
	"errors"
	"fmt"

	"github.com/roach88/pir/internal/model"
)

// Adapter converts one notation's source text into the shared model.
type Adapter interface {
	// Name is the registry key and CLI identifier, e.g. "bpmn".
	Name() string

	// MediaType is the representation key parsed models carry,
	// e.g. "bpmn+xml".
	MediaType() string

	// Parse converts source bytes into a model. Syntax failures return a
	// ParseError; referential or structural problems in the result are the
	// validator's job, not grounds for failure here.
	Parse(src []byte) (*model.Model, error)
}

// Renderer is the optional write-side capability. Adapters for notations
// that are authored by hand rather than generated may omit it.
type Renderer interface {
	Render(m *model.Model) ([]byte, error)
}

// Detector is the optional discovery capability used by Registry.Detect.
// Extension matching runs first; content sniffing only decides when the
// extension is unknown.
type Detector interface {
	// MatchesExtension receives the lowercase filename extension including
	// the leading dot ("" when the file has none).
	MatchesExtension(ext string) bool

	// Sniff inspects source bytes for notation-identifying shape.
	Sniff(src []byte) bool
}

// ParseError reports a syntax-level failure in notation source.
type ParseError struct {
	// Notation is the reporting adapter's name.
	Notation string

	// Message is a human-readable description.
	Message string

	// Line is the 1-based source line, 0 when unknown.
	Line int

	// Detail carries the underlying parser's text, when it adds anything.
	Detail string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Notation, e.Line, msg)
	}
	return fmt.Sprintf("%s: %s", e.Notation, msg)
}

// IsParseError reports whether err is a ParseError.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
