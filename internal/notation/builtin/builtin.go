// Package builtin assembles the notation registry that ships with the
// toolchain. It lives below the adapter packages so that notation itself
// stays free of adapter imports.
package builtin

import (
	"github.com/roach88/pir/internal/notation"
	"github.com/roach88/pir/internal/notation/bpmn"
	"github.com/roach88/pir/internal/notation/flowcue"
	"github.com/roach88/pir/internal/notation/flowhcl"
	"github.com/roach88/pir/internal/notation/flowyaml"
)

// Default returns a registry with every built-in notation registered:
// bpmn, flowcue, flowhcl, and flowyaml.
func Default() *notation.Registry {
	r := notation.NewRegistry()
	for _, a := range []notation.Adapter{
		bpmn.New(),
		flowcue.New(),
		flowhcl.New(),
		flowyaml.New(),
	} {
		// Names are distinct constants, so registration cannot fail.
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}
