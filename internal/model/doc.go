// Package model provides the canonical process graph types (PIR).
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal. This ensures the graph
// model remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Node kinds are open strings, never a closed enum - new notations must
//     be representable without touching this package
//   - Edges are an ordered sequence; duplicates are legal and preserved
//   - No delete operations anywhere - graphs are built forward-only and
//     edited by rebuilding
//   - All JSON tags use snake_case
//   - No execution semantics (tokens, timers, clocks) in any type
package model
