package model

import "strings"

// Canonical node kinds shared across notations. The kind space is open:
// adapters may introduce kinds not listed here and the core must accept
// them. These constants are conventions, not an enum.
const (
	KindStartEvent       = "start-event"
	KindEndEvent         = "end-event"
	KindTask             = "task"
	KindGatewayExclusive = "gateway-exclusive"
	KindGatewayParallel  = "gateway-parallel"
	KindSubprocess       = "subprocess"
	KindDecision         = "decision"
)

// IsStartKind reports whether kind designates a process entry point.
// Matches the start-event convention: the canonical kind plus any
// notation-specific kind beginning with "start".
func IsStartKind(kind string) bool {
	return kind == KindStartEvent || strings.HasPrefix(kind, "start")
}

// IsTerminalKind reports whether kind designates a terminal element,
// which is allowed to have no outgoing edges.
func IsTerminalKind(kind string) bool {
	return kind == KindEndEvent || strings.HasPrefix(kind, "end")
}
