// File: topology/flow.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package topology

// Flow names one connection edge: an OutputPort on the block identified by
// SrcID feeding an InputPort on the block identified by DstID. "self" as
// either id references the enclosing hierarchy's own ports (spec.md §4.6).
type Flow struct {
	SrcID   string
	SrcPort string
	DstID   string
	DstPort string
}
