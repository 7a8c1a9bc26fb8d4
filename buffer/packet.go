// File: buffer/packet.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Packet bundles a payload chunk with its labels and an opaque metadata
// map, per spec.md §3: "payload: BufferChunk, metadata: string->opaque
// map, labels: list<Label>". Passed as an asynchronous message via
// OutputPort.PostMessage the same way any other object is.

package buffer

import "github.com/hioload-flow/flowcore/label"

// Packet is a self-contained unit of data plus its side-channel metadata,
// suited to posting across the actor boundary as a single async message
// rather than a streamed BufferChunk.
type Packet struct {
	Payload  BufferChunk
	Metadata map[string]any
	Labels   []label.Label
}
