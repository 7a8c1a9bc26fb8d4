// File: topology/convert_block.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// convertBlock is the "explicit conversion block inserted in flattened
// form" spec.md §4.6 names for a DType mismatch that has a registered
// kernel. It owns its own InputPort (subscribing to the upstream
// OutputPort under the source dtype) and OutputPort (feeding the
// downstream InputPort under the destination dtype), running as an
// ordinary actor between the two, so Commit never needs a special case in
// the scheduler's hot eligibility path.
package topology

import (
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/label"
	"github.com/hioload-flow/flowcore/port"
)

const convertBufferBytes = 4096

// convertBlock bridges one upstream OutputPort (srcDType) to one downstream
// InputPort (dstDType) by running buffer.Convert per Work call.
type convertBlock struct {
	block.Base
	in       *port.InputPort
	out      *port.OutputPort
	dst      buffer.DType
	alloc    buffer.Allocator
	numaNode int
}

// newConvertBlock's output port carries forward the downstream InputPort's
// own domain (dstDomain), not a synthetic one: Convert always allocates a
// fresh buffer, which already satisfies spec.md §4.3's "fresh manager owned
// by the input side" mandate on its own, so a conversion never needs a
// separate domain-copy stage chained after it purely because of a
// bookkeeping label mismatch.
func newConvertBlock(name string, src, dst buffer.DType, srcDomain, dstDomain string, alloc buffer.Allocator, numaNode int) *convertBlock {
	in := port.NewInputPort("in", src, srcDomain, alloc, numaNode)
	in.SetReserve(src.Size())

	mgr := bufpool.NewSlabManager()
	// NumBuffers/BufferSize here only back the OutputPort's own
	// ready/credit bookkeeping; Work always hands dispatch a freshly
	// allocated converted chunk rather than drawing from this manager.
	_ = mgr.Init(bufpool.Args{BufferSize: convertBufferBytes, NumBuffers: 2, NodeAffinity: numaNode, Allocator: alloc})
	out := port.NewOutputPort("out", dst, dstDomain, mgr)

	return &convertBlock{Base: block.Base{BlockName: name}, in: in, out: out, dst: dst, alloc: alloc, numaNode: numaNode}
}

func (c *convertBlock) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in", DType: c.in.DType}}
}

func (c *convertBlock) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out", DType: c.out.DType}}
}

// Work converts as many whole source elements as both the reserved input
// and the downstream's readiness allow, preserving labels across the
// conversion by rescaling each label's index and width from source to
// destination element size (spec.md §4.4).
func (c *convertBlock) Work(info block.WorkInfo) error {
	if info.MinInElements == 0 {
		return nil
	}
	srcElems := info.MinInElements

	chunk, err := c.in.Buffer()
	if err != nil {
		return err
	}
	if avail := chunk.Elements(); avail < srcElems {
		srcElems = avail
	}
	if srcElems == 0 {
		return nil
	}

	view := chunk.SliceElements(0, srcElems)
	converted, err := view.Convert(c.dst, c.alloc, c.numaNode)
	if err != nil {
		return err
	}

	labels := c.in.Labels()
	c.in.Consume(srcElems * c.in.DType.Size())

	rescaled := make([]label.Label, len(labels))
	for i, l := range labels {
		rescaled[i] = label.Rescale(l, c.in.DType.Size(), c.dst.Size())
	}

	c.out.PostBuffer(converted, rescaled)
	return nil
}
