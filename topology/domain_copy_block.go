// File: topology/domain_copy_block.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// domainCopyBlock is the "implicit copy into a fresh manager owned by the
// input side" spec.md §4.3 mandates when a connection's InputPort and
// OutputPort disagree on buffer domain. It runs as an ordinary actor
// between the two real ports, same shape as convertBlock, except it never
// changes DType — it only forces a byte copy into a manager allocated with
// the downstream input's own allocator/NUMA affinity.
package topology

import (
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/port"
)

const domainCopyBufferBytes = 4096

// domainCopyBlock bridges one upstream OutputPort to one downstream
// InputPort of the same DType but differing Domain, by copying every
// buffer it forwards into memory drawn from its own manager, allocated
// against the downstream side's allocator/NUMA node.
type domainCopyBlock struct {
	block.Base
	in       *port.InputPort
	out      *port.OutputPort
	dtype    buffer.DType
	alloc    buffer.Allocator
	numaNode int
}

func newDomainCopyBlock(name string, dtype buffer.DType, srcDomain, dstDomain string, alloc buffer.Allocator, numaNode int) *domainCopyBlock {
	in := port.NewInputPort("in", dtype, srcDomain, alloc, numaNode)
	in.SetReserve(dtype.Size())

	mgr := bufpool.NewSlabManager()
	_ = mgr.Init(bufpool.Args{BufferSize: domainCopyBufferBytes, NumBuffers: 2, NodeAffinity: numaNode, Allocator: alloc})
	out := port.NewOutputPort("out", dtype, dstDomain, mgr)

	return &domainCopyBlock{Base: block.Base{BlockName: name}, in: in, out: out, dtype: dtype, alloc: alloc, numaNode: numaNode}
}

func (c *domainCopyBlock) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in", DType: c.in.DType}}
}

func (c *domainCopyBlock) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out", DType: c.out.DType}}
}

// Work copies as many whole elements as both the reserved input and the
// downstream's readiness allow into a fresh buffer drawn from this block's
// own manager, carrying labels through unchanged (no rescale: the dtype
// never changes across a domain copy).
func (c *domainCopyBlock) Work(info block.WorkInfo) error {
	if info.MinInElements == 0 {
		return nil
	}
	elems := info.MinInElements

	chunk, err := c.in.Buffer()
	if err != nil {
		return err
	}
	if avail := chunk.Elements(); avail < elems {
		elems = avail
	}
	if elems == 0 {
		return nil
	}

	view := chunk.SliceElements(0, elems)
	shared, err := buffer.NewSharedBuffer(view.Length(), c.numaNode, c.alloc)
	if err != nil {
		return err
	}
	copied := buffer.NewChunk(shared, c.dtype)
	copy(copied.Bytes(), view.Bytes())

	labels := c.in.Labels()
	c.in.Consume(elems * c.in.DType.Size())
	c.out.PostBuffer(copied, labels)
	return nil
}
