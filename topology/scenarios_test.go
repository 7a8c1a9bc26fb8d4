package topology_test

import (
	"sync"
	"testing"
	"time"

	"github.com/hioload-flow/flowcore/actor"
	"github.com/hioload-flow/flowcore/block"
	"github.com/hioload-flow/flowcore/bufpool"
	"github.com/hioload-flow/flowcore/buffer"
	"github.com/hioload-flow/flowcore/internal/sched"
	"github.com/hioload-flow/flowcore/label"
	"github.com/hioload-flow/flowcore/port"
	"github.com/hioload-flow/flowcore/topology"
)

// These fixtures reproduce documented test scenarios 1-5 (the cross-process
// scenario is covered in the bridge package) as scheduler-level
// integration tests: small synthetic Blocks exercising
// WorkerActor/Port/Topology plumbing under the exact byte/label shapes the
// scenarios specify, without implementing any real DSP algorithm.

// onceFeeder produces a single fixed byte payload plus a fixed set of
// labels the first time it becomes eligible, then goes idle forever.
type onceFeeder struct {
	block.Base
	out    *port.OutputPort
	dtype  buffer.DType
	data   []byte
	labels []label.Label
	done   bool
}

func (f *onceFeeder) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out0", DType: f.dtype}}
}

func (f *onceFeeder) Work(block.WorkInfo) error {
	if f.done {
		return nil
	}
	chunk := f.out.Buffer()
	if chunk.IsNull() || chunk.Length() < len(f.data) {
		return nil
	}
	copy(chunk.Bytes(), f.data)
	for _, l := range f.labels {
		f.out.PostLabel(l)
	}
	f.out.Produce(len(f.data))
	f.done = true
	return nil
}

// collector drains everything arriving on its input into plain slices.
type collector struct {
	block.Base
	in    *port.InputPort
	dtype buffer.DType

	mu       sync.Mutex
	data     []byte
	labels   []label.Label
	messages []any
}

func (c *collector) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in0", DType: c.dtype}}
}

func (c *collector) Work(block.WorkInfo) error {
	for {
		obj, ok := c.in.PopMessage()
		if !ok {
			break
		}
		c.mu.Lock()
		c.messages = append(c.messages, obj)
		c.mu.Unlock()
	}
	chunk, err := c.in.Buffer()
	if err != nil {
		return nil
	}
	n := chunk.Length()
	if n == 0 {
		return nil
	}
	labels := c.in.Labels()
	c.mu.Lock()
	c.data = append(c.data, chunk.Bytes()[:n]...)
	c.labels = append(c.labels, labels...)
	c.mu.Unlock()
	c.in.Consume(n)
	return nil
}

func (c *collector) snapshot() ([]byte, []label.Label, []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.data...), append([]label.Label(nil), c.labels...), append([]any(nil), c.messages...)
}

// gateway forwards (FORWARD) or discards (DROP) everything arriving on its
// input, matching pothos-blocks/stream/TestGateway.cpp's gateway block.
type gateway struct {
	block.Base
	in    *port.InputPort
	out   *port.OutputPort
	dtype buffer.DType
	mode  string
}

func (g *gateway) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in0", DType: g.dtype}}
}

func (g *gateway) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out0", DType: g.dtype}}
}

func (g *gateway) Work(block.WorkInfo) error {
	if obj, ok := g.in.PopMessage(); ok {
		if g.mode != "DROP" {
			g.out.PostMessage(obj)
		}
		return nil
	}
	chunk, err := g.in.Buffer()
	if err != nil {
		return nil
	}
	n := chunk.Length()
	if n == 0 {
		return nil
	}
	labels := g.in.Labels()
	g.in.Consume(n)
	if g.mode == "DROP" {
		return nil
	}
	g.out.PostBuffer(chunk.Slice(0, n), labels)
	return nil
}

func newManagerPort(name string, dtype buffer.DType) *port.OutputPort {
	mgr := bufpool.NewSlabManager()
	if err := mgr.Init(bufpool.Args{BufferSize: 4096, NumBuffers: 1}); err != nil {
		panic(err)
	}
	return port.NewOutputPort(name, dtype, "d0", mgr)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never became true")
}

// TestScenarioPassthroughForwardMode reproduces spec scenario 1.
func TestScenarioPassthroughForwardMode(t *testing.T) {
	pool := sched.NewPool(sched.Args{NumThreads: 4})
	defer pool.Close()
	top := topology.New(pool, nil)
	defer top.Close()

	data := make([]byte, 20*4)
	for i := 0; i < 20; i++ {
		v := uint32(i)
		data[i*4+0] = byte(v)
		data[i*4+1] = byte(v >> 8)
		data[i*4+2] = byte(v >> 16)
		data[i*4+3] = byte(v >> 24)
	}
	labels := []label.Label{label.New("lbl0", nil, 3, 1), label.New("lbl1", nil, 5, 1)}

	feeder := &onceFeeder{Base: block.Base{BlockName: "feeder"}, dtype: buffer.Int32, data: data, labels: labels}
	feeder.out = newManagerPort("out0", buffer.Int32)
	feederActor := actor.New(feeder, nil, []*port.OutputPort{feeder.out}, 0)
	if err := top.AddBlock("feeder", feederActor); err != nil {
		t.Fatalf("AddBlock feeder: %v", err)
	}

	gw := &gateway{Base: block.Base{BlockName: "gateway"}, dtype: buffer.Int32, mode: "FORWARD"}
	gw.in = port.NewInputPort("in0", buffer.Int32, "d0", nil, -1)
	gw.out = newManagerPort("out0", buffer.Int32)
	gwActor := actor.New(gw, []*port.InputPort{gw.in}, []*port.OutputPort{gw.out}, 0)
	if err := top.AddBlock("gateway", gwActor); err != nil {
		t.Fatalf("AddBlock gateway: %v", err)
	}

	col := &collector{Base: block.Base{BlockName: "collector"}, dtype: buffer.Int32}
	col.in = port.NewInputPort("in0", buffer.Int32, "d0", nil, -1)
	colActor := actor.New(col, []*port.InputPort{col.in}, nil, 0)
	if err := top.AddBlock("collector", colActor); err != nil {
		t.Fatalf("AddBlock collector: %v", err)
	}

	if err := top.Connect("feeder", "out0", "gateway", "in0"); err != nil {
		t.Fatalf("Connect feeder->gateway: %v", err)
	}
	if err := top.Connect("gateway", "out0", "collector", "in0"); err != nil {
		t.Fatalf("Connect gateway->collector: %v", err)
	}
	if err := top.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	waitFor(t, func() bool {
		got, _, _ := col.snapshot()
		return len(got) == len(data)
	})

	gotData, gotLabels, gotMsgs := col.snapshot()
	if string(gotData) != string(data) {
		t.Fatalf("collector buffer mismatch: got %v want %v", gotData, data)
	}
	if len(gotLabels) != 2 {
		t.Fatalf("expected 2 labels, got %+v", gotLabels)
	}
	ids := map[string]bool{gotLabels[0].ID: true, gotLabels[1].ID: true}
	if !ids["lbl0"] || !ids["lbl1"] {
		t.Fatalf("expected lbl0 and lbl1, got %+v", gotLabels)
	}
	if len(gotMsgs) != 0 {
		t.Fatalf("expected no messages, got %v", gotMsgs)
	}
}

// TestScenarioGatewayDropMode reproduces spec scenario 2.
func TestScenarioGatewayDropMode(t *testing.T) {
	pool := sched.NewPool(sched.Args{NumThreads: 4})
	defer pool.Close()
	top := topology.New(pool, nil)
	defer top.Close()

	data := make([]byte, 20*4)
	for i := range data {
		data[i] = byte(i)
	}
	labels := []label.Label{label.New("lbl0", nil, 3, 1)}

	feeder := &onceFeeder{Base: block.Base{BlockName: "feeder"}, dtype: buffer.Int32, data: data, labels: labels}
	feeder.out = newManagerPort("out0", buffer.Int32)
	feederActor := actor.New(feeder, nil, []*port.OutputPort{feeder.out}, 0)
	if err := top.AddBlock("feeder", feederActor); err != nil {
		t.Fatalf("AddBlock feeder: %v", err)
	}

	gw := &gateway{Base: block.Base{BlockName: "gateway"}, dtype: buffer.Int32, mode: "DROP"}
	gw.in = port.NewInputPort("in0", buffer.Int32, "d0", nil, -1)
	gw.out = newManagerPort("out0", buffer.Int32)
	gwActor := actor.New(gw, []*port.InputPort{gw.in}, []*port.OutputPort{gw.out}, 0)
	if err := top.AddBlock("gateway", gwActor); err != nil {
		t.Fatalf("AddBlock gateway: %v", err)
	}

	col := &collector{Base: block.Base{BlockName: "collector"}, dtype: buffer.Int32}
	col.in = port.NewInputPort("in0", buffer.Int32, "d0", nil, -1)
	colActor := actor.New(col, []*port.InputPort{col.in}, nil, 0)
	if err := top.AddBlock("collector", colActor); err != nil {
		t.Fatalf("AddBlock collector: %v", err)
	}

	if err := top.Connect("feeder", "out0", "gateway", "in0"); err != nil {
		t.Fatalf("Connect feeder->gateway: %v", err)
	}
	if err := top.Connect("gateway", "out0", "collector", "in0"); err != nil {
		t.Fatalf("Connect gateway->collector: %v", err)
	}
	if err := top.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := feederActor.Deactivate(); err != nil {
		t.Fatalf("Deactivate feeder: %v", err)
	}
	waitFor(t, func() bool { return feeder.done })
	if err := gwActor.Deactivate(); err != nil {
		t.Fatalf("Deactivate gateway: %v", err)
	}
	if err := colActor.Deactivate(); err != nil {
		t.Fatalf("Deactivate collector: %v", err)
	}
	if !top.WaitInactive(0.01, 2) {
		t.Fatalf("expected topology to settle idle")
	}

	gotData, gotLabels, gotMsgs := col.snapshot()
	if len(gotData) != 0 {
		t.Fatalf("expected empty collector buffer in DROP mode, got %d bytes", len(gotData))
	}
	if len(gotLabels) != 0 {
		t.Fatalf("expected no labels in DROP mode, got %+v", gotLabels)
	}
	if len(gotMsgs) != 0 {
		t.Fatalf("expected no messages in DROP mode, got %v", gotMsgs)
	}
}

// diffDecoder reproduces spec scenario 3: (curr-prev+symbols)%symbols,
// state (the last raw input symbol) persisting across Work calls.
type diffDecoder struct {
	block.Base
	in      *port.InputPort
	out     *port.OutputPort
	symbols int32
	lastSym int32
}

func (d *diffDecoder) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in0", DType: buffer.Int8}}
}

func (d *diffDecoder) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out0", DType: buffer.Int8}}
}

func (d *diffDecoder) Work(block.WorkInfo) error {
	chunk, err := d.in.Buffer()
	if err != nil {
		return nil
	}
	n := chunk.Length()
	if n == 0 {
		return nil
	}
	outChunk := d.out.Buffer()
	if outChunk.IsNull() || outChunk.Length() < n {
		return nil
	}
	src := chunk.Bytes()[:n]
	dst := outChunk.Bytes()[:n]
	prev := d.lastSym
	for i := 0; i < n; i++ {
		curr := int32(src[i])
		dst[i] = byte(((curr-prev)%d.symbols + d.symbols) % d.symbols)
		prev = curr
	}
	d.lastSym = prev
	d.in.Consume(n)
	d.out.Produce(n)
	return nil
}

func TestScenarioDifferentialDecoder(t *testing.T) {
	pool := sched.NewPool(sched.Args{NumThreads: 4})
	defer pool.Close()
	top := topology.New(pool, nil)
	defer top.Close()

	data := []byte{0, 1, 1, 0, 1, 1}
	feeder := &onceFeeder{Base: block.Base{BlockName: "feeder"}, dtype: buffer.Int8, data: data}
	feeder.out = newManagerPort("out0", buffer.Int8)
	feederActor := actor.New(feeder, nil, []*port.OutputPort{feeder.out}, 0)
	if err := top.AddBlock("feeder", feederActor); err != nil {
		t.Fatalf("AddBlock feeder: %v", err)
	}

	dec := &diffDecoder{Base: block.Base{BlockName: "decoder"}, symbols: 2}
	dec.in = port.NewInputPort("in0", buffer.Int8, "d0", nil, -1)
	dec.out = newManagerPort("out0", buffer.Int8)
	decActor := actor.New(dec, []*port.InputPort{dec.in}, []*port.OutputPort{dec.out}, 0)
	if err := top.AddBlock("decoder", decActor); err != nil {
		t.Fatalf("AddBlock decoder: %v", err)
	}

	col := &collector{Base: block.Base{BlockName: "collector"}, dtype: buffer.Int8}
	col.in = port.NewInputPort("in0", buffer.Int8, "d0", nil, -1)
	colActor := actor.New(col, []*port.InputPort{col.in}, nil, 0)
	if err := top.AddBlock("collector", colActor); err != nil {
		t.Fatalf("AddBlock collector: %v", err)
	}

	if err := top.Connect("feeder", "out0", "decoder", "in0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := top.Connect("decoder", "out0", "collector", "in0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := top.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	waitFor(t, func() bool {
		got, _, _ := col.snapshot()
		return len(got) == len(data)
	})

	gotData, _, _ := col.snapshot()
	want := []byte{0, 1, 0, 1, 1, 0}
	if string(gotData) != string(want) {
		t.Fatalf("differential decode mismatch: got %v want %v", gotData, want)
	}
}

// preambleFramer reproduces spec scenario 4, grounded on
// pothos-comms/digital/TestPreambleFramer.cpp's documented layout.
type preambleFramer struct {
	block.Base
	in          *port.InputPort
	out         *port.OutputPort
	preamble    []byte
	paddingSize int
	startID     string
	endID       string
}

func (f *preambleFramer) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in0", DType: buffer.Int8}}
}

func (f *preambleFramer) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out0", DType: buffer.Int8}}
}

func (f *preambleFramer) Work(block.WorkInfo) error {
	chunk, err := f.in.Buffer()
	if err != nil {
		return nil
	}
	n := chunk.Length()
	if n == 0 {
		return nil
	}
	labels := f.in.Labels()
	startIdx, endIdx := -1, -1
	for _, l := range labels {
		switch l.ID {
		case f.startID:
			startIdx = int(l.Index)
		case f.endID:
			endIdx = int(l.Index)
		}
	}
	if startIdx < 0 || endIdx < 0 {
		return nil
	}

	outLen := len(f.preamble) + f.paddingSize + n
	outChunk := f.out.Buffer()
	if outChunk.IsNull() || outChunk.Length() < outLen {
		return nil
	}
	src := chunk.Bytes()[:n]
	dst := outChunk.Bytes()[:outLen]

	copy(dst[:startIdx], src[:startIdx])
	copy(dst[startIdx:startIdx+len(f.preamble)], f.preamble)
	frameLen := endIdx - startIdx + 1
	frameDst := startIdx + len(f.preamble)
	copy(dst[frameDst:frameDst+frameLen], src[startIdx:endIdx+1])
	paddingStart := frameDst + frameLen
	for i := 0; i < f.paddingSize; i++ {
		dst[paddingStart+i] = 0
	}
	afterStart := paddingStart + f.paddingSize
	copy(dst[afterStart:], src[endIdx+1:n])

	f.in.Consume(n)
	newEndIdx := endIdx + len(f.preamble) + f.paddingSize
	f.out.PostLabel(label.New(f.startID, nil, int64(startIdx), 1))
	f.out.PostLabel(label.New(f.endID, nil, int64(newEndIdx), 1))
	f.out.Produce(outLen)
	return nil
}

func TestScenarioPreambleFramer(t *testing.T) {
	pool := sched.NewPool(sched.Args{NumThreads: 4})
	defer pool.Close()
	top := topology.New(pool, nil)
	defer top.Close()

	const testLength = 40
	const startIndex = 5
	const endIndex = 33
	const paddingSize = 13
	preamble := []byte{0, 1, 1, 1, 1, 0}

	data := make([]byte, testLength)
	for i := range data {
		data[i] = byte(i % 2)
	}
	labels := []label.Label{
		label.New("myFrameStart", nil, startIndex, 1),
		label.New("myFrameEnd", nil, endIndex, 1),
	}

	feeder := &onceFeeder{Base: block.Base{BlockName: "feeder"}, dtype: buffer.Int8, data: data, labels: labels}
	feeder.out = newManagerPort("out0", buffer.Int8)
	feederActor := actor.New(feeder, nil, []*port.OutputPort{feeder.out}, 0)
	if err := top.AddBlock("feeder", feederActor); err != nil {
		t.Fatalf("AddBlock feeder: %v", err)
	}

	framer := &preambleFramer{
		Base: block.Base{BlockName: "framer"}, preamble: preamble, paddingSize: paddingSize,
		startID: "myFrameStart", endID: "myFrameEnd",
	}
	framer.in = port.NewInputPort("in0", buffer.Int8, "d0", nil, -1)
	framer.out = newManagerPort("out0", buffer.Int8)
	framerActor := actor.New(framer, []*port.InputPort{framer.in}, []*port.OutputPort{framer.out}, 0)
	if err := top.AddBlock("framer", framerActor); err != nil {
		t.Fatalf("AddBlock framer: %v", err)
	}

	col := &collector{Base: block.Base{BlockName: "collector"}, dtype: buffer.Int8}
	col.in = port.NewInputPort("in0", buffer.Int8, "d0", nil, -1)
	colActor := actor.New(col, []*port.InputPort{col.in}, nil, 0)
	if err := top.AddBlock("collector", colActor); err != nil {
		t.Fatalf("AddBlock collector: %v", err)
	}

	if err := top.Connect("feeder", "out0", "framer", "in0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := top.Connect("framer", "out0", "collector", "in0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := top.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	wantLen := testLength + len(preamble) + paddingSize
	waitFor(t, func() bool {
		got, _, _ := col.snapshot()
		return len(got) == wantLen
	})

	gotData, gotLabels, _ := col.snapshot()
	if len(gotData) != wantLen {
		t.Fatalf("expected output length %d, got %d", wantLen, len(gotData))
	}
	if string(gotData[:startIndex]) != string(data[:startIndex]) {
		t.Fatalf("data before frame mismatch")
	}
	if string(gotData[startIndex:startIndex+len(preamble)]) != string(preamble) {
		t.Fatalf("preamble not inserted verbatim")
	}
	frameLen := endIndex - startIndex + 1
	if string(gotData[startIndex+len(preamble):startIndex+len(preamble)+frameLen]) != string(data[startIndex:endIndex+1]) {
		t.Fatalf("frame bytes mismatch")
	}
	afterStart := startIndex + len(preamble) + frameLen + paddingSize
	if string(gotData[afterStart:]) != string(data[endIndex+1:]) {
		t.Fatalf("data after frame mismatch")
	}

	if len(gotLabels) != 2 {
		t.Fatalf("expected 2 labels, got %+v", gotLabels)
	}
	for _, l := range gotLabels {
		switch l.ID {
		case "myFrameStart":
			if l.Index != startIndex {
				t.Fatalf("myFrameStart index = %d, want %d", l.Index, startIndex)
			}
		case "myFrameEnd":
			want := int64(endIndex + len(preamble) + paddingSize)
			if l.Index != want {
				t.Fatalf("myFrameEnd index = %d, want %d", l.Index, want)
			}
		default:
			t.Fatalf("unexpected label id %q", l.ID)
		}
	}
}

// sporadicDropper reproduces spec scenario 5's two deterministic
// boundaries, grounded on blocks/testers/SporadicDropper.cpp.
type sporadicDropper struct {
	block.Base
	in          *port.InputPort
	out         *port.OutputPort
	dtype       buffer.DType
	probability float64
}

func (d *sporadicDropper) InputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "in0", DType: d.dtype}}
}

func (d *sporadicDropper) OutputPortInfo() []block.PortInfo {
	return []block.PortInfo{{Name: "out0", DType: d.dtype}}
}

func (d *sporadicDropper) Work(block.WorkInfo) error {
	drop := d.probability >= 1.0
	if obj, ok := d.in.PopMessage(); ok {
		if !drop {
			d.out.PostMessage(obj)
		}
		return nil
	}
	chunk, err := d.in.Buffer()
	if err != nil {
		return nil
	}
	n := chunk.Length()
	if n == 0 {
		return nil
	}
	labels := d.in.Labels()
	d.in.Consume(n)
	if !drop {
		d.out.PostBuffer(chunk.Slice(0, n), labels)
	}
	return nil
}

func runSporadicDropperCase(t *testing.T, probability float64) ([]byte, []label.Label) {
	t.Helper()
	pool := sched.NewPool(sched.Args{NumThreads: 4})
	defer pool.Close()
	top := topology.New(pool, nil)
	defer top.Close()

	data := make([]byte, 20*4)
	for i := range data {
		data[i] = byte(i)
	}
	labels := []label.Label{label.New("lbl0", nil, 3, 1)}

	feeder := &onceFeeder{Base: block.Base{BlockName: "feeder"}, dtype: buffer.Int32, data: data, labels: labels}
	feeder.out = newManagerPort("out0", buffer.Int32)
	feederActor := actor.New(feeder, nil, []*port.OutputPort{feeder.out}, 0)
	if err := top.AddBlock("feeder", feederActor); err != nil {
		t.Fatalf("AddBlock feeder: %v", err)
	}

	dropper := &sporadicDropper{Base: block.Base{BlockName: "dropper"}, dtype: buffer.Int32, probability: probability}
	dropper.in = port.NewInputPort("in0", buffer.Int32, "d0", nil, -1)
	dropper.out = newManagerPort("out0", buffer.Int32)
	dropperActor := actor.New(dropper, []*port.InputPort{dropper.in}, []*port.OutputPort{dropper.out}, 0)
	if err := top.AddBlock("dropper", dropperActor); err != nil {
		t.Fatalf("AddBlock dropper: %v", err)
	}

	col := &collector{Base: block.Base{BlockName: "collector"}, dtype: buffer.Int32}
	col.in = port.NewInputPort("in0", buffer.Int32, "d0", nil, -1)
	colActor := actor.New(col, []*port.InputPort{col.in}, nil, 0)
	if err := top.AddBlock("collector", colActor); err != nil {
		t.Fatalf("AddBlock collector: %v", err)
	}

	if err := top.Connect("feeder", "out0", "dropper", "in0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := top.Connect("dropper", "out0", "collector", "in0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := top.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if probability >= 1.0 {
		if err := feederActor.Deactivate(); err != nil {
			t.Fatalf("Deactivate feeder: %v", err)
		}
		waitFor(t, func() bool { return feeder.done })
		if err := dropperActor.Deactivate(); err != nil {
			t.Fatalf("Deactivate dropper: %v", err)
		}
		if err := colActor.Deactivate(); err != nil {
			t.Fatalf("Deactivate collector: %v", err)
		}
		if !top.WaitInactive(0.01, 2) {
			t.Fatalf("expected topology to settle idle")
		}
	} else {
		waitFor(t, func() bool {
			got, _, _ := col.snapshot()
			return len(got) == len(data)
		})
	}

	gotData, gotLabels, _ := col.snapshot()
	return gotData, gotLabels
}

func TestScenarioSporadicDropperPassesAllAtZeroProbability(t *testing.T) {
	data, labels := runSporadicDropperCase(t, 0.0)
	if len(data) != 80 {
		t.Fatalf("expected all 80 bytes to pass through, got %d", len(data))
	}
	if len(labels) != 1 || labels[0].ID != "lbl0" {
		t.Fatalf("expected lbl0 to ride through, got %+v", labels)
	}
}

func TestScenarioSporadicDropperDropsAllAtOneProbability(t *testing.T) {
	data, labels := runSporadicDropperCase(t, 1.0)
	if len(data) != 0 {
		t.Fatalf("expected collector to stay empty, got %d bytes", len(data))
	}
	if len(labels) != 0 {
		t.Fatalf("expected no labels to survive, got %+v", labels)
	}
}
