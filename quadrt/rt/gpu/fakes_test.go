package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/quads/quadrt/rt/core"
)

type fakeBuffer struct {
	label    string
	usage    wgpu.BufferUsage
	data     []byte
	released bool
}

func (b *fakeBuffer) GetSize() uint64 { return uint64(len(b.data)) }
func (b *fakeBuffer) Release()        { b.released = true }

type fakeBindGroup struct {
	label    string
	entries  []BufferBinding
	released bool
}

func (g *fakeBindGroup) Release() { g.released = true }

type fakeDevice struct {
	buffers    []*fakeBuffer
	bindGroups []*fakeBindGroup
	writes     int
	failAlloc  bool
}

var errOutOfMemory = errors.New("out of memory")

func (d *fakeDevice) CreateBufferInit(label string, contents []byte, usage wgpu.BufferUsage) (Buffer, error) {
	if d.failAlloc {
		return nil, errOutOfMemory
	}
	buf := &fakeBuffer{label: label, usage: usage, data: append([]byte(nil), contents...)}
	d.buffers = append(d.buffers, buf)
	return buf, nil
}

func (d *fakeDevice) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error) {
	if d.failAlloc {
		return nil, errOutOfMemory
	}
	buf := &fakeBuffer{label: label, usage: usage, data: make([]byte, size)}
	d.buffers = append(d.buffers, buf)
	return buf, nil
}

func (d *fakeDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	fb := buf.(*fakeBuffer)
	if offset+uint64(len(data)) > uint64(len(fb.data)) {
		return fmt.Errorf("write of %d bytes at %d overflows %d", len(data), offset, len(fb.data))
	}
	copy(fb.data[offset:], data)
	d.writes++
	return nil
}

func (d *fakeDevice) CreateBindGroup(label string, layout *wgpu.BindGroupLayout, entries []BufferBinding) (BindGroup, error) {
	bg := &fakeBindGroup{label: label, entries: entries}
	d.bindGroups = append(d.bindGroups, bg)
	return bg, nil
}

func (d *fakeDevice) buffersLabeled(label string) []*fakeBuffer {
	var out []*fakeBuffer
	for _, b := range d.buffers {
		if b.label == label {
			out = append(out, b)
		}
	}
	return out
}

func (d *fakeDevice) bindGroupsLabeled(label string) []*fakeBindGroup {
	var out []*fakeBindGroup
	for _, g := range d.bindGroups {
		if g.label == label {
			out = append(out, g)
		}
	}
	return out
}

type passCall struct {
	op      string
	group   uint32
	bind    BindGroup
	offsets []uint32
	buffer  Buffer
	format  wgpu.IndexFormat
	counts  [2]uint32
	rect    core.Viewport
}

type fakePass struct {
	calls []passCall
}

func (p *fakePass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.calls = append(p.calls, passCall{op: "pipeline"})
}

func (p *fakePass) SetBindGroup(groupIndex uint32, group BindGroup, dynamicOffsets []uint32) {
	p.calls = append(p.calls, passCall{op: "bind", group: groupIndex, bind: group, offsets: dynamicOffsets})
}

func (p *fakePass) SetIndexBuffer(buf Buffer, format wgpu.IndexFormat, offset uint64, size uint64) {
	p.calls = append(p.calls, passCall{op: "index", buffer: buf, format: format})
}

func (p *fakePass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.calls = append(p.calls, passCall{op: "viewport", rect: core.Viewport{X: x, Y: y, Width: width, Height: height}})
}

func (p *fakePass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.calls = append(p.calls, passCall{op: "draw", counts: [2]uint32{indexCount, instanceCount}})
}

// fullTarget is the resolved viewport of an 800x600 target.
var fullTarget = core.Viewport{Width: 800, Height: 600}

func (p *fakePass) ops() []string {
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.op
	}
	return out
}
