package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is the part of *wgpu.Buffer the quad pass relies on.
type Buffer interface {
	GetSize() uint64
	Release()
}

// BindGroup is the part of *wgpu.BindGroup the quad pass relies on.
type BindGroup interface {
	Release()
}

// BufferBinding describes one buffer entry of a bind group.
type BufferBinding struct {
	Binding uint32
	Buffer  Buffer
	Offset  uint64
	Size    uint64
}

// Device is the narrow slice of the wgpu device used by the quad renderer.
// NewDevice adapts a real *wgpu.Device; tests substitute a recording fake.
type Device interface {
	CreateBufferInit(label string, contents []byte, usage wgpu.BufferUsage) (Buffer, error)
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	CreateBindGroup(label string, layout *wgpu.BindGroupLayout, entries []BufferBinding) (BindGroup, error)
}

// RenderPass is the subset of *wgpu.RenderPassEncoder the draw sequencer issues.
type RenderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group BindGroup, dynamicOffsets []uint32)
	SetIndexBuffer(buf Buffer, format wgpu.IndexFormat, offset uint64, size uint64)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

type wgpuBuffer struct{ *wgpu.Buffer }

type wgpuBindGroup struct{ *wgpu.BindGroup }

type wgpuDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

func NewDevice(device *wgpu.Device) Device {
	return &wgpuDevice{device: device, queue: device.GetQueue()}
}

func (d *wgpuDevice) CreateBufferInit(label string, contents []byte, usage wgpu.BufferUsage) (Buffer, error) {
	buf, err := d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    usage,
	})
	if err != nil {
		return nil, err
	}
	return wgpuBuffer{buf}, nil
}

func (d *wgpuDevice) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	return wgpuBuffer{buf}, nil
}

func (d *wgpuDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	return d.queue.WriteBuffer(unwrapBuffer(buf), offset, data)
}

func (d *wgpuDevice) CreateBindGroup(label string, layout *wgpu.BindGroupLayout, entries []BufferBinding) (BindGroup, error) {
	wentries := make([]wgpu.BindGroupEntry, len(entries))
	for i, e := range entries {
		wentries[i] = wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  unwrapBuffer(e.Buffer),
			Offset:  e.Offset,
			Size:    e.Size,
		}
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: wentries,
	})
	if err != nil {
		return nil, err
	}
	return wgpuBindGroup{bg}, nil
}

func unwrapBuffer(buf Buffer) *wgpu.Buffer {
	switch b := buf.(type) {
	case wgpuBuffer:
		return b.Buffer
	case nil:
		return nil
	default:
		panic("gpu: buffer was not created by a wgpu device")
	}
}

type wgpuRenderPass struct{ pass *wgpu.RenderPassEncoder }

// WrapRenderPass adapts a wgpu render pass encoder.
func WrapRenderPass(pass *wgpu.RenderPassEncoder) RenderPass {
	return wgpuRenderPass{pass: pass}
}

func (p wgpuRenderPass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.pass.SetPipeline(pipeline)
}

func (p wgpuRenderPass) SetBindGroup(groupIndex uint32, group BindGroup, dynamicOffsets []uint32) {
	bg, ok := group.(wgpuBindGroup)
	if !ok {
		panic("gpu: bind group was not created by a wgpu device")
	}
	p.pass.SetBindGroup(groupIndex, bg.BindGroup, dynamicOffsets)
}

func (p wgpuRenderPass) SetIndexBuffer(buf Buffer, format wgpu.IndexFormat, offset uint64, size uint64) {
	p.pass.SetIndexBuffer(unwrapBuffer(buf), format, offset, size)
}

func (p wgpuRenderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.pass.SetViewport(x, y, width, height, minDepth, maxDepth)
}

func (p wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}
