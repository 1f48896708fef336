package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/quads/quadrt/rt/core"
)

const (
	// ViewUniformSize is the size of the WGSL View struct.
	ViewUniformSize = uint64(unsafe.Sizeof(core.ViewUniform{}))
	// ViewUniformAlignment is the WebGPU minUniformBufferOffsetAlignment default.
	ViewUniformAlignment = 256
)

// ViewUniformBuffer packs the uniforms of every view rendered this frame into
// one buffer, each at a 256 byte aligned dynamic offset.
type ViewUniformBuffer struct {
	device Device
	buffer Buffer
	data   []byte
	count  uint32
}

func NewViewUniformBuffer(device Device) *ViewUniformBuffer {
	return &ViewUniformBuffer{device: device}
}

// Clear drops the views pushed for the previous frame.
func (u *ViewUniformBuffer) Clear() {
	u.data = u.data[:0]
	u.count = 0
}

// Push appends a view and returns its dynamic offset.
func (u *ViewUniformBuffer) Push(v core.ViewUniform) uint32 {
	offset := uint32(len(u.data))
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), ViewUniformSize)
	u.data = append(u.data, src...)
	u.data = append(u.data, make([]byte, ViewUniformAlignment-ViewUniformSize)...)
	u.count++
	return offset
}

func (u *ViewUniformBuffer) Len() uint32 { return u.count }

// Upload writes the pushed views, growing the buffer when it is too small.
func (u *ViewUniformBuffer) Upload() error {
	if len(u.data) == 0 {
		return nil
	}
	needed := uint64(len(u.data))
	if u.buffer == nil || u.buffer.GetSize() < needed {
		buf, err := u.device.CreateBuffer("gpu_quads_view_uniforms", needed, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("%w: view uniform buffer: %w", ErrAllocation, err)
		}
		if u.buffer != nil {
			u.buffer.Release()
		}
		u.buffer = buf
	}
	if err := u.device.WriteBuffer(u.buffer, 0, u.data); err != nil {
		return fmt.Errorf("%w: view uniform upload: %w", ErrAllocation, err)
	}
	return nil
}

func (u *ViewUniformBuffer) Buffer() Buffer { return u.buffer }

func (u *ViewUniformBuffer) Release() {
	if u.buffer != nil {
		u.buffer.Release()
		u.buffer = nil
	}
	u.Clear()
}

// ViewBinder builds the group 0 bind group over the view uniform buffer.
// It is rebuilt every frame and never reused across frames.
type ViewBinder struct {
	device  Device
	layout  *wgpu.BindGroupLayout
	current BindGroup
	builds  uint64
}

func NewViewBinder(device Device, layout *wgpu.BindGroupLayout) *ViewBinder {
	return &ViewBinder{device: device, layout: layout}
}

// Rebuild releases last frame's bind group and creates one over uniforms.
func (b *ViewBinder) Rebuild(uniforms Buffer) (BindGroup, error) {
	b.release()
	if uniforms == nil {
		return nil, fmt.Errorf("gpu: view binding: no uniform buffer")
	}
	bg, err := b.device.CreateBindGroup("gpu_quads_view_bind_group", b.layout, []BufferBinding{{
		Binding: 0,
		Buffer:  uniforms,
		Size:    ViewUniformSize,
	}})
	if err != nil {
		return nil, fmt.Errorf("gpu: view bind group: %w", err)
	}
	b.current = bg
	b.builds++
	return bg, nil
}

func (b *ViewBinder) Current() BindGroup { return b.current }

func (b *ViewBinder) Builds() uint64 { return b.builds }

func (b *ViewBinder) release() {
	if b.current != nil {
		b.current.Release()
		b.current = nil
	}
}

func (b *ViewBinder) Release() { b.release() }
