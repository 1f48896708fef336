package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/quads/quadrt/rt/core"
	"github.com/google/uuid"
)

// DefaultMaxStorageBufferSize is the WebGPU default maxStorageBufferBindingSize.
const DefaultMaxStorageBufferSize uint64 = 128 << 20

type InstanceState int

const (
	InstanceEmpty InstanceState = iota
	InstancePopulated
)

func (s InstanceState) String() string {
	if s == InstancePopulated {
		return "Populated"
	}
	return "Empty"
}

// InstanceBufferManager owns the storage buffer of encoded quads and the
// bind group exposing it at group 1. Every sync allocates a fresh buffer of
// the exact size; the bind group is rebuilt lazily, once per allocation.
type InstanceBufferManager struct {
	device Device
	layout *wgpu.BindGroupLayout

	// MaxBufferSize caps a single allocation; larger requests fail with ErrAllocation.
	MaxBufferSize uint64

	state   InstanceState
	records []GpuQuad
	scratch []GpuQuad

	buffer   Buffer
	bufferID uuid.UUID
	count    uint32

	binding   BindGroup
	bindingID uuid.UUID

	allocations   uint64
	bindingBuilds uint64
}

func NewInstanceBufferManager(device Device, layout *wgpu.BindGroupLayout) *InstanceBufferManager {
	return &InstanceBufferManager{
		device:        device,
		layout:        layout,
		MaxBufferSize: DefaultMaxStorageBufferSize,
	}
}

// Sync re-encodes quads and replaces the instance buffer wholesale. On error
// the previous records, buffer and binding are left untouched.
func (m *InstanceBufferManager) Sync(quads []core.Quad) error {
	records := EncodeQuads(m.scratch[:0], quads)

	size := uint64(len(records)) * GpuQuadSize
	if size > m.MaxBufferSize {
		return fmt.Errorf("%w: %d quads need %d bytes, limit is %d", ErrAllocation, len(records), size, m.MaxBufferSize)
	}
	if uint64(len(records)) > uint64(^uint32(0)) {
		return fmt.Errorf("%w: %d quads exceed the instance limit", ErrAllocation, len(records))
	}

	if len(records) == 0 {
		m.releaseBuffer()
		m.commit(records)
		m.state = InstanceEmpty
		return nil
	}

	buf, err := m.device.CreateBufferInit("gpu_quads_array", quadBytes(records), wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("%w: instance buffer of %d bytes: %w", ErrAllocation, size, err)
	}

	m.releaseBuffer()
	m.commit(records)
	m.buffer = buf
	m.bufferID = uuid.New()
	m.count = uint32(len(records))
	m.state = InstancePopulated
	m.allocations++
	return nil
}

// Binding returns the bind group for the current buffer, creating it the
// first time it is asked for after an allocation.
func (m *InstanceBufferManager) Binding() (BindGroup, error) {
	if m.state == InstanceEmpty {
		return nil, ErrNoInstanceBuffer
	}
	if m.binding != nil && m.bindingID == m.bufferID {
		return m.binding, nil
	}
	if m.binding != nil {
		m.binding.Release()
		m.binding = nil
	}

	bg, err := m.device.CreateBindGroup("gpu_quads_bind_group", m.layout, []BufferBinding{{
		Binding: 0,
		Buffer:  m.buffer,
		Size:    wgpu.WholeSize,
	}})
	if err != nil {
		return nil, fmt.Errorf("gpu: quads bind group: %w", err)
	}
	m.binding = bg
	m.bindingID = m.bufferID
	m.bindingBuilds++
	return bg, nil
}

// CurrentBinding returns the cached bind group without building one. It is
// nil while the binding is stale.
func (m *InstanceBufferManager) CurrentBinding() BindGroup {
	if m.BindingStale() {
		return nil
	}
	return m.binding
}

// BindingStale reports whether the cached bind group refers to an older buffer.
func (m *InstanceBufferManager) BindingStale() bool {
	return m.state == InstancePopulated && (m.binding == nil || m.bindingID != m.bufferID)
}

func (m *InstanceBufferManager) State() InstanceState { return m.state }

func (m *InstanceBufferManager) InstanceCount() uint32 { return m.count }

func (m *InstanceBufferManager) Buffer() Buffer { return m.buffer }

// BufferID identifies the current allocation; uuid.Nil while Empty.
func (m *InstanceBufferManager) BufferID() uuid.UUID { return m.bufferID }

// Records exposes the host-side array from the last encode. Read only.
func (m *InstanceBufferManager) Records() []GpuQuad { return m.records }

func (m *InstanceBufferManager) Allocations() uint64 { return m.allocations }

func (m *InstanceBufferManager) BindingBuilds() uint64 { return m.bindingBuilds }

// commit swaps the freshly encoded records in; the previous array becomes
// the scratch space of the next sync.
func (m *InstanceBufferManager) commit(records []GpuQuad) {
	m.records, m.scratch = records, m.records
}

func (m *InstanceBufferManager) releaseBuffer() {
	if m.binding != nil {
		m.binding.Release()
		m.binding = nil
	}
	if m.buffer != nil {
		m.buffer.Release()
		m.buffer = nil
	}
	m.bufferID = uuid.Nil
	m.bindingID = uuid.Nil
	m.count = 0
}

func (m *InstanceBufferManager) Release() {
	m.releaseBuffer()
	m.records = nil
	m.scratch = nil
	m.state = InstanceEmpty
}
