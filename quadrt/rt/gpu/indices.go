package gpu

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

const IndicesPerQuad = 6

// GenerateQuadIndices builds two triangles per quad over the implicit vertex
// stream 4i..4i+3. The order (2,0,1),(1,3,2) is counter-clockwise for the
// corner layout used by quads.wgsl and must not change: the pipeline culls
// back faces with FrontFaceCCW.
func GenerateQuadIndices(instanceCount uint32) []uint32 {
	indices := make([]uint32, 0, uint64(instanceCount)*IndicesPerQuad)
	for i := uint32(0); i < instanceCount; i++ {
		base := i * 4
		indices = append(indices,
			base+2, base, base+1,
			base+1, base+3, base+2,
		)
	}
	return indices
}

// IndexBuffer owns the synthesized index buffer and regenerates it only when
// the instance count changes.
type IndexBuffer struct {
	device        Device
	buffer        Buffer
	instanceCount uint32
	generations   uint64
}

func NewIndexBuffer(device Device) *IndexBuffer {
	return &IndexBuffer{device: device}
}

// Ensure sizes the buffer for instanceCount quads. It reports whether the
// buffer was regenerated.
func (b *IndexBuffer) Ensure(instanceCount uint32) (bool, error) {
	if instanceCount == b.instanceCount && (b.buffer != nil || instanceCount == 0) {
		return false, nil
	}
	if uint64(instanceCount)*IndicesPerQuad > math.MaxUint32 {
		return false, fmt.Errorf("%w: %d quads overflow 32-bit index counts", ErrAllocation, instanceCount)
	}

	var next Buffer
	if instanceCount > 0 {
		indices := GenerateQuadIndices(instanceCount)
		contents := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
		buf, err := b.device.CreateBufferInit("gpu_quads_index_buffer", contents, wgpu.BufferUsageIndex)
		if err != nil {
			return false, fmt.Errorf("%w: index buffer for %d quads: %w", ErrAllocation, instanceCount, err)
		}
		next = buf
	}

	if b.buffer != nil {
		b.buffer.Release()
	}
	b.buffer = next
	b.instanceCount = instanceCount
	b.generations++
	return true, nil
}

func (b *IndexBuffer) Buffer() Buffer { return b.buffer }

func (b *IndexBuffer) IndexCount() uint32 { return b.instanceCount * IndicesPerQuad }

func (b *IndexBuffer) InstanceCount() uint32 { return b.instanceCount }

// Generations counts how many times the buffer has been regenerated.
func (b *IndexBuffer) Generations() uint64 { return b.generations }

func (b *IndexBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
	b.instanceCount = 0
}
