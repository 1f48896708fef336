package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/quads/quadrt/rt/core"
)

// Quad flag bits. These must match the QUAD_FLAGS_* constants in quads.wgsl.
const (
	QuadFlagBillboard                uint32 = 1 << 0
	QuadFlagBillboardWorldY          uint32 = 1 << 1
	QuadFlagBillboardFixedScreenSize uint32 = 1 << 2
)

const quadFlagMask = QuadFlagBillboard | QuadFlagBillboardWorldY | QuadFlagBillboardFixedScreenSize

// GpuQuad matches the WGSL Quad record:
//
//	struct Quad {
//	  center: vec3<f32>;       -- 0
//	  flags: u32;              -- 12
//	  half_extents: vec4<f32>; -- 16
//	  color: vec4<f32>;        -- 32
//	} -> 48 bytes, 16 byte aligned
type GpuQuad struct {
	Center      [3]float32
	Flags       uint32
	HalfExtents [4]float32
	Color       [4]float32
}

const GpuQuadSize = uint64(unsafe.Sizeof(GpuQuad{}))

// BillboardFlags maps a billboard mode to its flag bits. Unknown modes panic.
func BillboardFlags(b core.Billboard) uint32 {
	switch b {
	case core.BillboardNone:
		return 0
	case core.BillboardViewFacing:
		return QuadFlagBillboard
	case core.BillboardWorldYFacing:
		return QuadFlagBillboard | QuadFlagBillboardWorldY
	case core.BillboardFixedScreenSize:
		return QuadFlagBillboardFixedScreenSize
	}
	panic(fmt.Sprintf("gpu: unknown billboard mode %d", uint8(b)))
}

// BillboardFromFlags is the inverse of BillboardFlags.
func BillboardFromFlags(flags uint32) (core.Billboard, error) {
	switch flags & quadFlagMask {
	case 0:
		return core.BillboardNone, nil
	case QuadFlagBillboard:
		return core.BillboardViewFacing, nil
	case QuadFlagBillboard | QuadFlagBillboardWorldY:
		return core.BillboardWorldYFacing, nil
	case QuadFlagBillboardFixedScreenSize:
		return core.BillboardFixedScreenSize, nil
	}
	return core.BillboardNone, fmt.Errorf("gpu: invalid quad flags %#b", flags)
}

func EncodeQuad(q core.Quad) GpuQuad {
	return GpuQuad{
		Center:      q.Center,
		Flags:       BillboardFlags(q.Billboard),
		HalfExtents: [4]float32{q.HalfExtents[0], q.HalfExtents[1], q.HalfExtents[2], 0},
		Color:       q.Color,
	}
}

// EncodeQuads appends the encoded form of quads to dst, preserving order.
func EncodeQuads(dst []GpuQuad, quads []core.Quad) []GpuQuad {
	for i := range quads {
		dst = append(dst, EncodeQuad(quads[i]))
	}
	return dst
}

func quadBytes(records []GpuQuad) []byte {
	if len(records) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&records[0])), uint64(len(records))*GpuQuadSize)
}
