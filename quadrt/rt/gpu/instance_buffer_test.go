package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/quads/quadrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuads(n int, b core.Billboard) []core.Quad {
	quads := make([]core.Quad, n)
	for i := range quads {
		quads[i] = core.Quad{
			Color:       core.White,
			Center:      mgl32.Vec3{float32(i), 0, 0},
			HalfExtents: mgl32.Vec3{0.5, 0.5, 0},
			Billboard:   b,
		}
	}
	return quads
}

func TestInstanceBufferEmptySync(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)

	require.NoError(t, m.Sync(nil))
	assert.Equal(t, InstanceEmpty, m.State())
	assert.Nil(t, m.Buffer())
	assert.Equal(t, uuid.Nil, m.BufferID())
	assert.Empty(t, dev.buffers)

	_, err := m.Binding()
	assert.ErrorIs(t, err, ErrNoInstanceBuffer)
	assert.False(t, m.BindingStale())
}

func TestInstanceBufferUploadsEncodedQuads(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)

	require.NoError(t, m.Sync(makeQuads(1, core.BillboardFixedScreenSize)))
	assert.Equal(t, InstancePopulated, m.State())
	assert.Equal(t, uint32(1), m.InstanceCount())
	require.Len(t, m.Records(), 1)
	assert.Equal(t, uint32(0b100), m.Records()[0].Flags)

	buf := m.Buffer().(*fakeBuffer)
	assert.Equal(t, "gpu_quads_array", buf.label)
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, buf.usage)
	assert.Len(t, buf.data, 48)
	// flags word sits right after the center
	assert.Equal(t, []byte{4, 0, 0, 0}, buf.data[12:16])
}

func TestInstanceBufferReallocatesAndRebindsOnce(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)

	require.NoError(t, m.Sync(makeQuads(10, core.BillboardViewFacing)))
	first, err := m.Binding()
	require.NoError(t, err)
	firstBuf := m.Buffer().(*fakeBuffer)
	firstID := m.BufferID()

	again, err := m.Binding()
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, uint64(1), m.BindingBuilds())

	require.NoError(t, m.Sync(makeQuads(1000, core.BillboardViewFacing)))
	assert.True(t, firstBuf.released)
	assert.True(t, first.(*fakeBindGroup).released)
	assert.NotEqual(t, firstID, m.BufferID())
	assert.True(t, m.BindingStale())
	assert.Len(t, m.Buffer().(*fakeBuffer).data, 1000*48)

	second, err := m.Binding()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	_, err = m.Binding()
	require.NoError(t, err)

	assert.Equal(t, uint64(2), m.Allocations())
	assert.Equal(t, uint64(2), m.BindingBuilds())
	assert.False(t, m.BindingStale())

	entries := second.(*fakeBindGroup).entries
	require.Len(t, entries, 1)
	assert.Same(t, m.Buffer(), entries[0].Buffer)
	assert.Equal(t, uint64(wgpu.WholeSize), entries[0].Size)
}

func TestInstanceBufferSameSizeStillReallocates(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)

	require.NoError(t, m.Sync(makeQuads(5, core.BillboardNone)))
	id := m.BufferID()
	require.NoError(t, m.Sync(makeQuads(5, core.BillboardWorldYFacing)))
	assert.NotEqual(t, id, m.BufferID())
	assert.Len(t, dev.buffersLabeled("gpu_quads_array"), 2)
}

func TestInstanceBufferDropsToEmpty(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)

	require.NoError(t, m.Sync(makeQuads(3, core.BillboardNone)))
	bg, err := m.Binding()
	require.NoError(t, err)
	buf := m.Buffer().(*fakeBuffer)

	require.NoError(t, m.Sync(nil))
	assert.Equal(t, InstanceEmpty, m.State())
	assert.Equal(t, uint32(0), m.InstanceCount())
	assert.True(t, buf.released)
	assert.True(t, bg.(*fakeBindGroup).released)
}

func TestInstanceBufferOversizeKeepsPreviousBuffer(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)
	m.MaxBufferSize = 48 * 4

	accepted := makeQuads(4, core.BillboardNone)
	require.NoError(t, m.Sync(accepted))
	prev := m.Buffer()

	err := m.Sync(makeQuads(5, core.BillboardFixedScreenSize))
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Same(t, prev, m.Buffer())
	assert.Equal(t, uint32(4), m.InstanceCount())
	assert.Equal(t, InstancePopulated, m.State())
	assert.Equal(t, EncodeQuads(nil, accepted), m.Records())
}

func TestInstanceBufferCreationFailure(t *testing.T) {
	dev := &fakeDevice{}
	m := NewInstanceBufferManager(dev, nil)
	accepted := makeQuads(2, core.BillboardNone)
	require.NoError(t, m.Sync(accepted))
	prev := m.Buffer()

	dev.failAlloc = true
	err := m.Sync(makeQuads(3, core.BillboardViewFacing))
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, errOutOfMemory)
	assert.Same(t, prev, m.Buffer())
	assert.False(t, prev.(*fakeBuffer).released)
	assert.Equal(t, EncodeQuads(nil, accepted), m.Records())
	assert.Len(t, m.Records(), int(m.InstanceCount()))
}

func TestInstanceBufferRecordsFollowEachSync(t *testing.T) {
	m := NewInstanceBufferManager(&fakeDevice{}, nil)
	for _, q := range [][]core.Quad{
		makeQuads(3, core.BillboardNone),
		makeQuads(1, core.BillboardWorldYFacing),
		makeQuads(5, core.BillboardViewFacing),
	} {
		require.NoError(t, m.Sync(q))
		assert.Equal(t, EncodeQuads(nil, q), m.Records())
	}
}
