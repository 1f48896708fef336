package gpu

import (
	"testing"

	"github.com/gekko3d/quads/quadrt/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() (*QuadRenderer, *fakeDevice) {
	dev := &fakeDevice{}
	return NewQuadRenderer(dev, &QuadsPipeline{}), dev
}

func renderFrame(t *testing.T, r *QuadRenderer, store *core.QuadStore) (PrepareStats, *fakePass, bool) {
	t.Helper()
	stats, err := r.Prepare(store)
	require.NoError(t, err)

	cam := core.NewCameraState()
	offsets, err := r.BeginFrame([]core.ViewUniform{cam.BuildViewUniform(800, 600)})
	require.NoError(t, err)

	pass := &fakePass{}
	drawn, err := r.EncodeView(pass, ViewPhase{ViewOffset: offsets[0], Viewport: fullTarget})
	require.NoError(t, err)
	return stats, pass, drawn
}

func TestRendererEmptyStoreSkipsDraw(t *testing.T) {
	r, dev := newTestRenderer()
	store := core.NewQuadStore()

	stats, pass, drawn := renderFrame(t, r, store)
	assert.True(t, stats.Synced)
	assert.False(t, drawn)
	assert.Empty(t, pass.calls)
	assert.Empty(t, dev.buffersLabeled("gpu_quads_array"))
	assert.False(t, store.IsDirty())
}

func TestRendererSingleFixedScreenSizeQuad(t *testing.T) {
	r, dev := newTestRenderer()
	store := core.NewQuadStore()
	store.Replace(makeQuads(1, core.BillboardFixedScreenSize))

	stats, pass, drawn := renderFrame(t, r, store)
	assert.True(t, drawn)
	assert.Equal(t, uint32(1), stats.Quads)
	assert.Equal(t, uint64(48), stats.Bytes)
	assert.True(t, stats.BindingRebuilt)
	assert.True(t, stats.IndicesRegenerated)

	assert.Equal(t, uint32(0b100), r.Instances.Records()[0].Flags)
	idx := dev.buffersLabeled("gpu_quads_index_buffer")
	require.Len(t, idx, 1)
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 3, 0, 0, 0, 2, 0, 0, 0}, idx[0].data)

	require.Len(t, pass.calls, 6)
	assert.Equal(t, [2]uint32{6, 1}, pass.calls[5].counts)
}

func TestRendererGrowthReallocatesOnce(t *testing.T) {
	r, dev := newTestRenderer()
	store := core.NewQuadStore()
	store.Replace(makeQuads(10, core.BillboardViewFacing))
	renderFrame(t, r, store)
	firstBinding, _ := r.Instances.Binding()

	store.Replace(makeQuads(1000, core.BillboardViewFacing))
	stats, pass, drawn := renderFrame(t, r, store)
	assert.True(t, drawn)
	assert.True(t, stats.BindingRebuilt)
	assert.True(t, firstBinding.(*fakeBindGroup).released)
	assert.Equal(t, [2]uint32{6000, 1}, pass.calls[len(pass.calls)-1].counts)
	assert.Len(t, dev.bindGroupsLabeled("gpu_quads_bind_group"), 2)

	// clean frame: nothing re-encoded, binding reused, view binding rebuilt
	stats, _, drawn = renderFrame(t, r, store)
	assert.True(t, drawn)
	assert.False(t, stats.Synced)
	assert.False(t, stats.BindingRebuilt)
	assert.Len(t, dev.bindGroupsLabeled("gpu_quads_bind_group"), 2)
	assert.Len(t, dev.buffersLabeled("gpu_quads_array"), 2)
	assert.Len(t, dev.bindGroupsLabeled("gpu_quads_view_bind_group"), 3)
	assert.Equal(t, uint64(2), r.Indices.Generations())
}

func TestRendererAllocationFailureSkipsFrameAndRetries(t *testing.T) {
	r, dev := newTestRenderer()
	store := core.NewQuadStore()
	store.Replace(makeQuads(5, core.BillboardNone))

	dev.failAlloc = true
	_, err := r.Prepare(store)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.True(t, store.IsDirty())

	_, err = r.BeginFrame([]core.ViewUniform{{}})
	assert.ErrorIs(t, err, ErrAllocation)
	pass := &fakePass{}
	drawn, err := r.EncodeView(pass, ViewPhase{})
	assert.False(t, drawn)
	assert.Error(t, err)
	assert.Empty(t, pass.calls)

	dev.failAlloc = false
	_, pass, drawn = renderFrame(t, r, store)
	assert.True(t, drawn)
	assert.NoError(t, r.FrameErr())
	assert.Equal(t, [2]uint32{30, 1}, pass.calls[len(pass.calls)-1].counts)
	assert.False(t, store.IsDirty())
}

func TestRendererMultipleViews(t *testing.T) {
	r, _ := newTestRenderer()
	store := core.NewQuadStore()
	store.Replace(makeQuads(2, core.BillboardWorldYFacing))

	_, err := r.Prepare(store)
	require.NoError(t, err)
	cam := core.NewCameraState()
	offsets, err := r.BeginFrame([]core.ViewUniform{cam.BuildViewUniform(800, 600), cam.BuildViewUniform(400, 300)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 256}, offsets)

	pass := &fakePass{}
	for _, off := range offsets {
		drawn, err := r.EncodeView(pass, ViewPhase{ViewOffset: off, Viewport: fullTarget})
		require.NoError(t, err)
		assert.True(t, drawn)
	}
	assert.Equal(t, uint64(2), r.Sequencer.Draws())
}
