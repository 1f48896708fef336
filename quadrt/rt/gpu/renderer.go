package gpu

import (
	"github.com/gekko3d/quads/quadrt/rt/core"
)

// PrepareStats describes what the last Prepare call did.
type PrepareStats struct {
	Synced             bool
	Quads              uint32
	Bytes              uint64
	BindingRebuilt     bool
	IndicesRegenerated bool
}

// QuadRenderer ties the quad pass together. Per frame the host calls
// Prepare once, BeginFrame once with every active view, then EncodeView
// once per view inside that view's render pass.
type QuadRenderer struct {
	Instances *InstanceBufferManager
	Indices   *IndexBuffer
	Uniforms  *ViewUniformBuffer
	Views     *ViewBinder
	Sequencer *DrawSequencer

	frameErr error
}

func NewQuadRenderer(device Device, p *QuadsPipeline) *QuadRenderer {
	return &QuadRenderer{
		Instances: NewInstanceBufferManager(device, p.QuadsLayout),
		Indices:   NewIndexBuffer(device),
		Uniforms:  NewViewUniformBuffer(device),
		Views:     NewViewBinder(device, p.ViewLayout),
		Sequencer: NewDrawSequencer(p.Pipeline),
	}
}

// Prepare resynchronizes the GPU mirror of store when it is dirty. A failure
// is remembered for the rest of the frame and no view draws.
func (r *QuadRenderer) Prepare(store *core.QuadStore) (PrepareStats, error) {
	r.frameErr = nil
	r.Sequencer.Reset()

	var stats PrepareStats
	if store.IsDirty() {
		quads, version := store.Snapshot()
		if err := r.Instances.Sync(quads); err != nil {
			r.frameErr = err
			return stats, err
		}
		regenerated, err := r.Indices.Ensure(r.Instances.InstanceCount())
		if err != nil {
			r.frameErr = err
			return stats, err
		}
		store.ClearDirty(version)

		stats.Synced = true
		stats.IndicesRegenerated = regenerated
		stats.Quads = r.Instances.InstanceCount()
		stats.Bytes = uint64(stats.Quads) * GpuQuadSize
	}

	if r.Instances.State() == InstancePopulated {
		before := r.Instances.BindingBuilds()
		if _, err := r.Instances.Binding(); err != nil {
			r.frameErr = err
			return stats, err
		}
		stats.BindingRebuilt = r.Instances.BindingBuilds() != before
	}
	return stats, nil
}

// BeginFrame uploads the uniforms of every active view and rebuilds the view
// binding. It returns the dynamic offset of each view, in order.
func (r *QuadRenderer) BeginFrame(views []core.ViewUniform) ([]uint32, error) {
	if r.frameErr != nil {
		return nil, r.frameErr
	}
	r.Uniforms.Clear()
	offsets := make([]uint32, len(views))
	for i, v := range views {
		offsets[i] = r.Uniforms.Push(v)
	}
	if len(views) == 0 {
		return offsets, nil
	}
	if err := r.Uniforms.Upload(); err != nil {
		r.frameErr = err
		return nil, err
	}
	if _, err := r.Views.Rebuild(r.Uniforms.Buffer()); err != nil {
		r.frameErr = err
		return nil, err
	}
	return offsets, nil
}

// EncodeView records the quads draw of one view. It reports whether a draw
// was issued.
func (r *QuadRenderer) EncodeView(pass RenderPass, view ViewPhase) (bool, error) {
	if r.frameErr != nil {
		return false, r.frameErr
	}
	return r.Sequencer.Encode(pass, view, r.Views.Current(), r.Instances, r.Indices)
}

// FrameErr is the error that stopped the current frame, if any.
func (r *QuadRenderer) FrameErr() error { return r.frameErr }

func (r *QuadRenderer) Release() {
	r.Instances.Release()
	r.Indices.Release()
	r.Uniforms.Release()
	r.Views.Release()
}
