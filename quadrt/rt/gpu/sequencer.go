package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/quads/quadrt/rt/core"
)

// Bind group slots fixed by the quads pipeline layout.
const (
	ViewBindGroupIndex  uint32 = 0
	QuadsBindGroupIndex uint32 = 1
)

type DrawState int

const (
	DrawIdle DrawState = iota
	DrawViewBound
	DrawInstanceBound
	DrawReady
	DrawSubmitted
)

var drawStateNames = [...]string{"Idle", "ViewBound", "InstanceBound", "Ready", "Submitted"}

func (s DrawState) String() string {
	if int(s) < len(drawStateNames) {
		return drawStateNames[s]
	}
	return fmt.Sprintf("DrawState(%d)", int(s))
}

// ViewPhase is one active view of the current frame.
type ViewPhase struct {
	// ViewOffset is the dynamic offset of this view in the view uniform buffer.
	ViewOffset uint32
	// Viewport must be resolved against the target; viewport state outlives
	// a single draw in a shared pass.
	Viewport core.Viewport
}

// DrawSequencer emits the fixed command sequence for the quads draw:
// pipeline, view group (0), quads group (1), index buffer, one indexed draw.
type DrawSequencer struct {
	pipeline *wgpu.RenderPipeline
	state    DrawState
	draws    uint64
}

func NewDrawSequencer(pipeline *wgpu.RenderPipeline) *DrawSequencer {
	return &DrawSequencer{pipeline: pipeline}
}

func (s *DrawSequencer) State() DrawState { return s.state }

// Draws counts the indexed draws issued so far.
func (s *DrawSequencer) Draws() uint64 { return s.draws }

func (s *DrawSequencer) advance(from, to DrawState) {
	if s.state != from {
		panic(fmt.Sprintf("gpu: draw sequencer moved to %s from %s, expected %s", to, s.state, from))
	}
	s.state = to
}

// Encode records the quads draw for one view into pass. It returns false
// without touching the pass when there is nothing to draw.
func (s *DrawSequencer) Encode(pass RenderPass, view ViewPhase, viewBinding BindGroup, instances *InstanceBufferManager, indices *IndexBuffer) (bool, error) {
	if s.state == DrawSubmitted {
		s.state = DrawIdle
	}
	if s.state != DrawIdle {
		panic(fmt.Sprintf("gpu: draw sequencer started in state %s", s.state))
	}

	count := instances.InstanceCount()
	if count == 0 {
		return false, nil
	}
	if indices.InstanceCount() != count {
		panic(fmt.Sprintf("gpu: index buffer covers %d quads, instance buffer holds %d", indices.InstanceCount(), count))
	}
	if viewBinding == nil {
		panic("gpu: quads draw without a view binding")
	}

	if instances.BindingStale() {
		panic("gpu: quads binding is stale for the current instance buffer")
	}
	quadsBinding := instances.CurrentBinding()
	if view.Viewport.Empty() {
		panic("gpu: quads draw without a resolved viewport")
	}

	vp := view.Viewport
	pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, 0, 1)
	pass.SetPipeline(s.pipeline)

	pass.SetBindGroup(ViewBindGroupIndex, viewBinding, []uint32{view.ViewOffset})
	s.advance(DrawIdle, DrawViewBound)

	pass.SetBindGroup(QuadsBindGroupIndex, quadsBinding, nil)
	s.advance(DrawViewBound, DrawInstanceBound)

	ibuf := indices.Buffer()
	pass.SetIndexBuffer(ibuf, wgpu.IndexFormatUint32, 0, ibuf.GetSize())
	s.advance(DrawInstanceBound, DrawReady)

	// one draw; the per-quad instancing lives in the vertex index
	pass.DrawIndexed(indices.IndexCount(), 1, 0, 0, 0)
	s.advance(DrawReady, DrawSubmitted)
	s.draws++
	return true, nil
}

// Reset returns the sequencer to Idle at the start of a frame.
func (s *DrawSequencer) Reset() {
	s.state = DrawIdle
}
