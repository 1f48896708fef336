package quads

import (
	"fmt"
	"image/color"

	"github.com/cogentcore/webgpu/wgpu"
	rtapp "github.com/gekko3d/quads/quadrt/rt/app"
	"github.com/gekko3d/quads/quadrt/rt/core"
	"github.com/gekko3d/quads/quadrt/rt/gpu"
	"golang.org/x/image/colornames"
)

// QuadsModule renders the QuadStore resource with the vertex-pulled quads
// pipeline. It needs ClientModule and a CameraState resource.
type QuadsModule struct {
	ClearColor color.Color
	// SampleCount enables MSAA when greater than one.
	SampleCount uint32
	// MaxStorageBufferSize caps the instance buffer; zero uses the WebGPU default.
	MaxStorageBufferSize uint64
}

// QuadsFrameReport describes the last rendered frame.
type QuadsFrameReport struct {
	Frame   uint64
	Err     error
	Prepare gpu.PrepareStats
	Quads   uint32
	Views   int
	Draws   int
	// Allocations and BindingBuilds are running totals of the instance buffer.
	Allocations   uint64
	BindingBuilds uint64
}

// QuadViews lists extra cameras drawn after the main one, each into its own
// viewport of the same target.
type QuadViews struct {
	Cameras []*core.CameraState
}

type quadsRenderState struct {
	pipeline    *gpu.QuadsPipeline
	renderer    *gpu.QuadRenderer
	target      *renderTarget
	clear       wgpu.Color
	sampleCount uint32
}

func (mod QuadsModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, "quads")

	gs, ok := Resource[GpuState](app)
	if !ok {
		panic("QuadsModule requires ClientModule to be installed first")
	}
	sampleCount := mod.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}
	pipeline, err := gpu.NewQuadsPipeline(gs.Device(), gs.Format(), sampleCount)
	if err != nil {
		panic(err)
	}

	state := &quadsRenderState{
		pipeline:    pipeline,
		renderer:    newQuadRenderer(gpu.NewDevice(gs.Device()), pipeline, mod.MaxStorageBufferSize),
		clear:       clearColor(mod.ClearColor),
		sampleCount: sampleCount,
	}
	if _, ok := Resource[core.QuadStore](app); !ok {
		cmd.AddResources(core.NewQuadStore())
	}
	cmd.AddResources(state, &QuadsFrameReport{})
	app.OnExit(state.Release)

	useQuadsSystems(app)
}

// QuadsSync runs between PreRender and Render. It uploads the QuadStore, so
// PreRender systems may still edit the store for the current frame.
var QuadsSync = Stage{Name: "QuadsSync"}

func useQuadsSystems(app *App) {
	app.UseStage(QuadsSync, AfterStage(PreRender))
	app.UseSystem(
		System(prepareQuadsSystem).
			InStage(QuadsSync),
	)
	app.UseSystem(
		System(renderQuadsSystem).
			InStage(Render),
	)
}

func newQuadRenderer(device gpu.Device, pipeline *gpu.QuadsPipeline, maxBufferSize uint64) *gpu.QuadRenderer {
	r := gpu.NewQuadRenderer(device, pipeline)
	if maxBufferSize > 0 {
		r.Instances.MaxBufferSize = maxBufferSize
	}
	return r
}

func clearColor(c color.Color) wgpu.Color {
	if c == nil {
		c = colornames.Black
	}
	lin := core.LinearColor(c)
	return wgpu.Color{R: float64(lin[0]), G: float64(lin[1]), B: float64(lin[2]), A: float64(lin[3])}
}

func (s *quadsRenderState) Release() {
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
	s.renderer.Release()
	s.pipeline.Release()
}

func prepareQuadsSystem(state *quadsRenderState, store *core.QuadStore, report *QuadsFrameReport, cmd *Commands) {
	prof, profiling := OptionalResource[rtapp.Profiler](cmd)
	if profiling {
		prof.BeginScope("QuadsPrepare")
		defer prof.EndScope("QuadsPrepare")
	}
	prepareQuads(state.renderer, store, report, cmd.Logger())
}

// prepareQuads runs the resync hook and records its outcome in report.
func prepareQuads(r *gpu.QuadRenderer, store *core.QuadStore, report *QuadsFrameReport, log Logger) {
	report.Frame++
	report.Views = 0
	report.Draws = 0

	stats, err := r.Prepare(store)
	report.Err = err
	report.Prepare = stats
	report.Quads = r.Instances.InstanceCount()
	report.Allocations = r.Instances.Allocations()
	report.BindingBuilds = r.Instances.BindingBuilds()

	if err != nil {
		log.Errorf("Quads resync failed, skipping frame %d: %v", report.Frame, err)
		return
	}
	if stats.Synced {
		log.Debugf("Quads resynced: %d quads, %d bytes, binding rebuilt: %v", stats.Quads, stats.Bytes, stats.BindingRebuilt)
	}
}

// frameViews returns the main camera followed by any extra views.
func frameViews(main *core.CameraState, extra *QuadViews) []*core.CameraState {
	cams := []*core.CameraState{main}
	if extra != nil {
		for _, c := range extra.Cameras {
			if c != nil {
				cams = append(cams, c)
			}
		}
	}
	return cams
}

// encodeQuadViews uploads the view uniforms of cams and records one quads
// draw per view into pass.
func encodeQuadViews(r *gpu.QuadRenderer, pass gpu.RenderPass, cams []*core.CameraState, width, height uint32, report *QuadsFrameReport) error {
	uniforms := make([]core.ViewUniform, len(cams))
	for i, cam := range cams {
		uniforms[i] = cam.BuildViewUniform(width, height)
	}
	offsets, err := r.BeginFrame(uniforms)
	if err != nil {
		return err
	}
	report.Views = len(cams)

	for i, cam := range cams {
		view := gpu.ViewPhase{ViewOffset: offsets[i], Viewport: cam.Viewport.Resolve(width, height)}
		drawn, err := r.EncodeView(pass, view)
		if err != nil {
			return err
		}
		if drawn {
			report.Draws++
		}
	}
	return nil
}

func renderQuadsSystem(state *quadsRenderState, gpuState *GpuState, cam *core.CameraState, report *QuadsFrameReport, cmd *Commands) {
	if report.Err != nil {
		return
	}
	prof, profiling := OptionalResource[rtapp.Profiler](cmd)
	if profiling {
		prof.BeginScope("QuadsRender")
		defer prof.EndScope("QuadsRender")
	}
	extra, _ := OptionalResource[QuadViews](cmd)

	if err := state.renderFrame(gpuState, frameViews(cam, extra), report); err != nil {
		report.Err = err
		cmd.Logger().Errorf("Quads frame %d failed: %v", report.Frame, err)
	}
}

func (s *quadsRenderState) ensureTarget(gpuState *GpuState) error {
	width, height := gpuState.Size()
	if s.target.matches(width, height) {
		return nil
	}
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
	target, err := createRenderTarget(gpuState.device, gpuState.Format(), gpu.QuadsDepthFormat, width, height, s.sampleCount)
	if err != nil {
		return err
	}
	s.target = target
	return nil
}

func (s *quadsRenderState) renderFrame(gpuState *GpuState, cams []*core.CameraState, report *QuadsFrameReport) error {
	if err := s.ensureTarget(gpuState); err != nil {
		return err
	}

	nextTexture, err := gpuState.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	colorAttachment := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: s.clear,
	}
	if s.target.msaaView != nil {
		colorAttachment.View = s.target.msaaView
		colorAttachment.ResolveTarget = view
		colorAttachment.StoreOp = wgpu.StoreOpDiscard
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "QuadsPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            s.target.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 0,
		},
	})

	width, height := gpuState.Size()
	encodeErr := encodeQuadViews(s.renderer, gpu.WrapRenderPass(pass), cams, width, height, report)
	if err := pass.End(); err != nil {
		return fmt.Errorf("quads pass end: %w", err)
	}
	pass.Release()
	if encodeErr != nil {
		return encodeErr
	}

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmdBuf.Release()

	gpuState.queue.Submit(cmdBuf)
	gpuState.surface.Present()
	return nil
}
