package quads

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ClientModule opens the window and the GPU device shared by every other
// module. Install it first.
type ClientModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
}

func (mod ClientModule) Install(app *App, cmd *Commands) {
	width, height, title := mod.WindowWidth, mod.WindowHeight, mod.WindowTitle
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Quads"
	}

	ws := createWindowState(width, height, title)
	gs := createGpuState(ws)
	cmd.AddResources(ws, gs)
	app.OnExit(ws.Release)
	app.OnExit(gs.Release)

	app.Logger().Infof("Window %dx%d, surface format %v", width, height, gs.Format())

	app.UseSystem(
		System(windowEventsSystem).
			InStage(PreUpdate),
	)
}

func windowEventsSystem(state *WindowState, gpuState *GpuState, cmd *Commands) {
	glfw.PollEvents()
	if state.windowGlfw.ShouldClose() {
		cmd.Exit()
		return
	}

	state.WindowWidth, state.WindowHeight = state.windowGlfw.GetSize()
	if gpuState.Resize(state.FramebufferSize()) {
		w, h := gpuState.Size()
		cmd.Logger().Debugf("Surface resized to %dx%d", w, h)
	}
}
