package quads

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyW int = iota
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeySpace
	KeyControl
	KeyShift
	KeyTab
	KeyEscape
	KeyF3
	MouseButtonLeft
	MouseButtonRight
	keyCount
)

type InputModule struct{}

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
}

// setKey records the state of key for this frame.
func (input *Input) setKey(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// moveMouse updates the cursor position. Deltas are only reported while the
// cursor is captured.
func (input *Input) moveMouse(x, y float64) {
	if input.MouseCaptured {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.MouseX = x
	input.MouseY = y
}

func inputSystem(s *WindowState, input *Input, cmd *Commands) {
	for key, glfwKey := range keyToGlfw {
		input.setKey(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	input.setKey(MouseButtonLeft, s.windowGlfw.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)
	input.setKey(MouseButtonRight, s.windowGlfw.GetMouseButton(glfw.MouseButtonRight) == glfw.Press)

	wasCaptured := input.MouseCaptured
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}
	if input.JustPressed[KeyEscape] {
		if input.MouseCaptured {
			input.MouseCaptured = false
		} else {
			cmd.Exit()
		}
	}

	if wasCaptured != input.MouseCaptured {
		if input.MouseCaptured {
			s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		} else {
			s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
		// skip the jump from the first position after a mode switch
		input.MouseX, input.MouseY = s.windowGlfw.GetCursorPos()
	}
	input.moveMouse(s.windowGlfw.GetCursorPos())
}

var keyToGlfw = map[int]glfw.Key{
	KeyW:       glfw.KeyW,
	KeyA:       glfw.KeyA,
	KeyS:       glfw.KeyS,
	KeyD:       glfw.KeyD,
	KeyQ:       glfw.KeyQ,
	KeyE:       glfw.KeyE,
	KeySpace:   glfw.KeySpace,
	KeyControl: glfw.KeyLeftControl,
	KeyShift:   glfw.KeyLeftShift,
	KeyTab:     glfw.KeyTab,
	KeyEscape:  glfw.KeyEscape,
	KeyF3:      glfw.KeyF3,
}
