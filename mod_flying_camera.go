package quads

import (
	"github.com/gekko3d/quads/quadrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// FlyingCameraModule installs the CameraState resource and drives it from Input.
type FlyingCameraModule struct {
	Position    mgl32.Vec3
	LookAt      mgl32.Vec3
	Speed       float32
	Sensitivity float32
}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	cam := core.NewCameraState()
	if m.Position != (mgl32.Vec3{}) {
		cam.Position = m.Position
	}
	if m.Speed > 0 {
		cam.Speed = m.Speed
	}
	if m.Sensitivity > 0 {
		cam.Sensitivity = m.Sensitivity
	}
	cam.LookAt(m.LookAt)
	cmd.AddResources(cam)

	app.UseSystem(
		System(flyingCameraSystem).
			InStage(Update),
	)
}

const maxPitch = 1.55

func flyingCameraSystem(input *Input, time *Time, cam *core.CameraState) {
	steerCamera(cam, input, time.DtSeconds())
}

func steerCamera(cam *core.CameraState, input *Input, dt float32) {
	if input.MouseCaptured {
		cam.Yaw += float32(input.MouseDeltaX) * cam.Sensitivity
		cam.Pitch -= float32(input.MouseDeltaY) * cam.Sensitivity
		cam.Pitch = mgl32.Clamp(cam.Pitch, -maxPitch, maxPitch)
	}
	if dt <= 0 {
		return
	}

	forward := cam.GetForward()
	right := cam.GetRight()
	up := mgl32.Vec3{0, 1, 0}

	move := mgl32.Vec3{}
	if input.Pressed[KeyW] {
		move = move.Add(forward)
	}
	if input.Pressed[KeyS] {
		move = move.Sub(forward)
	}
	if input.Pressed[KeyD] {
		move = move.Add(right)
	}
	if input.Pressed[KeyA] {
		move = move.Sub(right)
	}
	if input.Pressed[KeySpace] {
		move = move.Add(up)
	}
	if input.Pressed[KeyControl] {
		move = move.Sub(up)
	}
	if move.Len() == 0 {
		return
	}

	speed := cam.Speed
	if input.Pressed[KeyShift] {
		speed *= 4
	}
	cam.Position = cam.Position.Add(move.Normalize().Mul(speed * dt))
}
