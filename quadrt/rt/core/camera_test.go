package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraDefaultLooksAtOrigin(t *testing.T) {
	c := NewCameraState()
	fwd := c.GetForward()
	assert.InDelta(t, 0, fwd.X(), 1e-6)
	assert.InDelta(t, 0, fwd.Y(), 1e-6)
	assert.InDelta(t, -1, fwd.Z(), 1e-6)

	right := c.GetRight()
	assert.InDelta(t, 1, right.X(), 1e-6)
}

func TestCameraLookAt(t *testing.T) {
	c := NewCameraState()
	c.Position = mgl32.Vec3{10, 10, 10}
	c.LookAt(mgl32.Vec3{})

	want := mgl32.Vec3{-1, -1, -1}.Normalize()
	got := c.GetForward()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5)
	}
}

func TestProjectionIsReversedZ(t *testing.T) {
	c := NewCameraState()
	proj := c.GetProjectionMatrix(16.0 / 9.0)

	depth := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return clip.Z() / clip.W()
	}

	assert.InDelta(t, 1.0, depth(-c.Near), 1e-5, "near plane maps to 1")
	assert.Greater(t, depth(-1), depth(-100), "closer points have greater depth")
	assert.InDelta(t, 0.0, depth(-1e7), 1e-6)
}

func TestBuildViewUniformUsesViewport(t *testing.T) {
	c := NewCameraState()
	u := c.BuildViewUniform(1920, 1080)
	assert.Equal(t, mgl32.Vec4{0, 0, 1920, 1080}, u.Viewport)
	assert.Equal(t, mgl32.Vec4{0, 0, 50, 1}, u.WorldPosition)

	// the origin sits in the middle of the screen
	clip := u.ViewProj.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)

	// inverse view carries the camera basis and position
	assert.InDelta(t, 50, u.InverseView.At(2, 3), 1e-4)

	c.Viewport = Viewport{X: 10, Y: 20, Width: 400, Height: 300}
	u = c.BuildViewUniform(1920, 1080)
	assert.Equal(t, mgl32.Vec4{10, 20, 400, 300}, u.Viewport)
}

func TestViewportResolve(t *testing.T) {
	assert.Equal(t, Viewport{Width: 800, Height: 600}, Viewport{}.Resolve(800, 600))
	assert.Equal(t, Viewport{Width: 800, Height: 600}, Viewport{X: 5, Width: 100}.Resolve(800, 600))

	vp := Viewport{X: 10, Y: 20, Width: 400, Height: 300}
	assert.Equal(t, vp, vp.Resolve(800, 600))
}
