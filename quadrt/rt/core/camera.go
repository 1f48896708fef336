package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraState is a Y-up perspective camera driven by yaw/pitch (radians).
type CameraState struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	FovY        float32
	Near        float32
	Speed       float32
	Sensitivity float32
	// Viewport in pixels; a zero size means the whole render target.
	Viewport Viewport
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
}

func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Resolve returns v, or the whole target when v is empty.
func (v Viewport) Resolve(targetWidth, targetHeight uint32) Viewport {
	if v.Empty() {
		return Viewport{Width: float32(targetWidth), Height: float32(targetHeight)}
	}
	return v
}

func NewCameraState() *CameraState {
	return &CameraState{
		Position:    mgl32.Vec3{0, 0, 50},
		FovY:        mgl32.DegToRad(45),
		Near:        0.1,
		Speed:       10.0,
		Sensitivity: 0.003,
	}
}

// LookAt points the camera at target by setting yaw and pitch.
func (c *CameraState) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() < 1e-6 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = float32(math.Asin(float64(dir.Y())))
	c.Yaw = float32(math.Atan2(float64(dir.X()), float64(-dir.Z())))
}

func (c *CameraState) GetForward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Sin(float64(c.Yaw)) * math.Cos(float64(c.Pitch))),
		float32(math.Sin(float64(c.Pitch))),
		float32(-math.Cos(float64(c.Yaw)) * math.Cos(float64(c.Pitch))),
	}
}

func (c *CameraState) GetRight() mgl32.Vec3 {
	return c.GetForward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *CameraState) GetViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.GetForward()), mgl32.Vec3{0, 1, 0})
}

// GetProjectionMatrix returns an infinite reversed-Z perspective projection
// mapping the near plane to depth 1 and infinity to depth 0.
func (c *CameraState) GetProjectionMatrix(aspect float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(c.FovY)/2))
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, 0, -1,
		0, 0, c.Near, 0,
	}
}

// ViewUniform mirrors the WGSL View struct (224 bytes).
type ViewUniform struct {
	ViewProj      mgl32.Mat4
	InverseView   mgl32.Mat4
	Projection    mgl32.Mat4
	WorldPosition mgl32.Vec4
	// x, y, width, height in pixels
	Viewport mgl32.Vec4
}

// BuildViewUniform computes the per-frame uniform for a render target of the
// given size, honouring the camera viewport when one is set.
func (c *CameraState) BuildViewUniform(targetWidth, targetHeight uint32) ViewUniform {
	vp := c.Viewport.Resolve(targetWidth, targetHeight)
	aspect := float32(1)
	if vp.Height > 0 {
		aspect = vp.Width / vp.Height
	}
	view := c.GetViewMatrix()
	proj := c.GetProjectionMatrix(aspect)
	return ViewUniform{
		ViewProj:      proj.Mul4(view),
		InverseView:   view.Inv(),
		Projection:    proj,
		WorldPosition: c.Position.Vec4(1),
		Viewport:      mgl32.Vec4{vp.X, vp.Y, vp.Width, vp.Height},
	}
}
