package core

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Billboard selects how the shader orients a quad at draw time.
type Billboard uint8

const (
	// BillboardNone keeps the quad axis-aligned in world space (XY plane).
	BillboardNone Billboard = iota
	// BillboardViewFacing always faces the camera, up taken from the view.
	BillboardViewFacing
	// BillboardWorldYFacing faces the camera but keeps world +Y as up.
	BillboardWorldYFacing
	// BillboardFixedScreenSize faces the camera and sizes the quad in screen pixels.
	BillboardFixedScreenSize
)

var billboardNames = [...]string{
	BillboardNone:            "none",
	BillboardViewFacing:      "view",
	BillboardWorldYFacing:    "worldy",
	BillboardFixedScreenSize: "fixed",
}

func (b Billboard) String() string {
	if int(b) < len(billboardNames) {
		return billboardNames[b]
	}
	return fmt.Sprintf("Billboard(%d)", uint8(b))
}

// Valid reports whether b is one of the four known variants.
func (b Billboard) Valid() bool {
	return b <= BillboardFixedScreenSize
}

func ParseBillboard(s string) (Billboard, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range billboardNames {
		if n == name {
			return Billboard(i), nil
		}
	}
	return BillboardNone, fmt.Errorf("unknown billboard mode %q (want none|view|worldy|fixed)", s)
}

// Quad is one billboard instance. HalfExtents are world units, except for
// BillboardFixedScreenSize where they are screen pixels.
type Quad struct {
	Color       [4]float32
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
	Billboard   Billboard
}

var White = [4]float32{1, 1, 1, 1}

// LinearColor converts an sRGB color.Color into linear RGBA in 0..1.
func LinearColor(c color.Color) [4]float32 {
	if c == nil {
		return [4]float32{}
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return [4]float32{}
	}
	const inv = 1.0 / 65535.0
	fa := float64(a) * inv
	// color.Color is alpha-premultiplied
	return [4]float32{
		float32(srgbToLinear(float64(r) * inv / fa)),
		float32(srgbToLinear(float64(g) * inv / fa)),
		float32(srgbToLinear(float64(b) * inv / fa)),
		float32(fa),
	}
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
