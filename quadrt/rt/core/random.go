package core

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// RandomQuad places a quad uniformly inside the [min, max) box.
func RandomQuad(rng *rand.Rand, min, max, halfExtents mgl32.Vec3, billboard Billboard, color [4]float32) Quad {
	return Quad{
		Color:       color,
		Center:      randomPoint(rng, min, max),
		HalfExtents: halfExtents,
		Billboard:   billboard,
	}
}

// RandomQuads generates n quads, cycling through palette for their colors.
// An empty palette yields white quads.
func RandomQuads(rng *rand.Rand, n int, min, max, halfExtents mgl32.Vec3, billboard Billboard, palette [][4]float32) []Quad {
	quads := make([]Quad, 0, n)
	for i := 0; i < n; i++ {
		c := White
		if len(palette) > 0 {
			c = palette[i%len(palette)]
		}
		quads = append(quads, RandomQuad(rng, min, max, halfExtents, billboard, c))
	}
	return quads
}

func randomPoint(rng *rand.Rand, min, max mgl32.Vec3) mgl32.Vec3 {
	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		p[i] = min[i] + rng.Float32()*(max[i]-min[i])
	}
	return p
}
