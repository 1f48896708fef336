package shaders

import (
	_ "embed"
)

//go:embed quads.wgsl
var QuadsWGSL string
