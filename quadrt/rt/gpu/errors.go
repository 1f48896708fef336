package gpu

import "errors"

var (
	// ErrAllocation reports a GPU buffer that could not be created or filled,
	// including requests larger than the storage binding limit. The frame
	// that hit it must not draw.
	ErrAllocation = errors.New("gpu: buffer allocation failed")

	// ErrNoInstanceBuffer is returned when the quads binding is requested
	// while no instance buffer exists.
	ErrNoInstanceBuffer = errors.New("gpu: no instance buffer")
)
