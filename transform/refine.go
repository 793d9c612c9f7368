package transform

import (
	"context"
	"image"

	"gonum.org/v1/gonum/mat"
)

// RemapTables are the projector-resolution lookup tables a Refiner produces:
// entry (row, col) of X and Y gives the camera coordinate that lands on
// projector pixel (col, row).
type RemapTables struct {
	X, Y *mat.Dense
}

// NewRemapTables allocates zeroed tables sized to the projector resolution.
func NewRemapTables(projSize image.Point) *RemapTables {
	return &RemapTables{
		X: mat.NewDense(projSize.Y, projSize.X, nil),
		Y: mat.NewDense(projSize.Y, projSize.X, nil),
	}
}

// Refiner is the downstream collaborator that turns matched correspondence
// lists into dense remap tables, typically by fitting a mesh seeded from the
// initial homography. camera and projector are equal-length and ordered;
// iterations bounds the refinement passes and distLimit the allowed
// point-to-mesh distance in projector pixels.
type Refiner interface {
	Refine(
		ctx context.Context,
		camera, projector []image.Point,
		projSize image.Point,
		initial *Homography,
		iterations, distLimit int,
	) (*RemapTables, error)
}
