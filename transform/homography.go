// Package transform holds the planar homography math linking the camera and
// projector image planes, plus the contract for the downstream mesh-based
// refinement that turns correspondence lists into remap tables.
package transform

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 projective transform mapping camera plane points to
// projector plane points.
type Homography struct {
	matrix *mat.Dense
}

// NewHomography creates a homography from 9 row-major values.
func NewHomography(vals []float64) (*Homography, error) {
	if len(vals) != 9 {
		return nil, errors.Errorf("input to NewHomography must have length of 9. Has length of %d", len(vals))
	}
	m := mat.NewDense(3, 3, vals)
	if mat.Det(m) == 0 {
		return nil, errors.New("homography matrix is not invertible")
	}
	return &Homography{m}, nil
}

// NewIdentityHomography returns the identity transform, a reasonable initial
// guess when the camera roughly faces the projection straight on.
func NewIdentityHomography() *Homography {
	return &Homography{mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
}

// At returns the entry at the given row and column.
func (h *Homography) At(row, col int) float64 {
	return h.matrix.At(row, col)
}

// Apply maps a point through the homography, dividing out the projective
// scale.
func (h *Homography) Apply(pt r2.Point) r2.Point {
	x := h.At(0, 0)*pt.X + h.At(0, 1)*pt.Y + h.At(0, 2)
	y := h.At(1, 0)*pt.X + h.At(1, 1)*pt.Y + h.At(1, 2)
	z := h.At(2, 0)*pt.X + h.At(2, 1)*pt.Y + h.At(2, 2)
	return r2.Point{X: x / z, Y: y / z}
}

// Inverse returns the homography mapping in the opposite direction.
func (h *Homography) Inverse() (*Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.matrix); err != nil {
		return nil, errors.Wrap(err, "cannot invert homography")
	}
	return &Homography{&inv}, nil
}

// EstimateLeastSquaresHomography fits a homography to matched camera and
// projector points with the normalized direct linear transform, solved by
// SVD. At least 4 pairs are required; with more the solution minimizes
// algebraic error. Useful for producing the initial guess handed to a Refiner.
func EstimateLeastSquaresHomography(camera, projector []image.Point) (*Homography, error) {
	if len(camera) != len(projector) {
		return nil, errors.Errorf("point lists must have the same length, got %d and %d", len(camera), len(projector))
	}
	if len(camera) < 4 {
		return nil, errors.Errorf("need at least 4 point pairs to estimate a homography, got %d", len(camera))
	}

	src, srcNorm := normalizePoints(camera)
	dst, dstNorm := normalizePoints(projector)

	a := mat.NewDense(2*len(src), 9, nil)
	for i := range src {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, u * x, u * y, u})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, errors.New("svd of the correspondence system failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	// the null space estimate is the right singular vector of the smallest
	// singular value
	h := mat.NewDense(3, 3, nil)
	for i := 0; i < 9; i++ {
		h.Set(i/3, i%3, v.At(i, 8))
	}

	// undo the normalization: H = Tdst^-1 * Hn * Tsrc
	var dstInv mat.Dense
	if err := dstInv.Inverse(dstNorm); err != nil {
		return nil, errors.Wrap(err, "degenerate projector point configuration")
	}
	var full mat.Dense
	full.Mul(&dstInv, h)
	full.Mul(&full, srcNorm)

	scale := full.At(2, 2)
	if scale == 0 {
		return nil, errors.New("estimated homography is degenerate")
	}
	full.Scale(1/scale, &full)
	return &Homography{&full}, nil
}

// normalizePoints translates points to their centroid and scales them to an
// average distance of sqrt(2) from it, returning the transformed points and
// the similarity matrix that was applied.
func normalizePoints(pts []image.Point) ([]r2.Point, *mat.Dense) {
	var cx, cy float64
	for _, p := range pts {
		cx += float64(p.X)
		cy += float64(p.Y)
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var meanDist float64
	for _, p := range pts {
		dx, dy := float64(p.X)-cx, float64(p.Y)-cy
		meanDist += math.Hypot(dx, dy)
	}
	meanDist /= float64(len(pts))

	scale := 1.0
	if meanDist > 0 {
		scale = math.Sqrt2 / meanDist
	}
	norm := mat.NewDense(3, 3, []float64{
		scale, 0, -scale * cx,
		0, scale, -scale * cy,
		0, 0, 1,
	})
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = r2.Point{
			X: scale * (float64(p.X) - cx),
			Y: scale * (float64(p.Y) - cy),
		}
	}
	return out, norm
}
