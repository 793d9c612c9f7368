package graycode

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/structuredlight/utils"
)

// ErrorLevel grades how trustworthy a pixel's decoded projector coordinate is.
// Zero means every bit plane decoded cleanly. A nonzero level is the weight of
// the most significant bit plane whose signal fell inside the noise band;
// ambiguity at a more significant bit causes a larger positional displacement,
// so higher levels are worse.
type ErrorLevel uint8

// ErrorLevelUnreliable is the overflow bucket. Ambiguity at a bit plane of
// weight four or higher, or a pixel outside the illumination mask, makes a
// pixel unusable for calibration.
const ErrorLevelUnreliable ErrorLevel = 4

// bitPlaneWeight grades a bit plane by significance: the most significant
// plane of an axis with n pairs has weight n, the least significant weight 1.
// Weights beyond the tracked range clamp to the unreliable bucket.
func bitPlaneWeight(pairsRemaining int) ErrorLevel {
	if pairsRemaining >= int(ErrorLevelUnreliable) {
		return ErrorLevelUnreliable
	}
	return ErrorLevel(pairsRemaining)
}

// DecodeCorrespondences decodes an ordered structured-light frame sequence
// into matched camera and projector point lists. frames holds the horizontal
// bit-plane pairs followed by the vertical ones; the horizontal prefix length
// is derived from projSize. Each pair is (pattern, inverse). noise is the
// half-width of the signed-difference band treated as ambiguous.
//
// The returned slices are parallel, ordered by row-major camera scan. If no
// error tolerance level yields minPoints pairs, ErrInsufficientCorrespondence
// is returned and no points are produced.
func DecodeCorrespondences(
	frames []*image.Gray,
	projSize image.Point,
	mask *Mask,
	minPoints int,
	noise int,
) ([]image.Point, []image.Point, error) {
	if err := validateSequence(frames, projSize, mask); err != nil {
		return nil, nil, err
	}
	width := frames[0].Bounds().Dx()
	height := frames[0].Bounds().Dy()
	hPairs := BitPlanePairCount(projSize.X)

	// One slot per camera pixel, row-major, scoped to this call.
	xCode := make([]uint16, width*height)
	yCode := make([]uint16, width*height)
	errLevel := make([]ErrorLevel, width*height)
	toggle := make([]bool, width*height)

	// Unlit pixels can never be trusted, whatever their planes decode to.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask.Get(x, y) {
				errLevel[y*width+x] = ErrorLevelUnreliable
			}
		}
	}

	decodeAxis(frames[:2*hPairs], xCode, errLevel, toggle, mask, width, noise)
	// the parity chain restarts on the second axis; codes and error levels
	// carry over
	for i := range toggle {
		toggle[i] = false
	}
	decodeAxis(frames[2*hPairs:], yCode, errLevel, toggle, mask, width, noise)

	tolerance, reliable, ok := selectTolerance(errLevel, minPoints)
	if !ok {
		return nil, nil, errors.Wrapf(ErrInsufficientCorrespondence,
			"%d points required, best tolerance yields %d", minPoints, reliable)
	}
	camera, projector := collectPairs(xCode, yCode, errLevel, width, height, projSize, tolerance, reliable)
	return camera, projector, nil
}

// decodeAxis folds an ordered run of bit-plane pairs into code, most
// significant plane first: shift, then set the low bit from the running
// parity. toggle carries that parity, which converts the reflected Gray bit
// stream into a plain binary coordinate.
//
// Planes must be processed in order, but within a plane every pixel only
// touches its own slots, so the inner loop runs chunked across workers.
func decodeAxis(planes []*image.Gray, code []uint16, errLevel []ErrorLevel, toggle []bool, mask *Mask, width, noise int) {
	pairCount := len(planes) / 2
	for p := 0; p < pairCount; p++ {
		pattern, inverse := planes[2*p], planes[2*p+1]
		pMin, iMin := pattern.Bounds().Min, inverse.Bounds().Min
		weight := bitPlaneWeight(pairCount - p)
		utils.ParallelRanges(len(code), func(from, to int) {
			for pos := from; pos < to; pos++ {
				x, y := pos%width, pos/width
				if !mask.Get(x, y) {
					continue
				}
				diff := int(pattern.GrayAt(pMin.X+x, pMin.Y+y).Y) -
					int(inverse.GrayAt(iMin.X+x, iMin.Y+y).Y)
				code[pos] <<= 1
				toggle[pos] = toggle[pos] != (diff >= 0)
				if diff > -noise && diff < noise && weight > errLevel[pos] {
					errLevel[pos] = weight
				}
				if toggle[pos] {
					code[pos]++
				}
			}
		})
	}
}

func validateSequence(frames []*image.Gray, projSize image.Point, mask *Mask) error {
	var issues error
	if projSize.X < 2 || projSize.Y < 2 {
		issues = multierr.Append(issues, errors.Errorf("projector size %dx%d too small to encode", projSize.X, projSize.Y))
	}
	if len(frames) == 0 {
		issues = multierr.Append(issues, errors.New("frame sequence is empty"))
		return multierr.Append(ErrInvalidInput, issues)
	}
	if len(frames)%2 != 0 {
		issues = multierr.Append(issues, errors.Errorf("bit planes come in pattern/inverse pairs, got %d frames", len(frames)))
	}
	hPairs := BitPlanePairCount(projSize.X)
	if len(frames) < 2*hPairs+2 {
		issues = multierr.Append(issues, errors.Errorf(
			"a %d-wide projector needs %d horizontal frames plus at least one vertical pair, got %d frames",
			projSize.X, 2*hPairs, len(frames)))
	}
	width := frames[0].Bounds().Dx()
	height := frames[0].Bounds().Dy()
	for i, f := range frames[1:] {
		if f.Bounds().Dx() != width || f.Bounds().Dy() != height {
			issues = multierr.Append(issues, errors.Errorf(
				"frame %d is %dx%d, want %dx%d", i+1, f.Bounds().Dx(), f.Bounds().Dy(), width, height))
			break
		}
	}
	if mask == nil {
		issues = multierr.Append(issues, errors.New("mask is nil"))
	} else if mask.Width() != width || mask.Height() != height {
		issues = multierr.Append(issues, errors.Errorf(
			"mask is %dx%d, frames are %dx%d", mask.Width(), mask.Height(), width, height))
	}
	if issues != nil {
		return multierr.Append(ErrInvalidInput, issues)
	}
	return nil
}
