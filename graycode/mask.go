package graycode

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"go.viam.com/structuredlight/utils"
)

// Mask marks which camera pixels receive projector light. Pixels outside the
// mask never contribute correspondence pairs.
type Mask struct {
	width, height int
	data          []bool
}

// NewMask returns an all-false mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, data: make([]bool, width*height)}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the mask height in pixels.
func (m *Mask) Height() int {
	return m.height
}

func (m *Mask) kxy(x, y int) int {
	return (y * m.width) + x
}

// Get reports whether the pixel at (x, y) is illuminated.
func (m *Mask) Get(x, y int) bool {
	return m.data[m.kxy(x, y)]
}

// Set marks the pixel at (x, y).
func (m *Mask) Set(x, y int, illuminated bool) {
	m.data[m.kxy(x, y)] = illuminated
}

// Count returns the number of illuminated pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// MaskOptions controls how BuildMask binarizes the white/black difference.
type MaskOptions struct {
	// Adaptive selects the threshold automatically from the difference
	// histogram (Otsu) after a light Gaussian blur. When false, Threshold
	// is used directly.
	Adaptive  bool
	Threshold uint8
	// BlurSigma is the Gaussian sigma used in adaptive mode; zero means
	// DefaultBlurSigma.
	BlurSigma float64
}

// DefaultBlurSigma matches a 5x5 Gaussian kernel.
const DefaultBlurSigma = 1.1

// DefaultMaskOptions is the adaptive configuration used by the calibration
// pipeline.
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{Adaptive: true}
}

// BuildMask derives the illuminated-pixel mask from a fully lit capture and an
// unlit capture of the same scene. Both frames are grayscale-converted and
// subtracted (clamped at zero) before binarization.
func BuildMask(white, black image.Image, opts MaskOptions) (*Mask, error) {
	wb, bb := white.Bounds(), black.Bounds()
	if wb.Dx() != bb.Dx() || wb.Dy() != bb.Dy() {
		return nil, errors.Wrapf(ErrInvalidInput,
			"white frame (%dx%d) and black frame (%dx%d) dimensions differ",
			wb.Dx(), wb.Dy(), bb.Dx(), bb.Dy())
	}

	whiteGray := Grayscale(white)
	blackGray := Grayscale(black)
	width, height := wb.Dx(), wb.Dy()

	diff := image.NewGray(image.Rect(0, 0, width, height))
	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		w := whiteGray.GrayAt(x, y).Y
		b := blackGray.GrayAt(x, y).Y
		if w > b {
			diff.Pix[diff.PixOffset(x, y)] = w - b
		}
	})

	threshold := opts.Threshold
	if opts.Adaptive {
		sigma := opts.BlurSigma
		if sigma <= 0 {
			sigma = DefaultBlurSigma
		}
		diff = Grayscale(imaging.Blur(diff, sigma))
		threshold = otsuThreshold(diff)
	}

	mask := NewMask(width, height)
	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		if diff.Pix[diff.PixOffset(x, y)] > threshold {
			mask.Set(x, y, true)
		}
	})
	return mask, nil
}

// otsuThreshold picks the intensity cut maximizing between-class variance of
// the image histogram.
func otsuThreshold(img *image.Gray) uint8 {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB float64
	var wB int
	var maxVariance float64
	var best uint8
	for i, c := range hist {
		wB += c
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(c)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			best = uint8(i)
		}
	}
	return best
}
