package graycode

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func grayFrame(width, height int, fill func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[img.PixOffset(x, y)] = fill(x, y)
		}
	}
	return img
}

func TestBuildMaskDegenerate(t *testing.T) {
	// identical white and black captures mean zero difference everywhere
	frame := grayFrame(20, 20, func(x, y int) uint8 { return uint8(10 * x) })

	for _, opts := range []MaskOptions{
		{Adaptive: false, Threshold: 30},
		{Adaptive: true},
	} {
		mask, err := BuildMask(frame, frame, opts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mask.Count(), test.ShouldEqual, 0)
	}
}

func TestBuildMaskFixedThreshold(t *testing.T) {
	white := grayFrame(16, 16, func(x, y int) uint8 {
		if x < 8 {
			return 220
		}
		return 15
	})
	black := grayFrame(16, 16, func(x, y int) uint8 { return 5 })

	mask, err := BuildMask(white, black, MaskOptions{Adaptive: false, Threshold: 50})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mask.Count(), test.ShouldEqual, 8*16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			test.That(t, mask.Get(x, y), test.ShouldEqual, x < 8)
		}
	}
}

func TestBuildMaskAdaptive(t *testing.T) {
	// strongly bimodal difference: the lit left half must survive Otsu, the
	// dark right half must not; the blur only affects the boundary region
	white := grayFrame(40, 40, func(x, y int) uint8 {
		if x < 20 {
			return 200
		}
		return 12
	})
	black := grayFrame(40, 40, func(x, y int) uint8 { return 4 })

	mask, err := BuildMask(white, black, DefaultMaskOptions())
	test.That(t, err, test.ShouldBeNil)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x >= 16 && x < 24 {
				continue // blurred boundary band may go either way
			}
			test.That(t, mask.Get(x, y), test.ShouldEqual, x < 20)
		}
	}
}

func TestBuildMaskColorInput(t *testing.T) {
	white := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	black := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			white.Set(x, y, color.NRGBA{R: 240, G: 230, B: 235, A: 255})
			black.Set(x, y, color.NRGBA{R: 10, G: 5, B: 8, A: 255})
		}
	}
	mask, err := BuildMask(white, black, MaskOptions{Adaptive: false, Threshold: 100})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mask.Count(), test.ShouldEqual, 100)
}

func TestBuildMaskDimensionMismatch(t *testing.T) {
	white := grayFrame(10, 10, func(x, y int) uint8 { return 255 })
	black := grayFrame(10, 12, func(x, y int) uint8 { return 0 })
	_, err := BuildMask(white, black, DefaultMaskOptions())
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

func TestGrayscale(t *testing.T) {
	// already-gray origin-anchored frames pass through untouched
	g := grayFrame(4, 4, func(x, y int) uint8 { return uint8(x + y) })
	test.That(t, Grayscale(g), test.ShouldEqual, g)

	// subimages get re-anchored at the origin
	sub, ok := g.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)
	test.That(t, ok, test.ShouldBeTrue)
	out := Grayscale(sub)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	test.That(t, out.GrayAt(0, 0).Y, test.ShouldEqual, g.GrayAt(1, 1).Y)
}
