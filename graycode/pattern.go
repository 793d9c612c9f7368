package graycode

import (
	"image"

	"github.com/pkg/errors"
)

// BitPlanePairCount returns the number of pattern/inverse frame pairs needed
// to encode coordinates in [0, extent), i.e. ceil(log2(extent)).
func BitPlanePairCount(extent int) int {
	n := 0
	for (1 << n) < extent {
		n++
	}
	return n
}

// grayEncode converts a binary value to its reflected Gray code.
func grayEncode(v uint16) uint16 {
	return v ^ (v >> 1)
}

// PatternFrames renders the full projector sequence for one calibration
// capture session: a white frame, a black frame, then the horizontal and
// vertical bit-plane pairs, most significant bit first. The frame order
// matches what DecodeCorrespondences expects back from the camera.
func PatternFrames(projSize image.Point) ([]*image.Gray, error) {
	if projSize.X < 2 || projSize.Y < 2 {
		return nil, errors.Wrapf(ErrInvalidInput, "projector size %dx%d too small to encode", projSize.X, projSize.Y)
	}
	hPairs := BitPlanePairCount(projSize.X)
	vPairs := BitPlanePairCount(projSize.Y)

	frames := make([]*image.Gray, 0, 2+2*hPairs+2*vPairs)
	frames = append(frames, uniformFrame(projSize, 255), uniformFrame(projSize, 0))

	for bit := hPairs - 1; bit >= 0; bit-- {
		pattern := image.NewGray(image.Rect(0, 0, projSize.X, projSize.Y))
		inverse := image.NewGray(image.Rect(0, 0, projSize.X, projSize.Y))
		for x := 0; x < projSize.X; x++ {
			on := grayEncode(uint16(x))>>uint(bit)&1 == 1
			for y := 0; y < projSize.Y; y++ {
				setBitPixel(pattern, inverse, x, y, on)
			}
		}
		frames = append(frames, pattern, inverse)
	}
	for bit := vPairs - 1; bit >= 0; bit-- {
		pattern := image.NewGray(image.Rect(0, 0, projSize.X, projSize.Y))
		inverse := image.NewGray(image.Rect(0, 0, projSize.X, projSize.Y))
		for y := 0; y < projSize.Y; y++ {
			on := grayEncode(uint16(y))>>uint(bit)&1 == 1
			for x := 0; x < projSize.X; x++ {
				setBitPixel(pattern, inverse, x, y, on)
			}
		}
		frames = append(frames, pattern, inverse)
	}
	return frames, nil
}

func setBitPixel(pattern, inverse *image.Gray, x, y int, on bool) {
	if on {
		pattern.Pix[pattern.PixOffset(x, y)] = 255
	} else {
		inverse.Pix[inverse.PixOffset(x, y)] = 255
	}
}

func uniformFrame(size image.Point, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size.X, size.Y))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}
