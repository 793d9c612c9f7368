// Package graycode extracts dense camera-to-projector pixel correspondences
// from Gray-code structured-light capture sequences.
//
// A capture session projects a white/black frame pair followed by a series of
// bit-plane pairs (a pattern and its photometric inverse), first encoding the
// projector's horizontal coordinate, then the vertical one. BuildMask derives
// the illuminated region from the white/black pair and DecodeCorrespondences
// turns the bit-plane pairs into matched (camera, projector) point lists.
package graycode

import (
	"image"
	"image/draw"
)

// Grayscale converts any image to a single-channel grayscale image with its
// origin at (0, 0).
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == image.Pt(0, 0) {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
