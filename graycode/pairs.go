package graycode

import "image"

// collectPairs scans camera pixels in row-major order and emits every pixel
// whose decoded projector coordinate is inside the projector bounds and whose
// error level passes the tolerance. Decoded coordinates are unsigned, so only
// the upper bounds can reject.
func collectPairs(
	xCode, yCode []uint16,
	errLevel []ErrorLevel,
	width, height int,
	projSize image.Point,
	tolerance ErrorLevel,
	capacity int,
) ([]image.Point, []image.Point) {
	camera := make([]image.Point, 0, capacity)
	projector := make([]image.Point, 0, capacity)
	pos := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px, py := int(xCode[pos]), int(yCode[pos])
			if px < projSize.X && py < projSize.Y && errLevel[pos] <= tolerance {
				camera = append(camera, image.Point{x, y})
				projector = append(projector, image.Point{px, py})
			}
			pos++
		}
	}
	return camera, projector
}
