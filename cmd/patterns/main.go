// Package main is a command that renders the Gray-code pattern sequence a
// projector must display during a calibration capture session.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"

	"go.viam.com/structuredlight/graycode"
)

var logger = golog.NewDevelopmentLogger("patterns")

func main() {
	width := flag.Int("width", 1920, "projector width")
	height := flag.Int("height", 1080, "projector height")
	out := flag.String("out", ".", "output directory")
	flag.Parse()

	frames, err := graycode.PatternFrames(image.Point{*width, *height})
	if err != nil {
		logger.Fatal(err)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Fatal(err)
	}
	for i, frame := range frames {
		fn := filepath.Join(*out, fmt.Sprintf("pattern_%03d.png", i))
		if err := writePNG(fn, frame); err != nil {
			logger.Fatal(err)
		}
	}
	logger.Infow("pattern sequence written", "frames", len(frames), "dir", *out)
}

func writePNG(fn string, img image.Image) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
