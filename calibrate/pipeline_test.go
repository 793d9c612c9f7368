package calibrate

import (
	"context"
	"image"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/structuredlight/graycode"
	"go.viam.com/structuredlight/transform"
)

// recordingRefiner captures its inputs and returns empty remap tables,
// standing in for the mesh refinement collaborator.
type recordingRefiner struct {
	camera, projector []image.Point
	projSize          image.Point
	initial           *transform.Homography
	iterations        int
	distLimit         int
	err               error
}

func (r *recordingRefiner) Refine(
	ctx context.Context,
	camera, projector []image.Point,
	projSize image.Point,
	initial *transform.Homography,
	iterations, distLimit int,
) (*transform.RemapTables, error) {
	r.camera, r.projector = camera, projector
	r.projSize = projSize
	r.initial = initial
	r.iterations, r.distLimit = iterations, distLimit
	if r.err != nil {
		return nil, r.err
	}
	return transform.NewRemapTables(projSize), nil
}

// sessionFrames renders a perfect capture session where the camera sees the
// projection pixel for pixel.
func sessionFrames(t *testing.T, projSize image.Point) []image.Image {
	t.Helper()
	grays, err := graycode.PatternFrames(projSize)
	test.That(t, err, test.ShouldBeNil)
	frames := make([]image.Image, len(grays))
	for i, g := range grays {
		frames[i] = g
	}
	return frames
}

func TestPipelineProcess(t *testing.T) {
	logger := golog.NewTestLogger(t)
	projSize := image.Point{16, 16}
	refiner := &recordingRefiner{}
	pipeline := NewPipeline(refiner, logger, WithMinPoints(200))

	tables, err := pipeline.Process(context.Background(), sessionFrames(t, projSize), projSize, nil, 5, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tables, test.ShouldNotBeNil)

	test.That(t, refiner.camera, test.ShouldHaveLength, 256)
	test.That(t, refiner.projector, test.ShouldHaveLength, len(refiner.camera))
	for i := range refiner.camera {
		test.That(t, refiner.projector[i], test.ShouldResemble, refiner.camera[i])
	}
	test.That(t, refiner.projSize, test.ShouldResemble, projSize)
	test.That(t, refiner.iterations, test.ShouldEqual, 5)
	test.That(t, refiner.distLimit, test.ShouldEqual, 3)
	// nil initial guess becomes the identity
	test.That(t, refiner.initial, test.ShouldNotBeNil)
	test.That(t, refiner.initial.At(0, 0), test.ShouldEqual, 1)
	test.That(t, refiner.initial.At(0, 1), test.ShouldEqual, 0)

	rows, cols := tables.X.Dims()
	test.That(t, rows, test.ShouldEqual, projSize.Y)
	test.That(t, cols, test.ShouldEqual, projSize.X)
}

func TestPipelineTooFewFrames(t *testing.T) {
	logger := golog.NewTestLogger(t)
	pipeline := NewPipeline(&recordingRefiner{}, logger)

	_, err := pipeline.Process(context.Background(), nil, image.Point{16, 16}, nil, 1, 1)
	test.That(t, errors.Is(err, graycode.ErrInvalidInput), test.ShouldBeTrue)

	white := image.NewGray(image.Rect(0, 0, 8, 8))
	_, err = pipeline.Process(context.Background(), []image.Image{white}, image.Point{16, 16}, nil, 1, 1)
	test.That(t, errors.Is(err, graycode.ErrInvalidInput), test.ShouldBeTrue)
}

func TestPipelineInsufficientPoints(t *testing.T) {
	logger := golog.NewTestLogger(t)
	projSize := image.Point{16, 16}
	pipeline := NewPipeline(&recordingRefiner{}, logger, WithMinPoints(1000))

	_, err := pipeline.Process(context.Background(), sessionFrames(t, projSize), projSize, nil, 1, 1)
	test.That(t, errors.Is(err, graycode.ErrInsufficientCorrespondence), test.ShouldBeTrue)
}

func TestPipelineRefinerError(t *testing.T) {
	logger := golog.NewTestLogger(t)
	projSize := image.Point{16, 16}
	refiner := &recordingRefiner{err: errors.New("mesh diverged")}
	pipeline := NewPipeline(refiner, logger, WithMinPoints(10))

	_, err := pipeline.Process(context.Background(), sessionFrames(t, projSize), projSize, nil, 1, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mesh diverged")
}
