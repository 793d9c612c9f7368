// Package calibrate drives a full single-viewpoint projector-camera
// calibration pass: illumination mask, Gray-code decode, and hand-off of the
// correspondence lists to the mesh refinement collaborator.
package calibrate

import (
	"context"
	"image"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/structuredlight/graycode"
	"go.viam.com/structuredlight/transform"
)

// Default decode tuning, suitable for a dim room and a camera resolution in
// the low megapixels.
const (
	DefaultMinPoints      = 100
	DefaultNoiseThreshold = 10
)

// Pipeline composes the capture-to-remap-table calibration stages around a
// Refiner collaborator.
type Pipeline struct {
	refiner   transform.Refiner
	maskOpts  graycode.MaskOptions
	minPoints int
	noise     int
	logger    golog.Logger
}

// Option adjusts pipeline tuning.
type Option func(*Pipeline)

// WithMaskOptions overrides the illumination mask binarization settings.
func WithMaskOptions(opts graycode.MaskOptions) Option {
	return func(p *Pipeline) { p.maskOpts = opts }
}

// WithMinPoints overrides how many reliable pairs a decode must produce.
func WithMinPoints(n int) Option {
	return func(p *Pipeline) { p.minPoints = n }
}

// WithNoiseThreshold overrides the signed-difference band treated as
// ambiguous during decode.
func WithNoiseThreshold(n int) Option {
	return func(p *Pipeline) { p.noise = n }
}

// NewPipeline wires a calibration pipeline around the given refinement
// collaborator.
func NewPipeline(refiner transform.Refiner, logger golog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		refiner:   refiner,
		maskOpts:  graycode.DefaultMaskOptions(),
		minPoints: DefaultMinPoints,
		noise:     DefaultNoiseThreshold,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs calibration over one capture session. frames[0] and frames[1]
// are the white and black captures; the rest are the bit-plane pairs in
// projection order. The decoded correspondence lists go to the refiner along
// with the initial homography guess (identity if nil) and its tuning, and the
// refiner's remap tables are returned.
func (p *Pipeline) Process(
	ctx context.Context,
	frames []image.Image,
	projSize image.Point,
	initial *transform.Homography,
	refineIterations, refineDistLimit int,
) (*transform.RemapTables, error) {
	if len(frames) < 2 {
		return nil, errors.Wrapf(graycode.ErrInvalidInput,
			"need a white/black pair before any bit planes, got %d frames", len(frames))
	}

	mask, err := graycode.BuildMask(frames[0], frames[1], p.maskOpts)
	if err != nil {
		return nil, err
	}
	p.logger.Debugw("illumination mask built",
		"width", mask.Width(), "height", mask.Height(), "lit", mask.Count())

	planes := make([]*image.Gray, 0, len(frames)-2)
	for _, f := range frames[2:] {
		planes = append(planes, graycode.Grayscale(f))
	}

	camera, projector, err := graycode.DecodeCorrespondences(planes, projSize, mask, p.minPoints, p.noise)
	if err != nil {
		return nil, err
	}
	p.logger.Infow("correspondences decoded",
		"pairs", len(camera), "bitPlanes", len(planes)/2, "projector", projSize)

	if initial == nil {
		initial = transform.NewIdentityHomography()
	}
	tables, err := p.refiner.Refine(ctx, camera, projector, projSize, initial, refineIterations, refineDistLimit)
	if err != nil {
		return nil, errors.Wrap(err, "mesh refinement failed")
	}
	return tables, nil
}
