package textrec

import (
	"context"

	"github.com/nvr-ai/go-textrec/inference"
	"github.com/nvr-ai/go-textrec/transforms"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// DefaultOutputDir is used by PrintResult when an item names no output directory.
const DefaultOutputDir = "./"

// NewPredictorArgs is the arguments for creating a new text recognition predictor.
type NewPredictorArgs struct {
	// ModelDir is the model directory holding ConfigFileName.
	ModelDir string
	// Config is an already loaded side-car. When set, ModelDir is not read.
	Config *InnerConfig
	// Engine runs the recognition model.
	Engine inference.Engine
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Predictor is the text recognition strategy for predictor.Predictor.
//
// A Predictor is not safe for concurrent use: Run updates the batch items in
// place and callers must not read the batch until it returns.
type Predictor struct {
	modelDir string
	engine   inference.Engine
	config   *InnerConfig
	decoder  *CTCLabelDecode
	logger   *zap.Logger
}

// NewPredictor loads the model side-car and creates the predictor.
//
// Arguments:
//   - args: The predictor arguments.
//
// Returns:
//   - *Predictor: The predictor.
//   - error: A *ConfigNotFoundError when the side-car is missing, an error for
//     decoders other than CTCLabelDecode, or another load error.
func NewPredictor(args NewPredictorArgs) (*Predictor, error) {
	if args.Engine == nil {
		return nil, errors.New("engine not configured")
	}
	logger := args.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := args.Config
	if cfg == nil {
		var err error
		if cfg, err = LoadInnerConfig(args.ModelDir); err != nil {
			return nil, err
		}
	}

	pp := cfg.PostProcess()
	if pp.Name != "" && pp.Name != CTCDecoderName {
		return nil, errors.Errorf("unsupported post-process %q, want %s", pp.Name, CTCDecoderName)
	}
	logger.Info("text recognition config loaded",
		zap.String("path", cfg.Path()),
		zap.String("model", cfg.ModelName()),
		zap.Ints("rec_image_shape", cfg.recImageShape[:]),
		zap.Int("characters", len(pp.CharacterDict)),
	)

	return &Predictor{
		modelDir: args.ModelDir,
		engine:   args.Engine,
		config:   cfg,
		decoder:  NewCTCLabelDecode(pp),
		logger:   logger,
	}, nil
}

// Config returns the loaded side-car config.
func (p *Predictor) Config() *InnerConfig {
	return p.config
}

// InputKeys returns the acceptable input key sets: an image, or an image path.
func (p *Predictor) InputKeys() [][]string {
	return [][]string{{KeyImage}, {KeyInputPath}}
}

// OutputKeys returns the key produced by Run.
func (p *Predictor) OutputKeys() []string {
	return []string{KeyRecProbs}
}

// Run stacks the batch images, runs the engine once and stores each item's
// (1, T, C) probabilities under KeyRecProbs. The items are updated in place
// and the same slice is returned.
//
// Arguments:
//   - ctx: The context passed to the engine.
//   - batch: Items that already carry a decoded image.
//
// Returns:
//   - []transforms.Item: The batch.
//   - error: Stacking, engine and output shape errors.
func (p *Predictor) Run(ctx context.Context, batch []transforms.Item) ([]transforms.Item, error) {
	imgs := make([]*tensor.Dense, len(batch))
	for i, item := range batch {
		img, err := item.Image()
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		imgs[i] = img
	}

	input, err := inference.Stack(imgs)
	if err != nil {
		return nil, err
	}
	if input.Dims() == 3 {
		s := append([]int(nil), input.Shape()...)
		if err := input.Reshape(s[0], 1, s[1], s[2]); err != nil {
			return nil, errors.Wrap(err, "insert channel axis")
		}
	}
	input, err = inference.CastFloat32(input)
	if err != nil {
		return nil, err
	}

	outputs, err := p.engine.Predict(ctx, []*tensor.Dense{input})
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, errors.New("engine returned no outputs")
	}
	probs, err := inference.CastFloat32(outputs[0])
	if err != nil {
		return nil, err
	}

	perItem, err := inference.Unstack(probs, len(batch))
	if err != nil {
		return nil, err
	}
	for i, item := range batch {
		item[KeyRecProbs] = perItem[i]
	}
	return batch, nil
}

// PreTransforms selects ReadImage when only a path is present and
// GetImageInfo otherwise, followed by OCRResizeNormImg.
//
// Returns:
//   - []transforms.Transform: The ordered transforms.
//   - error: A *transforms.MissingKeyError naming KeyImage and KeyInputPath.
func (p *Predictor) PreTransforms(item transforms.Item) ([]transforms.Transform, error) {
	hasImage, hasPath := item.Has(KeyImage), item.Has(KeyInputPath)
	if !hasImage && !hasPath {
		return nil, &transforms.MissingKeyError{Keys: []string{KeyImage, KeyInputPath}}
	}

	ts := make([]transforms.Transform, 0, 2)
	if !hasImage {
		ts = append(ts, transforms.ReadImage{})
	} else {
		ts = append(ts, transforms.GetImageInfo{})
	}
	ts = append(ts, OCRResizeNormImg{Shape: p.config.RecImageShape()})
	return ts, nil
}

// PostTransforms selects CTCLabelDecode, followed by PrintResult for
// command-line items.
func (p *Predictor) PostTransforms(item transforms.Item) ([]transforms.Transform, error) {
	ts := []transforms.Transform{p.decoder}
	if item.Bool(transforms.KeyCLIFlag) {
		ts = append(ts, PrintResult{
			OutputDir: item.String(transforms.KeyOutputDir, DefaultOutputDir),
			logger:    p.logger,
		})
	}
	return ts, nil
}
