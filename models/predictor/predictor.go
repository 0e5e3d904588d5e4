// Package predictor - Base predictor orchestration shared by every model.
//
// A Predictor drives batch items through a model-specific Strategy:
// input key validation, pre-processing transforms, one inference call per
// batch, output key validation and post-processing transforms.
package predictor

import (
	"context"

	"github.com/nvr-ai/go-textrec/transforms"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Strategy is the model-specific part of a predictor.
type Strategy interface {
	// InputKeys returns alternative key sets, one of which every item must carry.
	InputKeys() [][]string
	// OutputKeys returns the keys every item carries after Run.
	OutputKeys() []string
	// PreTransforms selects the transforms applied to an item before inference.
	PreTransforms(item transforms.Item) ([]transforms.Transform, error)
	// PostTransforms selects the transforms applied to an item after inference.
	PostTransforms(item transforms.Item) ([]transforms.Transform, error)
	// Run performs inference on a pre-processed batch. It owns the batch for the
	// duration of the call and may update the items in place.
	Run(ctx context.Context, batch []transforms.Item) ([]transforms.Item, error)
}

// Options configures a Predictor.
type Options struct {
	// BatchSize is the number of items per inference call. Defaults to 1.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
	// Logger defaults to a no-op logger.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Predictor runs batch items through a Strategy. It is not safe for concurrent use.
type Predictor struct {
	strategy  Strategy
	batchSize int
	logger    *zap.Logger
}

// New creates a new predictor.
//
// Arguments:
//   - strategy: The model-specific strategy.
//   - opts: The predictor options.
//
// Returns:
//   - *Predictor: The predictor.
func New(strategy Strategy, opts Options) *Predictor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Predictor{
		strategy:  strategy,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
	}
}

// Strategy returns the model-specific strategy.
func (p *Predictor) Strategy() Strategy {
	return p.strategy
}

// BatchSize returns the number of items per inference call.
func (p *Predictor) BatchSize() int {
	return p.batchSize
}

// Predict processes items in batches of BatchSize and returns them in order.
//
// Arguments:
//   - ctx: The context, checked between batches and passed to the strategy.
//   - items: The batch items. They are updated in place.
//
// Returns:
//   - []transforms.Item: The processed items.
//   - error: The first error, annotated with the failing batch range.
func (p *Predictor) Predict(ctx context.Context, items []transforms.Item) ([]transforms.Item, error) {
	results := make([]transforms.Item, 0, len(items))
	for start := 0; start < len(items); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+p.batchSize, len(items))
		out, err := p.predictBatch(ctx, items[start:end])
		if err != nil {
			return results, errors.Wrapf(err, "batch [%d:%d]", start, end)
		}
		results = append(results, out...)
	}
	return results, nil
}

func (p *Predictor) predictBatch(ctx context.Context, batch []transforms.Item) ([]transforms.Item, error) {
	for i, item := range batch {
		if err := CheckInputKeys(item, p.strategy.InputKeys()); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		ts, err := p.strategy.PreTransforms(item)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		if err := transforms.Apply(item, ts); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}

	out, err := p.strategy.Run(ctx, batch)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("batch inference complete", zap.Int("size", len(out)))

	for i, item := range out {
		if err := CheckOutputKeys(item, p.strategy.OutputKeys()); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		ts, err := p.strategy.PostTransforms(item)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		if err := transforms.Apply(item, ts); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}
	return out, nil
}

// CheckInputKeys verifies that the item carries every key of at least one of
// the alternative key sets.
//
// Returns:
//   - error: A *transforms.MissingKeyError naming all acceptable keys, or nil.
func CheckInputKeys(item transforms.Item, alternatives [][]string) error {
	var names []string
	for _, keys := range alternatives {
		if hasAll(item, keys) {
			return nil
		}
		names = append(names, keys...)
	}
	if len(alternatives) == 0 {
		return nil
	}
	return &transforms.MissingKeyError{Keys: names}
}

// CheckOutputKeys verifies that the item carries every output key.
//
// Returns:
//   - error: A *transforms.MissingKeyError naming the first missing key, or nil.
func CheckOutputKeys(item transforms.Item, keys []string) error {
	for _, k := range keys {
		if !item.Has(k) {
			return &transforms.MissingKeyError{Keys: []string{k}}
		}
	}
	return nil
}

func hasAll(item transforms.Item, keys []string) bool {
	for _, k := range keys {
		if !item.Has(k) {
			return false
		}
	}
	return true
}
