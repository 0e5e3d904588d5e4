// Package models - registry for models.
package models

import (
	"github.com/nvr-ai/go-textrec/inference"
	"github.com/nvr-ai/go-textrec/models/predictor"
	"github.com/nvr-ai/go-textrec/models/textrec"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewPredictorArgs is the arguments for creating a predictor from the registry.
type NewPredictorArgs struct {
	// Name is the model name. Empty reads Global.model_name from the model side-car.
	Name string `json:"name" yaml:"name"`
	// ModelDir is the model directory.
	ModelDir string `json:"model_dir" yaml:"model_dir"`
	// BatchSize is the number of items per inference call.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
	// Engine runs the model.
	Engine inference.Engine `json:"-" yaml:"-"`
	// Logger defaults to a no-op logger.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// NewPredictor creates a predictor for the named model.
//
// This factory function routes requests to the model-specific strategy
// constructors and wraps the strategy in the shared batch orchestrator.
//
// Arguments:
//   - args: The model name, location and engine.
//
// Returns:
//   - *predictor.Predictor: The predictor.
//   - error: An error if the model is unsupported or fails to load.
//
// Example:
//
// ```go
//
//	p, err := NewPredictor(NewPredictorArgs{
//	    Name:     "PP-OCRv4_mobile_rec",
//	    ModelDir: "/models/PP-OCRv4_mobile_rec",
//	    Engine:   engine,
//	})
//
// ```
func NewPredictor(args NewPredictorArgs) (*predictor.Predictor, error) {
	name := args.Name
	var cfg *textrec.InnerConfig
	if name == "" {
		var err error
		if cfg, err = textrec.LoadInnerConfig(args.ModelDir); err != nil {
			return nil, err
		}
		name = cfg.ModelName()
	}

	switch {
	case textrec.IsSupported(name):
		s, err := textrec.NewPredictor(textrec.NewPredictorArgs{
			ModelDir: args.ModelDir,
			Config:   cfg,
			Engine:   args.Engine,
			Logger:   args.Logger,
		})
		if err != nil {
			return nil, err
		}
		return predictor.New(s, predictor.Options{
			BatchSize: args.BatchSize,
			Logger:    args.Logger,
		}), nil
	default:
		return nil, errors.Errorf("unsupported model name: %q", name)
	}
}
