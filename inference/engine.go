// Package inference - Inference engine interface and implementations.
package inference

import (
	"context"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-textrec/inference/providers"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// ModelFileName is the model file looked up inside a model directory.
const ModelFileName = "inference.onnx"

// Engine defines the interface for ML inference engines.
//
// Predict receives the model inputs in declaration order and returns the model
// outputs in declaration order.
type Engine interface {
	Predict(ctx context.Context, inputs []*tensor.Dense) ([]*tensor.Dense, error)
	Close() error
}

// EngineBuilder builds an Engine with a fluent API. The first error is kept and
// returned by Build.
type EngineBuilder struct {
	provider  providers.Config
	modelPath string
	logger    *zap.Logger
	err       error
}

// NewEngineBuilder creates a new engine builder using the CPU provider.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{
		provider: providers.DefaultConfig(),
		logger:   zap.NewNop(),
	}
}

// WithProvider sets the execution provider for the engine.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithProvider(cfg providers.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := cfg.Validate(); err != nil {
		b.err = err
		return b
	}
	b.provider = cfg
	return b
}

// WithModel sets the model for the engine. A directory resolves to the
// ModelFileName inside it.
//
// Arguments:
//   - path: The ONNX model file or a model directory.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithModel(path string) *EngineBuilder {
	if b.HasError() {
		return b
	}
	info, err := os.Stat(path)
	if err != nil {
		b.err = errors.Wrapf(err, "model not found: %s", path)
		return b
	}
	if info.IsDir() {
		path = filepath.Join(path, ModelFileName)
		if _, err := os.Stat(path); err != nil {
			b.err = errors.Wrapf(err, "model not found: %s", path)
			return b
		}
	}
	b.modelPath = path
	return b
}

// WithLogger sets the logger for the engine.
func (b *EngineBuilder) WithLogger(logger *zap.Logger) *EngineBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// MustBuild builds the engine and panics if there is an error.
//
// Returns:
//   - Engine: The engine.
func (b *EngineBuilder) MustBuild() Engine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// Build builds the engine.
//
// Returns:
//   - Engine: The engine.
//   - error: The error if any.
func (b *EngineBuilder) Build() (Engine, error) {
	if b.HasError() {
		return nil, b.err
	}
	if b.modelPath == "" {
		return nil, errors.New("model not configured")
	}
	return newONNXEngine(b.modelPath, b.provider, b.logger)
}
