package inference

import (
	"context"

	"github.com/nvr-ai/go-textrec/inference/providers"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// onnxEngine runs a model through ONNX Runtime. Inputs and outputs are bound
// per call, so input shapes may vary between calls.
type onnxEngine struct {
	session     *ort.DynamicAdvancedSession
	inputNames  []string
	outputNames []string
	logger      *zap.Logger
}

func newONNXEngine(modelPath string, cfg providers.Config, logger *zap.Logger) (*onnxEngine, error) {
	if err := providers.InitializeEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading model inputs and outputs: %s", modelPath)
	}
	inputNames := make([]string, len(inputs))
	for i, info := range inputs {
		inputNames[i] = info.Name
	}
	outputNames := make([]string, len(outputs))
	for i, info := range outputs {
		outputNames[i] = info.Name
	}

	options, err := providers.NewSessionOptions(cfg)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	logger.Info("onnx engine initialized",
		zap.String("model", modelPath),
		zap.String("provider", string(cfg.Backend)),
		zap.Strings("inputs", inputNames),
		zap.Strings("outputs", outputNames),
	)

	return &onnxEngine{
		session:     session,
		inputNames:  inputNames,
		outputNames: outputNames,
		logger:      logger,
	}, nil
}

// Predict runs the model once on the given inputs.
func (e *onnxEngine) Predict(ctx context.Context, inputs []*tensor.Dense) ([]*tensor.Dense, error) {
	if e.session == nil {
		return nil, errors.New("model not loaded")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) != len(e.inputNames) {
		return nil, errors.Errorf("model expects %d inputs, got %d", len(e.inputNames), len(inputs))
	}

	values := make([]ort.Value, len(inputs))
	defer destroyValues(values)
	for i, in := range inputs {
		in, err := CastFloat32(in)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", e.inputNames[i])
		}
		value, err := ort.NewTensor(ort.NewShape(toInt64(in.Shape())...), in.Data().([]float32))
		if err != nil {
			return nil, errors.Wrapf(err, "error creating input tensor %s", e.inputNames[i])
		}
		values[i] = value
	}

	// Nil outputs are allocated by the runtime with the shapes it infers.
	outputs := make([]ort.Value, len(e.outputNames))
	defer destroyValues(outputs)
	if err := e.session.Run(values, outputs); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}

	results := make([]*tensor.Dense, len(outputs))
	for i, v := range outputs {
		out, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, errors.Errorf("output %s has unsupported type %T", e.outputNames[i], v)
		}
		data := append([]float32(nil), out.GetData()...)
		results[i] = tensor.New(tensor.WithShape(toInt(out.GetShape())...), tensor.WithBacking(data))
	}

	e.logger.Debug("inference complete", zap.Int("outputs", len(results)))
	return results, nil
}

// Close releases the session.
func (e *onnxEngine) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	if err != nil {
		return errors.Wrap(err, "error destroying ORT session")
	}
	return nil
}

func destroyValues(values []ort.Value) {
	for _, v := range values {
		if v != nil {
			v.Destroy()
		}
	}
}

func toInt64(shape []int) []int64 {
	out := make([]int64, len(shape))
	for i, d := range shape {
		out[i] = int64(d)
	}
	return out
}

func toInt(shape ort.Shape) []int {
	out := make([]int, len(shape))
	for i, d := range shape {
		out[i] = int(d)
	}
	return out
}
