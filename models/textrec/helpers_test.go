package textrec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

const testConfig = `Global:
  model_name: PP-OCRv4_mobile_rec
PreProcess:
  transform_ops:
  - DecodeImage:
      channel_first: false
      img_mode: BGR
  - MultiLabelEncode:
      gtc_encode: NRTRLabelEncode
  - RecResizeImg:
      image_shape: [3, 48, 320]
  - KeepKeys:
      keep_keys: [image, length]
PostProcess:
  name: CTCLabelDecode
  character_dict:
  - 0
  - 1
  - a
  - 'b'
`

// writeModelDir creates a model directory holding the given side-car.
func writeModelDir(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(config), 0o644))
	return dir
}

// fakeEngine returns a (N, steps, classes) probability tensor and records its input.
type fakeEngine struct {
	steps, classes int
	// batchOverride forces the leading output dimension when positive.
	batchOverride int
	inputs        []*tensor.Dense
	err           error
}

func (e *fakeEngine) Predict(_ context.Context, inputs []*tensor.Dense) ([]*tensor.Dense, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.inputs = inputs
	n := inputs[0].Shape()[0]
	if e.batchOverride > 0 {
		n = e.batchOverride
	}
	data := make([]float32, n*e.steps*e.classes)
	for i := range data {
		data[i] = float32(i)
	}
	return []*tensor.Dense{tensor.New(tensor.WithShape(n, e.steps, e.classes), tensor.WithBacking(data))}, nil
}

func (e *fakeEngine) Close() error { return nil }

func newTestPredictor(t *testing.T, engine *fakeEngine) *Predictor {
	t.Helper()
	p, err := NewPredictor(NewPredictorArgs{ModelDir: writeModelDir(t, testConfig), Engine: engine})
	require.NoError(t, err)
	return p
}

func uint8Image(shape ...int) *tensor.Dense {
	size := 1
	for _, d := range shape {
		size *= d
	}
	data := make([]uint8, size)
	for i := range data {
		data[i] = 255
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
}
