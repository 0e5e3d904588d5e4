package predictor

import (
	"context"
	"testing"

	"github.com/nvr-ai/go-textrec/transforms"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeStrategy records the batch sizes it sees and tags each item.
type fakeStrategy struct {
	batches  []int
	skipOut  bool
	runErr   error
	preCalls int
}

func (s *fakeStrategy) InputKeys() [][]string {
	return [][]string{{"image"}, {"input_path"}}
}

func (s *fakeStrategy) OutputKeys() []string {
	return []string{"out"}
}

func (s *fakeStrategy) PreTransforms(transforms.Item) ([]transforms.Transform, error) {
	s.preCalls++
	return []transforms.Transform{setKey{key: "pre"}}, nil
}

func (s *fakeStrategy) PostTransforms(transforms.Item) ([]transforms.Transform, error) {
	return []transforms.Transform{setKey{key: "post"}}, nil
}

func (s *fakeStrategy) Run(_ context.Context, batch []transforms.Item) ([]transforms.Item, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	s.batches = append(s.batches, len(batch))
	for _, item := range batch {
		if !s.skipOut {
			item["out"] = len(s.batches)
		}
	}
	return batch, nil
}

type setKey struct{ key string }

func (s setKey) Name() string { return "set " + s.key }

func (s setKey) Apply(item transforms.Item) error {
	item[s.key] = true
	return nil
}

func newItems(n int) []transforms.Item {
	items := make([]transforms.Item, n)
	for i := range items {
		items[i] = transforms.Item{"input_path": "line.png"}
	}
	return items
}

func TestPredictor_Batching(t *testing.T) {
	testCases := []struct {
		name      string
		batchSize int
		items     int
		want      []int
	}{
		{name: "default batch size", batchSize: 0, items: 3, want: []int{1, 1, 1}},
		{name: "exact batches", batchSize: 2, items: 4, want: []int{2, 2}},
		{name: "partial last batch", batchSize: 2, items: 5, want: []int{2, 2, 1}},
		{name: "batch larger than input", batchSize: 8, items: 3, want: []int{3}},
		{name: "no items", batchSize: 2, items: 0, want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeStrategy{}
			p := New(s, Options{BatchSize: tc.batchSize, Logger: zaptest.NewLogger(t)})

			out, err := p.Predict(context.Background(), newItems(tc.items))
			require.NoError(t, err)
			assert.Len(t, out, tc.items)
			assert.Equal(t, tc.want, s.batches)
			for _, item := range out {
				assert.Equal(t, true, item["pre"], "Pre-transforms should run before inference")
				assert.Equal(t, true, item["post"], "Post-transforms should run after inference")
			}
		})
	}
}

func TestPredictor_MissingInputKey(t *testing.T) {
	s := &fakeStrategy{}
	p := New(s, Options{})

	_, err := p.Predict(context.Background(), []transforms.Item{{"other": 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transforms.ErrMissingKey))
	assert.Contains(t, err.Error(), `key "image" or "input_path" is required, but not found`)
	assert.Zero(t, s.preCalls, "Pre-transforms should not run for invalid items")
	assert.Empty(t, s.batches, "Inference should not run for invalid items")
}

func TestPredictor_MissingOutputKey(t *testing.T) {
	p := New(&fakeStrategy{skipOut: true}, Options{})

	_, err := p.Predict(context.Background(), newItems(1))
	require.Error(t, err)

	var missing *transforms.MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"out"}, missing.Keys)
}

func TestPredictor_RunError(t *testing.T) {
	boom := errors.New("engine failed")
	p := New(&fakeStrategy{runErr: boom}, Options{BatchSize: 2})

	_, err := p.Predict(context.Background(), newItems(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "batch [0:2]")
}

func TestPredictor_Cancelled(t *testing.T) {
	s := &fakeStrategy{}
	p := New(s, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Predict(ctx, newItems(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.batches)
}

func TestCheckInputKeys(t *testing.T) {
	alternatives := [][]string{{"a", "b"}, {"c"}}

	assert.NoError(t, CheckInputKeys(transforms.Item{"a": 1, "b": 2}, alternatives))
	assert.NoError(t, CheckInputKeys(transforms.Item{"c": 1}, alternatives))
	assert.NoError(t, CheckInputKeys(transforms.Item{}, nil), "No alternatives accept every item")

	err := CheckInputKeys(transforms.Item{"a": 1}, alternatives)
	var missing *transforms.MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"a", "b", "c"}, missing.Keys)
}
