package inference

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Stack joins same-shaped tensors along a new leading axis.
//
// A single tensor is wrapped without copying its backing data.
//
// Arguments:
//   - ts: The tensors to stack, all with the same shape and element type.
//
// Returns:
//   - *tensor.Dense: A tensor of shape (len(ts), ...).
//   - error: An error if the batch is empty or the shapes differ.
func Stack(ts []*tensor.Dense) (*tensor.Dense, error) {
	if len(ts) == 0 {
		return nil, errors.New("cannot stack an empty batch")
	}

	first := ts[0]
	for i, t := range ts[1:] {
		if !t.Shape().Eq(first.Shape()) {
			return nil, errors.Errorf("shape mismatch at index %d: %v != %v", i+1, t.Shape(), first.Shape())
		}
		if t.Dtype() != first.Dtype() {
			return nil, errors.Errorf("dtype mismatch at index %d: %v != %v", i+1, t.Dtype(), first.Dtype())
		}
	}

	if len(ts) == 1 {
		shape := append([]int{1}, first.Shape()...)
		return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(first.Data())), nil
	}

	stacked, err := first.Stack(0, ts[1:]...)
	if err != nil {
		return nil, errors.Wrap(err, "stack batch")
	}
	return stacked, nil
}

// Unstack splits a float32 tensor of shape (n, ...) into n tensors of shape
// (1, ...). The returned tensors share backing memory with t.
//
// Arguments:
//   - t: The batched float32 tensor.
//   - n: The expected batch size.
//
// Returns:
//   - []*tensor.Dense: One tensor per batch entry.
//   - error: An error if the leading dimension is not n.
func Unstack(t *tensor.Dense, n int) ([]*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) == 0 || shape[0] != n {
		return nil, errors.Errorf("output shape %v does not match batch size %d", shape, n)
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("expected float32 output, got %v", t.Dtype())
	}

	rest := append([]int{1}, shape[1:]...)
	stride := 1
	for _, d := range shape[1:] {
		stride *= d
	}

	out := make([]*tensor.Dense, n)
	for i := range out {
		out[i] = tensor.New(
			tensor.WithShape(rest...),
			tensor.WithBacking(data[i*stride:(i+1)*stride]),
		)
	}
	return out, nil
}
