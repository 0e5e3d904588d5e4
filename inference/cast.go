package inference

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// CastFloat32 returns t as a float32 tensor. A tensor that is already float32
// is returned as is, without copying.
//
// Arguments:
//   - t: The tensor to cast.
//
// Returns:
//   - *tensor.Dense: The float32 tensor.
//   - error: An error if the element type cannot be converted.
func CastFloat32(t *tensor.Dense) (*tensor.Dense, error) {
	if t.Dtype() == tensor.Float32 {
		return t, nil
	}

	var out []float32
	switch data := t.Data().(type) {
	case []float64:
		out = convert(data)
	case []uint8:
		out = convert(data)
	case []int8:
		out = convert(data)
	case []int:
		out = convert(data)
	case []int32:
		out = convert(data)
	case []int64:
		out = convert(data)
	default:
		return nil, errors.Errorf("cannot cast %v tensor to float32", t.Dtype())
	}

	shape := append([]int(nil), t.Shape()...)
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(out)), nil
}

func convert[T float64 | uint8 | int8 | int | int32 | int64](src []T) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}
