package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func newFloat32(shape []int, values ...float32) *tensor.Dense {
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(values))
}

func TestStack(t *testing.T) {
	testCases := []struct {
		name      string
		inputs    []*tensor.Dense
		wantShape tensor.Shape
		wantData  []float32
		wantErr   bool
	}{
		{
			name:      "single tensor",
			inputs:    []*tensor.Dense{newFloat32([]int{1, 2}, 1, 2)},
			wantShape: tensor.Shape{1, 1, 2},
			wantData:  []float32{1, 2},
		},
		{
			name: "two tensors",
			inputs: []*tensor.Dense{
				newFloat32([]int{1, 2}, 1, 2),
				newFloat32([]int{1, 2}, 3, 4),
			},
			wantShape: tensor.Shape{2, 1, 2},
			wantData:  []float32{1, 2, 3, 4},
		},
		{
			name:    "empty batch",
			wantErr: true,
		},
		{
			name: "shape mismatch",
			inputs: []*tensor.Dense{
				newFloat32([]int{1, 2}, 1, 2),
				newFloat32([]int{1, 3}, 1, 2, 3),
			},
			wantErr: true,
		},
		{
			name: "dtype mismatch",
			inputs: []*tensor.Dense{
				newFloat32([]int{2}, 1, 2),
				tensor.New(tensor.WithShape(2), tensor.WithBacking([]uint8{1, 2})),
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Stack(tc.inputs)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantShape, got.Shape())
			assert.Equal(t, tc.wantData, got.Data())
		})
	}
}

func TestUnstack(t *testing.T) {
	batched := newFloat32([]int{2, 1, 3}, 1, 2, 3, 4, 5, 6)

	parts, err := Unstack(batched, 2)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, tensor.Shape{1, 1, 3}, parts[0].Shape())
	assert.Equal(t, []float32{4, 5, 6}, parts[1].Data())

	// The slices share memory with the batched output.
	parts[1].Data().([]float32)[0] = 40
	assert.Equal(t, float32(40), batched.Data().([]float32)[3])

	_, err = Unstack(batched, 3)
	assert.Error(t, err, "A leading dimension different from the batch size should be rejected")
}

func TestCastFloat32(t *testing.T) {
	f := newFloat32([]int{2}, 1, 2)
	got, err := CastFloat32(f)
	require.NoError(t, err)
	assert.Same(t, f, got, "A float32 tensor should be returned without copying")

	u := tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]uint8{3, 255}))
	got, err = CastFloat32(u)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, got.Dtype())
	assert.Equal(t, tensor.Shape{1, 2}, got.Shape())
	assert.Equal(t, []float32{3, 255}, got.Data())

	_, err = CastFloat32(tensor.New(tensor.WithShape(1), tensor.WithBacking([]bool{true})))
	assert.Error(t, err)
}
