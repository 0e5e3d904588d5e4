// Package images - Image decoding and conversions between images and tensors.
package images

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// FromImage converts a Go image into an HWC uint8 tensor in BGR channel order,
// the layout produced by OpenCV decoding.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - *tensor.Dense: A (H, W, 3) uint8 tensor.
func FromImage(img image.Image) *tensor.Dense {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]uint8, h*w*3)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			data[i] = uint8(bl >> 8)
			data[i+1] = uint8(g >> 8)
			data[i+2] = uint8(r >> 8)
			i += 3
		}
	}

	return tensor.New(tensor.WithShape(h, w, 3), tensor.WithBacking(data))
}

// TensorToMat copies an (H, W) or (H, W, C) tensor into an 8-bit Mat so it can
// be processed with OpenCV. Channel order is preserved.
//
// Arguments:
//   - t: A uint8 or floating point tensor with values in [0, 255].
//
// Returns:
//   - gocv.Mat: A CV_8UC1, CV_8UC3 or CV_8UC4 Mat. The caller must close it.
//   - error: An error if the shape or element type is unsupported.
func TensorToMat(t *tensor.Dense) (gocv.Mat, error) {
	shape := t.Shape()
	channels := 1
	switch len(shape) {
	case 2:
	case 3:
		channels = shape[2]
	default:
		return gocv.Mat{}, errors.Errorf("image tensor must be (H, W) or (H, W, C), got shape %v", shape)
	}

	var matType gocv.MatType
	switch channels {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType = gocv.MatTypeCV8UC3
	case 4:
		matType = gocv.MatTypeCV8UC4
	default:
		return gocv.Mat{}, errors.Errorf("unsupported channel count %d", channels)
	}

	pix, err := asUint8(t)
	if err != nil {
		return gocv.Mat{}, err
	}

	// The Mat borrows pix, so hand out an owned copy.
	view, err := gocv.NewMatFromBytes(shape[0], shape[1], matType, pix)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "create mat")
	}
	defer view.Close()
	return view.Clone(), nil
}

// asUint8 returns the tensor elements as bytes, clamping floating point values.
func asUint8(t *tensor.Dense) ([]uint8, error) {
	switch data := t.Data().(type) {
	case []uint8:
		return data, nil
	case []float32:
		out := make([]uint8, len(data))
		for i, v := range data {
			out[i] = clampByte(float64(v))
		}
		return out, nil
	case []float64:
		out := make([]uint8, len(data))
		for i, v := range data {
			out[i] = clampByte(v)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported image element type %v", t.Dtype())
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
