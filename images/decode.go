package images

import (
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// Read decodes an image file into an HWC uint8 tensor in BGR channel order.
//
// WebP files are decoded with libwebp, everything else goes through OpenCV.
//
// Arguments:
//   - path: The image file path.
//
// Returns:
//   - *tensor.Dense: The decoded (H, W, 3) image.
//   - error: An error if the file is missing or cannot be decoded.
func Read(path string) (*tensor.Dense, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "cannot read image %s", path)
	}

	if FormatFromPath(path) == FormatWebP {
		return readWebP(path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("failed to decode image: %s", path)
	}
	return MatToTensor(mat)
}

func readWebP(path string) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open image %s", path)
	}
	defer f.Close()

	img, err := webp.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode webp image %s", path)
	}
	return FromImage(img), nil
}

// MatToTensor copies an 8-bit Mat into a tensor. Single channel Mats become
// (H, W) tensors, multi channel Mats (H, W, C).
//
// Arguments:
//   - mat: The source Mat. It is not closed.
//
// Returns:
//   - *tensor.Dense: The uint8 tensor.
//   - error: An error if the Mat is empty or not 8-bit.
func MatToTensor(mat gocv.Mat) (*tensor.Dense, error) {
	if mat.Empty() {
		return nil, errors.New("empty mat")
	}

	rows, cols, channels := mat.Rows(), mat.Cols(), mat.Channels()
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, errors.Errorf("unsupported mat type %v", mat.Type())
	}

	data := mat.ToBytes()
	if channels == 1 {
		return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data)), nil
	}
	return tensor.New(tensor.WithShape(rows, cols, channels), tensor.WithBacking(data)), nil
}
