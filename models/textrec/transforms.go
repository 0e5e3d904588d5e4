package textrec

import (
	"image"
	"math"
	"strings"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-textrec/images"
	"github.com/nvr-ai/go-textrec/transforms"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// OCRResizeNormImg resizes a text line image to the recognition height keeping
// its aspect ratio, normalizes it to [-1, 1] in CHW layout and zero-pads it on
// the right to the recognition width.
type OCRResizeNormImg struct {
	// Shape is the (C, H, W) recognition input shape.
	Shape [3]int
}

// Name returns the transform name.
func (OCRResizeNormImg) Name() string { return "OCRResizeNormImg" }

// Apply replaces KeyImage with the normalized float32 (C, H, W') tensor.
func (t OCRResizeNormImg) Apply(item transforms.Item) error {
	img, err := item.Image()
	if err != nil {
		return err
	}
	shape := img.Shape()
	if len(shape) < 2 {
		return errors.Errorf("image must have at least 2 dimensions, got shape %v", shape)
	}

	w, h := shape[1], shape[0]
	if size, ok := item[KeyOriginalSize].([]int); ok && len(size) == 2 {
		w, h = size[0], size[1]
	}
	if w <= 0 || h <= 0 {
		return errors.Errorf("invalid image size %dx%d", w, h)
	}

	maxWHRatio := float64(t.Shape[2]) / float64(t.Shape[1])
	if ratio := float64(w) / float64(h); ratio > maxWHRatio {
		maxWHRatio = ratio
	}

	out, err := t.resizeNorm(img, maxWHRatio)
	if err != nil {
		return err
	}
	item[KeyImage] = out
	return nil
}

func (t OCRResizeNormImg) resizeNorm(img *tensor.Dense, maxWHRatio float64) (*tensor.Dense, error) {
	imgC, imgH := t.Shape[0], t.Shape[1]
	imgW := int(float64(imgH) * maxWHRatio)

	shape := img.Shape()
	h, w := shape[0], shape[1]
	channels := 1
	if len(shape) == 3 {
		channels = shape[2]
	}
	if channels != 1 && channels != imgC {
		return nil, errors.Errorf("image has %d channels, model expects %d", channels, imgC)
	}

	resizedW := imgW
	if rw := int(math.Ceil(float64(imgH) * float64(w) / float64(h))); rw <= imgW {
		resizedW = rw
	}

	src, err := images.TensorToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(resizedW, imgH), 0, 0, gocv.InterpolationLinear)

	rt, err := images.MatToTensor(resized)
	if err != nil {
		return nil, errors.Wrap(err, "resize")
	}
	pix := rt.Data().([]uint8)

	plane := imgH * imgW
	out := make([]float32, imgC*plane)
	for y := 0; y < imgH; y++ {
		for x := 0; x < resizedW; x++ {
			o := (y*resizedW + x) * channels
			for c := 0; c < imgC; c++ {
				v := pix[o]
				if channels > 1 {
					v = pix[o+c]
				}
				out[c*plane+y*imgW+x] = (float32(v)/255 - 0.5) / 0.5
			}
		}
	}

	return tensor.New(tensor.WithShape(imgC, imgH, imgW), tensor.WithBacking(out)), nil
}

// CTCDecoderName is the PostProcess.name of CTC recognition models.
const CTCDecoderName = "CTCLabelDecode"

// CTCLabelDecode turns (1, T, C) class probabilities into text by taking the
// best class per time step, collapsing repeats and dropping blanks.
type CTCLabelDecode struct {
	characters []string
}

// NewCTCLabelDecode builds the decoder's label set: the blank, the dictionary
// and, when enabled, a trailing space.
//
// Arguments:
//   - cfg: The post-processing settings.
//
// Returns:
//   - *CTCLabelDecode: The decoder.
func NewCTCLabelDecode(cfg PostProcessConfig) *CTCLabelDecode {
	characters := make([]string, 0, len(cfg.CharacterDict)+2)
	characters = append(characters, "blank")
	characters = append(characters, cfg.CharacterDict...)
	if cfg.SpaceChar() {
		characters = append(characters, " ")
	}
	return &CTCLabelDecode{characters: characters}
}

// Name returns the transform name.
func (*CTCLabelDecode) Name() string { return CTCDecoderName }

// Characters returns the label set; index 0 is the blank.
func (d *CTCLabelDecode) Characters() []string {
	return d.characters
}

// Apply decodes KeyRecProbs into KeyRecText and KeyRecScore.
func (d *CTCLabelDecode) Apply(item transforms.Item) error {
	v, ok := item[KeyRecProbs]
	if !ok {
		return &transforms.MissingKeyError{Keys: []string{KeyRecProbs}}
	}
	probs, ok := v.(*tensor.Dense)
	if !ok {
		return errors.Errorf("key %q holds %T, want *tensor.Dense", KeyRecProbs, v)
	}

	text, score, err := d.Decode(probs)
	if err != nil {
		return err
	}
	item[KeyRecText] = text
	item[KeyRecScore] = score
	return nil
}

// Decode decodes the first sequence of a (T, C) or (1, T, C) float32 tensor.
//
// Returns:
//   - string: The text.
//   - float32: The mean probability of the kept characters, 0 when none are kept.
//   - error: An error for malformed tensors or class indices outside the label set.
func (d *CTCLabelDecode) Decode(probs *tensor.Dense) (string, float32, error) {
	shape := probs.Shape()
	if len(shape) < 2 {
		return "", 0, errors.Errorf("probabilities must be (T, C) or (1, T, C), got shape %v", shape)
	}
	data, ok := probs.Data().([]float32)
	if !ok {
		return "", 0, errors.Errorf("probabilities must be float32, got %v", probs.Dtype())
	}
	steps, classes := shape[len(shape)-2], shape[len(shape)-1]
	if len(data) < steps*classes {
		return "", 0, errors.Errorf("probability data holds %d values, shape %v needs %d", len(data), shape, steps*classes)
	}

	var (
		sb    strings.Builder
		sum   float32
		count int
		prev  = -1
	)
	for t := 0; t < steps; t++ {
		row := data[t*classes : (t+1)*classes]
		best, bestProb := 0, math32.Inf(-1)
		for c, p := range row {
			if math32.IsNaN(p) {
				return "", 0, errors.Errorf("NaN probability at step %d class %d", t, c)
			}
			if p > bestProb {
				best, bestProb = c, p
			}
		}

		if best != 0 && best != prev {
			if best >= len(d.characters) {
				return "", 0, errors.Errorf("class index %d outside label set of %d", best, len(d.characters))
			}
			sb.WriteString(d.characters[best])
			sum += bestProb
			count++
		}
		prev = best
	}

	if count == 0 {
		return sb.String(), 0, nil
	}
	return sb.String(), sum / float32(count), nil
}

// PrintResult logs the recognized text of command-line invocations.
type PrintResult struct {
	// OutputDir is the output directory of the invocation.
	OutputDir string
	logger    *zap.Logger
}

// Name returns the transform name.
func (PrintResult) Name() string { return "PrintResult" }

// Apply logs KeyRecText and KeyRecScore.
func (p PrintResult) Apply(item transforms.Item) error {
	logger := p.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	text, _ := item[KeyRecText].(string)
	score, _ := item[KeyRecScore].(float32)
	logger.Info("text recognition result",
		zap.String("input_path", item.String(KeyInputPath, "")),
		zap.String("text", text),
		zap.Float32("score", score),
		zap.String("output_dir", p.OutputDir),
	)
	return nil
}
