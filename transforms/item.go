// Package transforms - Batch items and the transforms applied to them by predictors.
package transforms

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Well-known batch item keys shared by every predictor.
const (
	// KeyImage holds the decoded image tensor.
	KeyImage = "image"
	// KeyInputPath holds the path of an image that has not been decoded yet.
	KeyInputPath = "input_path"
	// KeyOriginalSize holds the decoded image size as []int{width, height}.
	KeyOriginalSize = "ori_img_size"
	// KeyCLIFlag marks items submitted from a command-line invocation.
	KeyCLIFlag = "cli_flag"
	// KeyOutputDir holds the output directory of a command-line invocation.
	KeyOutputDir = "output_dir"
)

// Item is one unit of work carried through pre-processing, inference and
// post-processing as a mapping of named fields.
type Item map[string]any

// Has reports whether the item carries a value for key.
func (i Item) Has(key string) bool {
	_, ok := i[key]
	return ok
}

// Image returns the decoded image tensor stored under KeyImage.
//
// Returns:
//   - *tensor.Dense: The image tensor.
//   - error: An error if the key is absent or holds another type.
func (i Item) Image() (*tensor.Dense, error) {
	v, ok := i[KeyImage]
	if !ok {
		return nil, errors.Errorf("key %q not found", KeyImage)
	}
	img, ok := v.(*tensor.Dense)
	if !ok {
		return nil, errors.Errorf("key %q holds %T, want *tensor.Dense", KeyImage, v)
	}
	return img, nil
}

// Bool returns the boolean stored under key, false when absent or not a bool.
func (i Item) Bool(key string) bool {
	b, _ := i[key].(bool)
	return b
}

// String returns the string stored under key, or def when absent or empty.
func (i Item) String(key, def string) string {
	if s, ok := i[key].(string); ok && s != "" {
		return s
	}
	return def
}
