package transforms

import (
	"github.com/nvr-ai/go-textrec/images"
	"github.com/pkg/errors"
)

// ReadImage decodes the file named by KeyInputPath into KeyImage and records
// its size under KeyOriginalSize.
type ReadImage struct{}

// Name returns the transform name.
func (ReadImage) Name() string { return "ReadImage" }

// Apply decodes the image file referenced by the item.
func (ReadImage) Apply(item Item) error {
	v, ok := item[KeyInputPath]
	if !ok {
		return &MissingKeyError{Keys: []string{KeyInputPath}}
	}
	path, ok := v.(string)
	if !ok {
		return errors.Errorf("key %q holds %T, want string", KeyInputPath, v)
	}

	img, err := images.Read(path)
	if err != nil {
		return err
	}

	shape := img.Shape()
	item[KeyImage] = img
	item[KeyOriginalSize] = []int{shape[1], shape[0]}
	return nil
}

// GetImageInfo records the size of an already decoded image under KeyOriginalSize.
type GetImageInfo struct{}

// Name returns the transform name.
func (GetImageInfo) Name() string { return "GetImageInfo" }

// Apply reads the image shape, which is (H, W) or (H, W, C).
func (GetImageInfo) Apply(item Item) error {
	img, err := item.Image()
	if err != nil {
		return err
	}
	shape := img.Shape()
	if len(shape) < 2 {
		return errors.Errorf("image must have at least 2 dimensions, got shape %v", shape)
	}
	item[KeyOriginalSize] = []int{shape[1], shape[0]}
	return nil
}
