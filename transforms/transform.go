package transforms

import "github.com/pkg/errors"

// Transform mutates a batch item in place.
type Transform interface {
	// Name identifies the transform in errors and logs.
	Name() string
	// Apply runs the transform against the item.
	Apply(item Item) error
}

// Apply runs the transforms against the item in order, stopping at the first error.
//
// Arguments:
//   - item: The batch item to transform.
//   - ts: The ordered transforms.
//
// Returns:
//   - error: The first transform error, annotated with the transform name.
func Apply(item Item, ts []Transform) error {
	for _, t := range ts {
		if err := t.Apply(item); err != nil {
			return errors.Wrapf(err, "transform %s", t.Name())
		}
	}
	return nil
}
