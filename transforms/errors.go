package transforms

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrMissingKey is matched by every MissingKeyError.
var ErrMissingKey = errors.New("missing required key")

// MissingKeyError reports a batch item that carries none of the acceptable keys.
type MissingKeyError struct {
	// Keys lists the acceptable keys, any one of which would have satisfied the check.
	Keys []string
}

func (e *MissingKeyError) Error() string {
	quoted := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf("key %s is required, but not found", strings.Join(quoted, " or "))
}

// Is makes errors.Is(err, ErrMissingKey) hold.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}
