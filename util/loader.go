// Package util - Input discovery helpers.
package util

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nvr-ai/go-textrec/images"
	"github.com/pkg/errors"
)

// ListImageFiles returns the supported image files of a directory, sorted by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []string: The image file paths.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image directory %s", dir)
	}

	var paths []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if images.FormatFromPath(file.Name()) == images.FormatUnknown {
			continue
		}
		paths = append(paths, filepath.Join(dir, file.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}
