package assets

import (
	"errors"
	"fmt"
)

// ErrAssetLoad matches every LoadError, whatever the asset kind.
var ErrAssetLoad = errors.New("asset load failed")

// LoadError reports an asset that could not be read or decoded.
type LoadError struct {
	Kind string // "image" or "mesh"
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAssetLoad) hold for every LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrAssetLoad
}
