package texture

import (
	"errors"

	"github.com/Faultbox/wrapview/internal/assets"
)

var (
	// ErrAssetLoad matches every image load or decode failure.
	ErrAssetLoad = assets.ErrAssetLoad
	// ErrUnknownPattern is returned for pattern kinds the provider cannot draw.
	ErrUnknownPattern = errors.New("unknown pattern kind")
	// ErrUnsupportedFormat is returned when no decoder recognizes the data.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrImageTooLarge is returned for images above MaxImagePixels.
	ErrImageTooLarge = errors.New("image too large")
)

// AssetLoadError reports an unreachable or undecodable image.
type AssetLoadError = assets.LoadError

func imageLoadError(path string, err error) error {
	return &AssetLoadError{Kind: "image", Path: path, Err: err}
}
