package resource

import "errors"

var (
	// ErrUnsupportedExtension indicates no decoder is registered for a file extension.
	ErrUnsupportedExtension = errors.New("resource: unsupported extension")

	// ErrCorrupt indicates the decoder library rejected the data.
	ErrCorrupt = errors.New("resource: corrupt data")
)
