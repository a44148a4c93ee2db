package rawfiles

import "errors"

var (
	// ErrNotFound means no raw file exists with the given ID.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the upload request was malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFormat means the file extension is not a supported
	// instrument data format.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
