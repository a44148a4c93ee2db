package msdata

import "errors"

var (
	// ErrUnreadableFile means the raw data file could not be read or decoded.
	ErrUnreadableFile = errors.New("msdata: unreadable file")
	// ErrUnsupportedFormat means the file decoded but uses an encoding or
	// layout this reader does not handle.
	ErrUnsupportedFormat = errors.New("msdata: unsupported format")
)
