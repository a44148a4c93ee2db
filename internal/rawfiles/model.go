package rawfiles

import "time"

// RawFile represents an uploaded instrument data file.
type RawFile struct {
	ID              string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	CreatedAt       time.Time
}
