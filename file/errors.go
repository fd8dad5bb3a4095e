package file

import "errors"

var (
	// ErrDirRequired is returned when the base directory is empty.
	ErrDirRequired = errors.New("delivery file: base directory is required")
)
