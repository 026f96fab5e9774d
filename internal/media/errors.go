package media

import (
	"errors"
	"fmt"
)

var (
	// ErrPositionOutOfRange is returned for list positions outside [0, Len).
	ErrPositionOutOfRange = errors.New("position out of range")
	// ErrDuplicate marks a path that is already queued.
	ErrDuplicate = errors.New("file already in list")
)

// InvalidMetadataError reports a metadata field that cannot be used, such
// as a duration that is not a positive number.
type InvalidMetadataError struct {
	Path  string
	Key   string
	Value string
	Err   error
}

func (e *InvalidMetadataError) Error() string {
	msg := fmt.Sprintf("%s: invalid metadata %s=%q", e.Path, e.Key, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidMetadataError) Unwrap() error { return e.Err }
