package activity

import "errors"

// ErrInvalidInput is returned when an entry is missing or malformed.
var ErrInvalidInput = errors.New("invalid activity entry")
