package query

import "errors"

// ErrCorrupt marks storage that exists but cannot be decoded.
var ErrCorrupt = errors.New("storage corrupt")
