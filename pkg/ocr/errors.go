package ocr

import "errors"

// ErrNoText is returned when no pass produced statement-like text.
var ErrNoText = errors.New("no text detected")
