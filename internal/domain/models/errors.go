package models

import "errors"

// ErrInvalidInput marks out-of-range or malformed snapshot, batch or transaction fields.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownProfile indicates no shelf-life entry exists for a crop/storage pair.
var ErrUnknownProfile = errors.New("unknown crop storage profile")

// ErrNotFound indicates a missing farmer, transaction or batch.
var ErrNotFound = errors.New("not found")
