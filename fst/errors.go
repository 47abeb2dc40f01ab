package fst

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfOrder is returned when keys are not added in ascending order.
	ErrOutOfOrder = errors.New("fst: inputs added out of order")
	// ErrInvalidLabel is returned for labels outside the input alphabet.
	ErrInvalidLabel = errors.New("fst: label out of range for input type")
	// ErrNotFinished is returned when saving an FST that was never finished.
	ErrNotFinished = errors.New("fst: finish must be called first")
	// ErrAlreadyFinished is returned when finishing an FST twice.
	ErrAlreadyFinished = errors.New("fst: already finished")
	// ErrNotPacked is returned when saving an FST built for packing before
	// it was packed.
	ErrNotPacked = errors.New("fst: packable fst must be packed before saving")
	// ErrNotPackable is returned by Pack on FSTs built without packing.
	ErrNotPackable = errors.New("fst: fst was not built with packing enabled")
	// ErrTooManyNodes is returned when a packable FST exceeds the node limit.
	ErrTooManyNodes = errors.New("fst: too many nodes for a packed fst")
	// ErrCorrupt is returned for malformed serialized FSTs.
	ErrCorrupt = errors.New("fst: corrupt data")
	// ErrLastArc is returned when reading past the last arc of a node.
	ErrLastArc = errors.New("fst: no arc follows the last arc")
)

// FormatTooOldError reports a serialized version older than supported.
type FormatTooOldError struct {
	Version    int
	MinVersion int
}

func (e *FormatTooOldError) Error() string {
	return fmt.Sprintf("fst: format version %d is too old (minimum %d)", e.Version, e.MinVersion)
}

// FormatTooNewError reports a serialized version newer than supported.
type FormatTooNewError struct {
	Version    int
	MaxVersion int
}

func (e *FormatTooNewError) Error() string {
	return fmt.Sprintf("fst: format version %d is too new (maximum %d)", e.Version, e.MaxVersion)
}
