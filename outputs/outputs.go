package outputs

import (
	"errors"

	"github.com/hupe1980/lexfst/store"
)

// ErrMergeNotSupported is returned by Merge on algebras that do not accept
// the same input twice.
var ErrMergeNotSupported = errors.New("outputs: merge not supported")

// Outputs is the algebra of values attached to FST arcs and final states.
//
// Implementations must be safe for concurrent use; all operations are pure.
type Outputs[T any] interface {
	// Common returns the longest shared prefix of a and b.
	Common(a, b T) T
	// Subtract removes prefix inc from output.
	Subtract(output, inc T) T
	// Add prepends prefix to output.
	Add(prefix, output T) T
	// Merge combines two outputs registered for the same input.
	Merge(a, b T) (T, error)

	// Write serializes an arc output.
	Write(v T, out store.DataOutput) error
	// WriteFinalOutput serializes a final-state output.
	WriteFinalOutput(v T, out store.DataOutput) error
	// Read deserializes an arc output.
	Read(in store.DataInput) (T, error)
	// ReadFinalOutput deserializes a final-state output.
	ReadFinalOutput(in store.DataInput) (T, error)

	// NoOutput returns the singleton no-output value.
	NoOutput() T
	// IsNoOutput reports whether v is the no-output value.
	IsNoOutput(v T) bool
	// Equal reports structural equality.
	Equal(a, b T) bool
	// Hash returns a hash consistent with Equal.
	Hash(v T) uint64
	// String renders v for debugging.
	String(v T) string
}
