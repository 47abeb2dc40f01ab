package lexfst

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lexfst/blobstore"
	"github.com/hupe1980/lexfst/fst"
	"github.com/hupe1980/lexfst/resource"
)

var (
	// ErrEmptyDictionary is returned when finishing a builder without terms.
	ErrEmptyDictionary = errors.New("dictionary has no terms")
	// ErrOutOfOrder is returned when terms are not added in ascending byte order.
	ErrOutOfOrder = errors.New("terms must be added in ascending order")
	// ErrDuplicateTerm is returned when a term is added twice.
	ErrDuplicateTerm = errors.New("duplicate term")
	// ErrInvalidMagic is returned when a container does not start with "LXF1".
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrUnsupportedVersion is returned for container versions this build
	// cannot read.
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrCorrupt is returned for structurally invalid containers or automata.
	ErrCorrupt = errors.New("corrupt dictionary")
	// ErrNotMonotonic is returned by TermForValue on dictionaries whose
	// values do not ascend with term order.
	ErrNotMonotonic = errors.New("values are not monotonic in term order")
	// ErrNotFound is returned by Open when the blob does not exist.
	ErrNotFound = blobstore.ErrNotFound
	// ErrMemoryLimitExceeded is returned by Open when the resource
	// controller has no memory left for the dictionary.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
	// ErrInvalidN is returned when a result count is not positive.
	ErrInvalidN = errors.New("n must be positive")
)

// ChecksumMismatchError indicates that a container payload does not match
// its recorded CRC32-C.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %08x, got %08x", e.Expected, e.Actual)
}

// Is reports ErrCorrupt as matching so callers can treat every integrity
// failure alike.
func (e *ChecksumMismatchError) Is(target error) bool { return target == ErrCorrupt }

// TermError reports which term a builder rejected.
//
// The original underlying error can be accessed via errors.Unwrap.
type TermError struct {
	Term  []byte
	cause error
}

func (e *TermError) Error() string {
	return fmt.Sprintf("term %q: %v", e.Term, e.cause)
}

func (e *TermError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fst.ErrOutOfOrder) {
		return fmt.Errorf("%w: %w", ErrOutOfOrder, err)
	}
	if errors.Is(err, fst.ErrCorrupt) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var tooOld *fst.FormatTooOldError
	if errors.As(err, &tooOld) {
		return fmt.Errorf("%w: %w", ErrUnsupportedVersion, err)
	}
	var tooNew *fst.FormatTooNewError
	if errors.As(err, &tooNew) {
		return fmt.Errorf("%w: %w", ErrUnsupportedVersion, err)
	}

	return err
}
