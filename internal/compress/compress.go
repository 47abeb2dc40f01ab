package compress

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a payload compression algorithm. The values are part of
// the dictionary container format.
type Type uint8

const (
	// None stores the payload as is.
	None Type = 0
	// LZ4 favors decode speed.
	LZ4 Type = 1
	// Zstd favors ratio.
	Zstd Type = 2
)

var (
	// ErrUnknownType is returned for an unsupported Type value.
	ErrUnknownType = errors.New("compress: unknown compression type")
	// ErrSizeMismatch is returned when a payload does not decode to the
	// recorded length.
	ErrSizeMismatch = errors.New("compress: decoded size mismatch")
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool { return t <= Zstd }

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// Compress encodes data with t. If the result would not save at least a
// tenth of the input, data is returned unchanged with type None.
func Compress(data []byte, t Type) ([]byte, Type, error) {
	if t == None || len(data) == 0 {
		return data, None, nil
	}

	var out []byte
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, None, fmt.Errorf("compress: lz4: %w", err)
		}
		// Zero means incompressible.
		out = buf[:n]
	case Zstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, None, fmt.Errorf("compress: zstd: %w", err)
		}
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, None, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, None, nil
	}
	return out, t, nil
}

// lz4MaxRatio bounds how far a single LZ4 block can expand.
const lz4MaxRatio = 255

// CheckLength reports whether data of type t can plausibly decode to rawLen
// bytes. It is cheap and runs before any buffer of rawLen is allocated.
func CheckLength(data []byte, t Type, rawLen int) error {
	if rawLen < 0 {
		return fmt.Errorf("%w: negative length %d", ErrSizeMismatch, rawLen)
	}
	switch t {
	case None:
		if len(data) != rawLen {
			return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(data), rawLen)
		}
	case LZ4:
		limit := math.MaxInt
		if len(data) < (math.MaxInt-16)/lz4MaxRatio {
			limit = lz4MaxRatio*len(data) + 16
		}
		if rawLen > limit {
			return fmt.Errorf("%w: %d bytes cannot expand to %d", ErrSizeMismatch, len(data), rawLen)
		}
	case Zstd:
		// Compress always records the content size in the frame header.
		var h zstd.Header
		if err := h.Decode(data); err != nil {
			return fmt.Errorf("compress: zstd: %w", err)
		}
		if !h.HasFCS || h.FrameContentSize != uint64(rawLen) {
			return fmt.Errorf("%w: frame holds %d bytes, want %d", ErrSizeMismatch, h.FrameContentSize, rawLen)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	return nil
}

// Decompress decodes data written by Compress with type t. rawLen is the
// length of the original input.
func Decompress(data []byte, t Type, rawLen int) ([]byte, error) {
	if err := CheckLength(data, t, rawLen); err != nil {
		return nil, err
	}
	switch t {
	case None:
		return data, nil
	case LZ4:
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, n, rawLen)
		}
		return out, nil
	case Zstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		defer zstdDecoderPool.Put(dec)
		// The frame header is not trusted for the initial allocation.
		out, err := dec.DecodeAll(data, make([]byte, 0, min(rawLen, 16*len(data))))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(out), rawLen)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}
