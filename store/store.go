package store

import (
	"errors"
	"io"
	"math"
)

var (
	// ErrMalformedVarint is returned when a variable-length integer is too long
	// or overflows its target type.
	ErrMalformedVarint = errors.New("store: malformed variable-length integer")
	// ErrNegativeValue is returned when a negative value is passed to a
	// non-negative encoding.
	ErrNegativeValue = errors.New("store: negative value")
)

// DataOutput is a sink for bytes.
type DataOutput interface {
	io.ByteWriter
	io.Writer
}

// DataInput is a source of bytes.
type DataInput interface {
	io.ByteReader
	// ReadFull fills p entirely or returns an error.
	ReadFull(p []byte) error
}

// WriteVInt writes a non-negative int (at most math.MaxInt32) using 1-5 bytes.
func WriteVInt(out DataOutput, v int) error {
	if v < 0 {
		return ErrNegativeValue
	}
	if v > math.MaxInt32 {
		return ErrMalformedVarint
	}
	return WriteVLong(out, uint64(v))
}

// WriteVLong writes v using 1-10 bytes.
func WriteVLong(out DataOutput, v uint64) error {
	for v >= 0x80 {
		if err := out.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return out.WriteByte(byte(v))
}

// ReadVInt reads a value written by WriteVInt.
func ReadVInt(in DataInput) (int, error) {
	v, err := readUvarint(in, 5)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, ErrMalformedVarint
	}
	return int(v), nil
}

// ReadVLong reads a value written by WriteVLong.
func ReadVLong(in DataInput) (uint64, error) {
	return readUvarint(in, 10)
}

func readUvarint(in DataInput, maxBytes int) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < maxBytes; i++ {
		b, err := in.ReadByte()
		if err != nil {
			return 0, unexpected(err)
		}
		if i == 9 && b > 1 {
			return 0, ErrMalformedVarint
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
	return 0, ErrMalformedVarint
}

// WriteShort writes v as two big-endian bytes.
func WriteShort(out DataOutput, v uint16) error {
	if err := out.WriteByte(byte(v >> 8)); err != nil {
		return err
	}
	return out.WriteByte(byte(v))
}

// ReadShort reads a value written by WriteShort.
func ReadShort(in DataInput) (uint16, error) {
	hi, err := in.ReadByte()
	if err != nil {
		return 0, unexpected(err)
	}
	lo, err := in.ReadByte()
	if err != nil {
		return 0, unexpected(err)
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// WriteInt32 writes v as four big-endian bytes.
func WriteInt32(out DataOutput, v uint32) error {
	for shift := 24; shift >= 0; shift -= 8 {
		if err := out.WriteByte(byte(v >> uint(shift))); err != nil {
			return err
		}
	}
	return nil
}

// ReadInt32 reads a value written by WriteInt32.
func ReadInt32(in DataInput) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := in.ReadByte()
		if err != nil {
			return 0, unexpected(err)
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// WriteString writes s as a vInt length followed by its bytes.
func WriteString(out DataOutput, s string) error {
	if err := WriteVInt(out, len(s)); err != nil {
		return err
	}
	_, err := io.WriteString(out, s)
	return err
}

// ReadString reads a value written by WriteString. maxLen bounds the accepted
// length so corrupt input cannot trigger huge allocations.
func ReadString(in DataInput, maxLen int) (string, error) {
	n, err := ReadVInt(in)
	if err != nil {
		return "", err
	}
	if n > maxLen {
		return "", ErrMalformedVarint
	}
	buf := make([]byte, n)
	if err := in.ReadFull(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
