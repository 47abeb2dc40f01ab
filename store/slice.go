package store

import "io"

// SliceOutput is a growable in-memory DataOutput.
type SliceOutput struct {
	buf []byte
}

// NewSliceOutput returns a SliceOutput with the given initial capacity.
func NewSliceOutput(capacity int) *SliceOutput {
	return &SliceOutput{buf: make([]byte, 0, capacity)}
}

// WriteByte implements io.ByteWriter.
func (o *SliceOutput) WriteByte(b byte) error {
	o.buf = append(o.buf, b)
	return nil
}

// Write implements io.Writer.
func (o *SliceOutput) Write(p []byte) (int, error) {
	o.buf = append(o.buf, p...)
	return len(p), nil
}

// Bytes returns the bytes written so far. The slice aliases the internal buffer.
func (o *SliceOutput) Bytes() []byte { return o.buf }

// Len returns the number of bytes written.
func (o *SliceOutput) Len() int { return len(o.buf) }

// Reset discards all written bytes, keeping the allocation.
func (o *SliceOutput) Reset() { o.buf = o.buf[:0] }

// SliceInput reads from a byte slice.
type SliceInput struct {
	buf []byte
	pos int
}

// NewSliceInput returns a SliceInput positioned at the start of buf.
func NewSliceInput(buf []byte) *SliceInput {
	return &SliceInput{buf: buf}
}

// ReadByte implements io.ByteReader.
func (in *SliceInput) ReadByte() (byte, error) {
	if in.pos >= len(in.buf) {
		return 0, io.EOF
	}
	b := in.buf[in.pos]
	in.pos++
	return b, nil
}

// ReadFull implements DataInput.
func (in *SliceInput) ReadFull(p []byte) error {
	if len(in.buf)-in.pos < len(p) {
		in.pos = len(in.buf)
		return io.ErrUnexpectedEOF
	}
	in.pos += copy(p, in.buf[in.pos:])
	return nil
}

// Position returns the current read offset.
func (in *SliceInput) Position() int { return in.pos }

// SetPosition moves the read offset.
func (in *SliceInput) SetPosition(pos int) { in.pos = pos }

// Remaining returns the number of unread bytes.
func (in *SliceInput) Remaining() int { return len(in.buf) - in.pos }
