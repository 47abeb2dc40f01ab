package store

import (
	"bufio"
	"io"
)

// OutputStream adapts an io.Writer to DataOutput and counts written bytes.
// Call Flush once writing is done.
type OutputStream struct {
	w *bufio.Writer
	n int64
}

// NewOutputStream returns a buffered OutputStream over w.
func NewOutputStream(w io.Writer) *OutputStream {
	return &OutputStream{w: bufio.NewWriter(w)}
}

// WriteByte implements io.ByteWriter.
func (o *OutputStream) WriteByte(b byte) error {
	if err := o.w.WriteByte(b); err != nil {
		return err
	}
	o.n++
	return nil
}

// Write implements io.Writer.
func (o *OutputStream) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	o.n += int64(n)
	return n, err
}

// Flush writes buffered data to the underlying writer.
func (o *OutputStream) Flush() error { return o.w.Flush() }

// Count returns the number of bytes written through the stream.
func (o *OutputStream) Count() int64 { return o.n }

// InputStream adapts an io.Reader to DataInput.
type InputStream struct {
	r *bufio.Reader
	n int64
}

// NewInputStream returns a buffered InputStream over r.
func NewInputStream(r io.Reader) *InputStream {
	if br, ok := r.(*bufio.Reader); ok {
		return &InputStream{r: br}
	}
	return &InputStream{r: bufio.NewReader(r)}
}

// ReadByte implements io.ByteReader.
func (in *InputStream) ReadByte() (byte, error) {
	b, err := in.r.ReadByte()
	if err == nil {
		in.n++
	}
	return b, err
}

// ReadFull implements DataInput.
func (in *InputStream) ReadFull(p []byte) error {
	n, err := io.ReadFull(in.r, p)
	in.n += int64(n)
	return unexpected(err)
}

// Count returns the number of bytes consumed from the stream.
func (in *InputStream) Count() int64 { return in.n }
