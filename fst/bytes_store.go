package fst

import (
	"io"

	"github.com/hupe1980/lexfst/store"
)

// BytesReader reads bytes out of an FST, either forwards or backwards.
type BytesReader interface {
	store.DataInput
	// Position returns the current read position.
	Position() int64
	// SetPosition moves to an absolute position.
	SetPosition(pos int64)
	// SkipBytes moves n bytes in the reading direction.
	SkipBytes(n int64)
	// Reversed reports whether reads move towards lower positions.
	Reversed() bool
}

// BytesStore is an append-only buffer of fixed-size blocks. Regions already
// written may be overwritten in place, but absolute writes never grow the
// buffer.
type BytesStore struct {
	blocks    [][]byte
	blockSize int
	blockBits uint
	blockMask int64
	current   []byte
	nextWrite int
}

// NewBytesStore returns an empty store paged in blocks of 1<<blockBits bytes.
func NewBytesStore(blockBits int) *BytesStore {
	size := 1 << blockBits
	return &BytesStore{
		blockSize: size,
		blockBits: uint(blockBits),
		blockMask: int64(size - 1),
		nextWrite: size,
	}
}

// readBytesStore copies numBytes from in, choosing a block size no larger
// than maxBlockSize.
func readBytesStore(in store.DataInput, numBytes int64, maxBlockSize int) (*BytesStore, error) {
	blockSize, blockBits := 2, 1
	for int64(blockSize) < numBytes && blockSize < maxBlockSize {
		blockSize *= 2
		blockBits++
	}
	s := NewBytesStore(blockBits)
	left := numBytes
	for left > 0 {
		chunk := int(min(int64(blockSize), left))
		block := make([]byte, chunk)
		if err := in.ReadFull(block); err != nil {
			return nil, err
		}
		s.blocks = append(s.blocks, block)
		left -= int64(chunk)
	}
	if n := len(s.blocks); n > 0 {
		s.nextWrite = len(s.blocks[n-1])
	}
	return s, nil
}

// WriteByte appends b.
func (s *BytesStore) WriteByte(b byte) error {
	if s.nextWrite == s.blockSize {
		s.current = make([]byte, s.blockSize)
		s.blocks = append(s.blocks, s.current)
		s.nextWrite = 0
	}
	s.current[s.nextWrite] = b
	s.nextWrite++
	return nil
}

// Write appends p.
func (s *BytesStore) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if s.nextWrite == s.blockSize {
			s.current = make([]byte, s.blockSize)
			s.blocks = append(s.blocks, s.current)
			s.nextWrite = 0
		}
		c := copy(s.current[s.nextWrite:], p)
		s.nextWrite += c
		p = p[c:]
	}
	return n, nil
}

// Position returns the number of bytes written so far.
func (s *BytesStore) Position() int64 {
	return int64(len(s.blocks)-1)*int64(s.blockSize) + int64(s.nextWrite)
}

// BlockBits returns the log2 page size.
func (s *BytesStore) BlockBits() int { return int(s.blockBits) }

func (s *BytesStore) writeByteAt(dest int64, b byte) {
	s.blocks[dest>>s.blockBits][dest&s.blockMask] = b
}

func (s *BytesStore) writeBytesAt(dest int64, p []byte) {
	for len(p) > 0 {
		block := s.blocks[dest>>s.blockBits]
		c := copy(block[dest&s.blockMask:], p)
		p = p[c:]
		dest += int64(c)
	}
}

func (s *BytesStore) readBytesAt(src int64, p []byte) {
	for len(p) > 0 {
		block := s.blocks[src>>s.blockBits]
		c := copy(p, block[src&s.blockMask:])
		p = p[c:]
		src += int64(c)
	}
}

// copyBytes moves n bytes from src to dest; the ranges may overlap.
func (s *BytesStore) copyBytes(src, dest int64, n int) {
	tmp := make([]byte, n)
	s.readBytesAt(src, tmp)
	s.writeBytesAt(dest, tmp)
}

// writeInt32At overwrites four bytes at pos, big-endian.
func (s *BytesStore) writeInt32At(pos int64, v uint32) {
	s.writeByteAt(pos, byte(v>>24))
	s.writeByteAt(pos+1, byte(v>>16))
	s.writeByteAt(pos+2, byte(v>>8))
	s.writeByteAt(pos+3, byte(v))
}

// reverse flips the bytes between src and dest, both inclusive.
func (s *BytesStore) reverse(src, dest int64) {
	for src < dest {
		sb := &s.blocks[src>>s.blockBits][src&s.blockMask]
		db := &s.blocks[dest>>s.blockBits][dest&s.blockMask]
		*sb, *db = *db, *sb
		src++
		dest--
	}
}

// skipBytes reserves n bytes at the end of the buffer. Negative counts are
// ignored.
func (s *BytesStore) skipBytes(n int) {
	for n > 0 {
		if s.nextWrite == s.blockSize {
			s.current = make([]byte, s.blockSize)
			s.blocks = append(s.blocks, s.current)
			s.nextWrite = 0
		}
		chunk := min(n, s.blockSize-s.nextWrite)
		s.nextWrite += chunk
		n -= chunk
	}
}

// truncate drops everything at and after newLen.
func (s *BytesStore) truncate(newLen int64) {
	blockIndex := int(newLen >> s.blockBits)
	s.nextWrite = int(newLen & s.blockMask)
	if s.nextWrite == 0 {
		blockIndex--
		s.nextWrite = s.blockSize
	}
	for i := blockIndex + 1; i < len(s.blocks); i++ {
		s.blocks[i] = nil
	}
	s.blocks = s.blocks[:blockIndex+1]
	if newLen == 0 {
		s.current = nil
	} else {
		s.current = s.blocks[blockIndex]
	}
}

// finish trims the last block; no writes may follow.
func (s *BytesStore) finish() {
	if s.current != nil {
		s.blocks[len(s.blocks)-1] = s.current[:s.nextWrite]
		s.current = nil
	}
}

// WriteTo writes every stored byte to w.
func (s *BytesStore) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, block := range s.blocks {
		if i == len(s.blocks)-1 && s.current != nil {
			block = block[:s.nextWrite]
		}
		n, err := w.Write(block)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *BytesStore) byteAt(pos int64) (byte, error) {
	if pos < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	bi := pos >> s.blockBits
	if bi >= int64(len(s.blocks)) {
		return 0, io.ErrUnexpectedEOF
	}
	block := s.blocks[bi]
	off := pos & s.blockMask
	if off >= int64(len(block)) || pos >= s.Position() {
		return 0, io.ErrUnexpectedEOF
	}
	return block[off], nil
}

// ForwardReader returns a reader whose position increases as it reads.
func (s *BytesStore) ForwardReader() BytesReader { return &forwardReader{s: s} }

// ReverseReader returns a reader whose position decreases as it reads.
func (s *BytesStore) ReverseReader() BytesReader { return &reverseReader{s: s} }

type forwardReader struct {
	s   *BytesStore
	pos int64
}

func (r *forwardReader) ReadByte() (byte, error) {
	b, err := r.s.byteAt(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

func (r *forwardReader) ReadFull(p []byte) error {
	if r.pos < 0 || r.pos+int64(len(p)) > r.s.Position() {
		return io.ErrUnexpectedEOF
	}
	r.s.readBytesAt(r.pos, p)
	r.pos += int64(len(p))
	return nil
}

func (r *forwardReader) Position() int64       { return r.pos }
func (r *forwardReader) SetPosition(pos int64) { r.pos = pos }
func (r *forwardReader) SkipBytes(n int64)     { r.pos += n }
func (r *forwardReader) Reversed() bool        { return false }

type reverseReader struct {
	s   *BytesStore
	pos int64
}

func (r *reverseReader) ReadByte() (byte, error) {
	b, err := r.s.byteAt(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos--
	return b, nil
}

func (r *reverseReader) ReadFull(p []byte) error {
	for i := range p {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

func (r *reverseReader) Position() int64       { return r.pos }
func (r *reverseReader) SetPosition(pos int64) { r.pos = pos }
func (r *reverseReader) SkipBytes(n int64)     { r.pos -= n }
func (r *reverseReader) Reversed() bool        { return true }
