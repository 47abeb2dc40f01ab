package lexfst

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/lexfst/fst"
	"github.com/hupe1980/lexfst/internal/compress"
	"github.com/hupe1980/lexfst/internal/conv"
	"github.com/hupe1980/lexfst/internal/hash"
	"github.com/hupe1980/lexfst/outputs"
)

const (
	// FormatVersion is the container version written by WriteTo.
	FormatVersion = 1

	headerSize = 36
	// Bytes of the header covered by the checksum: all but the checksum.
	checksummedHeaderSize = headerSize - 4
)

// Magic identifies dictionary containers (ASCII "LXF1").
var Magic = [4]byte{'L', 'X', 'F', '1'}

const flagMonotonic uint8 = 1 << 0

// fileHeader is the 36-byte little-endian header in front of the payload.
// Checksum is the CRC32-C of the first 32 header bytes followed by the
// payload.
type fileHeader struct {
	Magic        [4]byte
	Version      uint16
	Compression  uint8
	Flags        uint8
	TermCount    uint64
	RawLength    uint64 // serialized automaton size
	StoredLength uint64 // payload size after compression
	Checksum     uint32
}

func (h *fileHeader) marshal() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, headerSize))
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, h)
	return buf.Bytes()
}

// WriteTo writes the dictionary as a self-describing container. The
// automaton is compressed as configured with WithCompression.
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	var raw bytes.Buffer
	if err := d.fst.Save(&raw); err != nil {
		return 0, fmt.Errorf("serialize automaton: %w", err)
	}

	payload, ctype, err := compress.Compress(raw.Bytes(), d.opts.compression)
	if err != nil {
		return 0, err
	}

	h := fileHeader{
		Magic:        Magic,
		Version:      FormatVersion,
		Compression:  uint8(ctype),
		TermCount:    uint64(d.terms),
		RawLength:    uint64(raw.Len()),
		StoredLength: uint64(len(payload)),
	}
	if d.monotonic {
		h.Flags |= flagMonotonic
	}
	h.Checksum = checksum(h.marshal()[:checksummedHeaderSize], payload)

	n, err := w.Write(h.marshal())
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(payload)
	return int64(n + m), err
}

func checksum(header, payload []byte) uint32 {
	crc := hash.NewCRC32C()
	crc.Write(header)
	crc.Write(payload)
	return crc.Sum32()
}

// ReadDictionary reads a container written by WriteTo. Options configure
// the returned dictionary; with a resource controller, memory for the
// automaton is reserved until Close.
func ReadDictionary(r io.Reader, optFns ...Option) (*Dictionary, error) {
	return readDictionary(r, applyOptions(optFns))
}

func readDictionary(r io.Reader, o options) (*Dictionary, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	var h fileHeader
	if err := binary.Read(bytes.NewReader(hdr[:]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, h.Magic[:])
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	storedLen, err := conv.Uint64ToInt(h.StoredLength)
	if err != nil {
		return nil, fmt.Errorf("%w: stored length: %w", ErrCorrupt, err)
	}

	// The payload is read through a limit rather than preallocated, so a
	// damaged length cannot force a huge allocation.
	var payload bytes.Buffer
	if _, err := io.Copy(&payload, io.LimitReader(r, int64(storedLen))); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if payload.Len() != storedLen {
		return nil, fmt.Errorf("%w: payload truncated (%d of %d bytes)", ErrCorrupt, payload.Len(), storedLen)
	}

	if sum := checksum(hdr[:checksummedHeaderSize], payload.Bytes()); sum != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	ctype := compress.Type(h.Compression)
	if !ctype.Valid() {
		return nil, fmt.Errorf("%w: compression %d", ErrCorrupt, h.Compression)
	}
	rawLen, err := conv.Uint64ToInt(h.RawLength)
	if err != nil {
		return nil, fmt.Errorf("%w: raw length: %w", ErrCorrupt, err)
	}
	terms, err := conv.Uint64ToInt(h.TermCount)
	if err != nil {
		return nil, fmt.Errorf("%w: term count: %w", ErrCorrupt, err)
	}

	if err := compress.CheckLength(payload.Bytes(), ctype, rawLen); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if err := o.controller.AcquireMemory(int64(rawLen)); err != nil {
		return nil, err
	}
	release := true
	defer func() {
		if release {
			o.controller.ReleaseMemory(int64(rawLen))
		}
	}()

	raw, err := compress.Decompress(payload.Bytes(), ctype, rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	f, err := fst.Load[uint64](bytes.NewReader(raw), outputs.NewPositiveIntOutputs())
	if err != nil {
		return nil, translateError(err)
	}

	d := newDictionary(f, int64(terms), h.Flags&flagMonotonic != 0, o)
	d.reserved = int64(rawLen)
	release = false
	return d, nil
}
