package fst

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hupe1980/lexfst/outputs"
	"github.com/hupe1980/lexfst/store"
)

const (
	codecMagic = 0x3fd76c17
	codecName  = "FST"

	// VersionStart is the oldest readable format; it stores the stride of
	// fixed-array nodes as a 4-byte int.
	VersionStart = 1
	// VersionVIntBytesPerArc stores fixed-array strides as vInts.
	VersionVIntBytesPerArc = 2
	// VersionCurrent is the format written by Save.
	VersionCurrent = VersionVIntBytesPerArc

	maxBlockBits = 30
	// Page size used when reading a buffer back.
	loadBlockBits = 20
)

// Save writes the FST to w.
func (f *FST[T]) Save(w io.Writer) error {
	if f.startNode == -1 {
		return ErrNotFinished
	}
	if f.nodeAddress != nil {
		return ErrNotPacked
	}

	out := store.NewOutputStream(w)
	if err := writeHeader(out, codecName, VersionCurrent); err != nil {
		return err
	}

	var packedFlag byte
	if f.packed {
		packedFlag = 1
	}
	if err := out.WriteByte(packedFlag); err != nil {
		return err
	}

	if f.hasEmptyOutput {
		if err := out.WriteByte(1); err != nil {
			return err
		}
		buf := store.NewSliceOutput(16)
		if err := f.outputs.WriteFinalOutput(f.emptyOutput, buf); err != nil {
			return err
		}
		emptyBytes := buf.Bytes()
		if !f.packed {
			// Read back with a reverse reader.
			slices.Reverse(emptyBytes)
		}
		if err := store.WriteVInt(out, len(emptyBytes)); err != nil {
			return err
		}
		if _, err := out.Write(emptyBytes); err != nil {
			return err
		}
	} else if err := out.WriteByte(0); err != nil {
		return err
	}

	if err := out.WriteByte(byte(f.inputType)); err != nil {
		return err
	}

	if f.packed {
		if err := store.WriteVInt(out, len(f.nodeRefToAddress)); err != nil {
			return err
		}
		for _, addr := range f.nodeRefToAddress {
			if err := store.WriteVLong(out, uint64(addr)); err != nil {
				return err
			}
		}
	}

	for _, v := range []int64{f.startNode, f.nodeCount, f.arcCount, f.arcWithOutputCount} {
		if err := store.WriteVLong(out, uint64(v)); err != nil {
			return err
		}
	}
	if err := store.WriteVLong(out, uint64(f.bytes.Position())); err != nil {
		return err
	}
	if _, err := f.bytes.WriteTo(out); err != nil {
		return err
	}
	return out.Flush()
}

// SaveFile writes the FST to the named file.
func (f *FST[T]) SaveFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return f.Save(file)
}

// Load reads an FST written by Save. outs must be the algebra it was built
// with.
func Load[T any](r io.Reader, outs outputs.Outputs[T]) (*FST[T], error) {
	return load(store.NewInputStream(r), outs)
}

// LoadFile reads an FST from the named file.
func LoadFile[T any](path string, outs outputs.Outputs[T]) (*FST[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(bufio.NewReader(file), outs)
}

func load[T any](in store.DataInput, outs outputs.Outputs[T]) (*FST[T], error) {
	version, err := checkHeader(in, codecName, VersionStart, VersionCurrent)
	if err != nil {
		return nil, err
	}

	f := &FST[T]{
		outputs:  outs,
		noOutput: outs.NoOutput(),
		version:  version,
	}

	b, err := in.ReadByte()
	if err != nil {
		return nil, corrupt(err)
	}
	f.packed = b == 1

	if b, err = in.ReadByte(); err != nil {
		return nil, corrupt(err)
	}
	if b == 1 {
		numBytes, err := store.ReadVInt(in)
		if err != nil {
			return nil, corrupt(err)
		}
		emptyBytes, err := readBytesStore(in, int64(numBytes), 1<<10)
		if err != nil {
			return nil, corrupt(err)
		}
		var reader BytesReader
		if f.packed {
			reader = emptyBytes.ForwardReader()
		} else {
			reader = emptyBytes.ReverseReader()
			// NoOutputs writes nothing.
			if numBytes > 0 {
				reader.SetPosition(int64(numBytes - 1))
			}
		}
		if f.emptyOutput, err = outs.ReadFinalOutput(reader); err != nil {
			return nil, corrupt(err)
		}
		f.hasEmptyOutput = true
	}

	if b, err = in.ReadByte(); err != nil {
		return nil, corrupt(err)
	}
	if InputType(b) > InputByte4 {
		return nil, fmt.Errorf("%w: invalid input type %d", ErrCorrupt, b)
	}
	f.inputType = InputType(b)

	if f.packed {
		n, err := store.ReadVInt(in)
		if err != nil {
			return nil, corrupt(err)
		}
		f.nodeRefToAddress = make([]int64, 0, min(n, 1<<16))
		for range n {
			addr, err := store.ReadVLong(in)
			if err != nil {
				return nil, corrupt(err)
			}
			f.nodeRefToAddress = append(f.nodeRefToAddress, int64(addr))
		}
	}

	var counts [5]int64
	for i := range counts {
		v, err := store.ReadVLong(in)
		if err != nil {
			return nil, corrupt(err)
		}
		counts[i] = int64(v)
	}
	f.startNode, f.nodeCount, f.arcCount, f.arcWithOutputCount = counts[0], counts[1], counts[2], counts[3]
	numBytes := counts[4]
	if numBytes < 0 || f.startNode >= max(numBytes, 1) {
		return nil, fmt.Errorf("%w: start node %d outside %d bytes", ErrCorrupt, f.startNode, numBytes)
	}

	if f.bytes, err = readBytesStore(in, numBytes, 1<<loadBlockBits); err != nil {
		return nil, corrupt(err)
	}
	if err := f.cacheRootArcs(); err != nil {
		return nil, corrupt(err)
	}
	return f, nil
}

func corrupt(err error) error {
	if errors.Is(err, ErrCorrupt) {
		return err
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrCorrupt, err)
}

func writeHeader(out store.DataOutput, codec string, version int) error {
	if err := store.WriteInt32(out, codecMagic); err != nil {
		return err
	}
	if err := store.WriteString(out, codec); err != nil {
		return err
	}
	return store.WriteInt32(out, uint32(version))
}

func checkHeader(in store.DataInput, codec string, minVersion, maxVersion int) (int, error) {
	magic, err := store.ReadInt32(in)
	if err != nil {
		return 0, corrupt(err)
	}
	if magic != codecMagic {
		return 0, fmt.Errorf("%w: header mismatch (got %#x, want %#x)", ErrCorrupt, magic, uint32(codecMagic))
	}
	name, err := store.ReadString(in, 128)
	if err != nil {
		return 0, corrupt(err)
	}
	if name != codec {
		return 0, fmt.Errorf("%w: codec mismatch (got %q, want %q)", ErrCorrupt, name, codec)
	}
	v, err := store.ReadInt32(in)
	if err != nil {
		return 0, corrupt(err)
	}
	version := int(int32(v))
	if version < minVersion {
		return 0, &FormatTooOldError{Version: version, MinVersion: minVersion}
	}
	if version > maxVersion {
		return 0, &FormatTooNewError{Version: version, MaxVersion: maxVersion}
	}
	return version, nil
}
