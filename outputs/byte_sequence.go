package outputs

import (
	"encoding/hex"

	"github.com/hupe1980/lexfst/store"
)

// ByteSequenceOutputs is the algebra of byte strings.
type ByteSequenceOutputs struct {
	seq sequence[byte]
}

var _ Outputs[[]byte] = (*ByteSequenceOutputs)(nil)

var byteSequenceSingleton = &ByteSequenceOutputs{
	seq: sequence[byte]{
		noOutput:  []byte{},
		writeElem: func(out store.DataOutput, e byte) error { return out.WriteByte(e) },
		readElem:  func(in store.DataInput) (byte, error) { return in.ReadByte() },
		hashElem:  func(e byte) uint64 { return uint64(e) },
	},
}

// NewByteSequenceOutputs returns the shared byte-sequence algebra.
func NewByteSequenceOutputs() *ByteSequenceOutputs { return byteSequenceSingleton }

func (o *ByteSequenceOutputs) Common(a, b []byte) []byte          { return o.seq.common(a, b) }
func (o *ByteSequenceOutputs) Subtract(output, inc []byte) []byte { return o.seq.subtract(output, inc) }
func (o *ByteSequenceOutputs) Add(prefix, output []byte) []byte   { return o.seq.add(prefix, output) }

// Merge is not supported.
func (o *ByteSequenceOutputs) Merge(a, _ []byte) ([]byte, error) { return a, ErrMergeNotSupported }

// Write writes a vInt length followed by the raw bytes.
func (o *ByteSequenceOutputs) Write(v []byte, out store.DataOutput) error {
	if err := store.WriteVInt(out, len(v)); err != nil {
		return err
	}
	_, err := out.Write(v)
	return err
}

func (o *ByteSequenceOutputs) WriteFinalOutput(v []byte, out store.DataOutput) error {
	return o.Write(v, out)
}

func (o *ByteSequenceOutputs) Read(in store.DataInput) ([]byte, error) {
	n, err := store.ReadVInt(in)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return o.seq.noOutput, nil
	}
	res := make([]byte, n)
	if err := in.ReadFull(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (o *ByteSequenceOutputs) ReadFinalOutput(in store.DataInput) ([]byte, error) {
	return o.Read(in)
}

func (o *ByteSequenceOutputs) NoOutput() []byte         { return o.seq.noOutput }
func (o *ByteSequenceOutputs) IsNoOutput(v []byte) bool { return len(v) == 0 }
func (o *ByteSequenceOutputs) Equal(a, b []byte) bool   { return o.seq.equal(a, b) }
func (o *ByteSequenceOutputs) Hash(v []byte) uint64     { return o.seq.hash(v) }
func (o *ByteSequenceOutputs) String(v []byte) string   { return hex.EncodeToString(v) }
