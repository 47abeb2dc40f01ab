package fst

// BytesEnum iterates and seeks over an FST with byte labels. The returned
// InputOutput is reused by the next call.
type BytesEnum[T any] struct {
	e      enum[T]
	buf    []byte
	result InputOutput[[]byte, T]
}

// NewBytesEnum returns an enum positioned before the first key.
func NewBytesEnum[T any](f *FST[T]) *BytesEnum[T] {
	be := &BytesEnum[T]{}
	be.e.init(f)
	return be
}

// Current returns the current key, or nil when not positioned.
func (be *BytesEnum[T]) Current() *InputOutput[[]byte, T] {
	if !be.e.positioned() {
		return nil
	}
	return &be.result
}

// Next advances to the next key. It returns nil at the end.
func (be *BytesEnum[T]) Next() (*InputOutput[[]byte, T], error) {
	if err := be.e.doNext(); err != nil {
		return nil, err
	}
	return be.setResult(), nil
}

// SeekCeil positions on the smallest key >= target. It returns nil if there
// is none.
func (be *BytesEnum[T]) SeekCeil(target []byte) (*InputOutput[[]byte, T], error) {
	be.setTarget(target)
	if err := be.e.doSeekCeil(); err != nil {
		return nil, err
	}
	return be.setResult(), nil
}

// SeekFloor positions on the largest key <= target. It returns nil if there
// is none.
func (be *BytesEnum[T]) SeekFloor(target []byte) (*InputOutput[[]byte, T], error) {
	be.setTarget(target)
	if err := be.e.doSeekFloor(); err != nil {
		return nil, err
	}
	return be.setResult(), nil
}

// SeekExact positions on target. It returns nil if target is not accepted,
// in which case Current also returns nil until the enum moves again.
func (be *BytesEnum[T]) SeekExact(target []byte) (*InputOutput[[]byte, T], error) {
	be.setTarget(target)
	ok, err := be.e.doSeekExact()
	if err != nil || !ok {
		return nil, err
	}
	return be.setResult(), nil
}

func (be *BytesEnum[T]) setTarget(target []byte) {
	be.e.target = ToInts(target, be.e.target)
}

func (be *BytesEnum[T]) setResult() *InputOutput[[]byte, T] {
	if !be.e.positioned() {
		return nil
	}
	be.buf = be.buf[:0]
	for _, label := range be.e.key() {
		be.buf = append(be.buf, byte(label))
	}
	be.result.Input = be.buf
	be.result.Output = be.e.output[be.e.upto]
	return &be.result
}
