package fst

// IntsEnum iterates and seeks over an FST with int labels. The returned
// InputOutput, including its Input slice, is reused by the next call.
type IntsEnum[T any] struct {
	e      enum[T]
	result InputOutput[[]int, T]
}

// NewIntsEnum returns an enum positioned before the first key.
func NewIntsEnum[T any](f *FST[T]) *IntsEnum[T] {
	ie := &IntsEnum[T]{}
	ie.e.init(f)
	return ie
}

// Current returns the current key, or nil when not positioned.
func (ie *IntsEnum[T]) Current() *InputOutput[[]int, T] {
	if !ie.e.positioned() {
		return nil
	}
	return &ie.result
}

// Next advances to the next key. It returns nil at the end.
func (ie *IntsEnum[T]) Next() (*InputOutput[[]int, T], error) {
	if err := ie.e.doNext(); err != nil {
		return nil, err
	}
	return ie.setResult(), nil
}

// SeekCeil positions on the smallest key >= target.
func (ie *IntsEnum[T]) SeekCeil(target []int) (*InputOutput[[]int, T], error) {
	ie.e.target = append(ie.e.target[:0], target...)
	if err := ie.e.doSeekCeil(); err != nil {
		return nil, err
	}
	return ie.setResult(), nil
}

// SeekFloor positions on the largest key <= target.
func (ie *IntsEnum[T]) SeekFloor(target []int) (*InputOutput[[]int, T], error) {
	ie.e.target = append(ie.e.target[:0], target...)
	if err := ie.e.doSeekFloor(); err != nil {
		return nil, err
	}
	return ie.setResult(), nil
}

// SeekExact positions on target, or returns nil if it is not accepted.
func (ie *IntsEnum[T]) SeekExact(target []int) (*InputOutput[[]int, T], error) {
	ie.e.target = append(ie.e.target[:0], target...)
	ok, err := ie.e.doSeekExact()
	if err != nil || !ok {
		return nil, err
	}
	return ie.setResult(), nil
}

func (ie *IntsEnum[T]) setResult() *InputOutput[[]int, T] {
	if !ie.e.positioned() {
		return nil
	}
	ie.result.Input = ie.e.key()
	ie.result.Output = ie.e.output[ie.e.upto]
	return &ie.result
}
