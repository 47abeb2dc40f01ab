package fst

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Get returns the output for input, and whether input is accepted.
func Get[T any](f *FST[T], input []int) (T, bool, error) {
	var arc Arc[T]
	f.FirstArc(&arc)
	in := f.BytesReader()
	output := f.noOutput
	for _, label := range input {
		found, err := f.FindTargetArc(label, &arc, &arc, in)
		if err != nil || found == nil {
			return f.noOutput, false, err
		}
		output = f.outputs.Add(output, arc.Output)
	}
	if !arc.IsFinal() {
		return f.noOutput, false, nil
	}
	return f.outputs.Add(output, arc.NextFinalOutput), true, nil
}

// GetBytes returns the output for a byte-labeled input.
func GetBytes[T any](f *FST[T], input []byte) (T, bool, error) {
	var arc Arc[T]
	f.FirstArc(&arc)
	in := f.BytesReader()
	output := f.noOutput
	for _, c := range input {
		found, err := f.FindTargetArc(int(c), &arc, &arc, in)
		if err != nil || found == nil {
			return f.noOutput, false, err
		}
		output = f.outputs.Add(output, arc.Output)
	}
	if !arc.IsFinal() {
		return f.noOutput, false, nil
	}
	return f.outputs.Add(output, arc.NextFinalOutput), true, nil
}

// GetByOutput returns the input whose output is target. Outputs must grow
// monotonically along every path, as they do for ordinals assigned in
// input order.
func GetByOutput(f *FST[uint64], target uint64) ([]int, bool, error) {
	var arc, scratch Arc[uint64]
	f.FirstArc(&arc)
	in := f.BytesReader()
	var result []int
	output := arc.Output

	for {
		if arc.IsFinal() {
			finalOutput := output + arc.NextFinalOutput
			if finalOutput == target {
				return result, true, nil
			}
			if finalOutput > target {
				return nil, false, nil
			}
		}
		if !targetHasArcs(&arc) {
			return nil, false, nil
		}
		if _, err := f.ReadFirstRealTargetArc(arc.target, &arc, in); err != nil {
			return nil, false, err
		}

		if arc.bytesPerArc != 0 {
			low, high := 0, arc.numArcs-1
			mid, exact := 0, false
			for low <= high {
				mid = int(uint(low+high) >> 1)
				in.SetPosition(arc.posArcsStart)
				in.SkipBytes(int64(arc.bytesPerArc * mid))
				flags, err := in.ReadByte()
				if err != nil {
					return nil, false, err
				}
				if _, err := f.ReadLabel(in); err != nil {
					return nil, false, err
				}
				minArcOutput := output
				if flags&bitArcHasOutput != 0 {
					arcOutput, err := f.outputs.Read(in)
					if err != nil {
						return nil, false, err
					}
					minArcOutput += arcOutput
				}
				if minArcOutput == target {
					exact = true
					break
				} else if minArcOutput < target {
					low = mid + 1
				} else {
					high = mid - 1
				}
			}
			switch {
			case high == -1:
				return nil, false, nil
			case exact:
				arc.arcIdx = mid - 1
			default:
				arc.arcIdx = low - 2
			}
			if _, err := f.ReadNextRealArc(&arc, in); err != nil {
				return nil, false, err
			}
			result = append(result, arc.Label)
			output += arc.Output
			continue
		}

		var prev *Arc[uint64]
		for {
			// The smallest output reachable through this arc.
			minArcOutput := output + arc.Output
			if minArcOutput > target {
				if prev == nil {
					return nil, false, nil
				}
				arc.CopyFrom(prev)
				result = append(result, arc.Label)
				output += arc.Output
				break
			}
			if minArcOutput == target || arc.IsLast() {
				output = minArcOutput
				result = append(result, arc.Label)
				break
			}
			prev = scratch.CopyFrom(&arc)
			if _, err := f.ReadNextRealArc(&arc, in); err != nil {
				return nil, false, err
			}
		}
	}
}

// ReadCeilArc finds the arc with the smallest label >= label leaving
// follow's target and stores it in arc. It returns nil if there is none.
func ReadCeilArc[T any](label int, f *FST[T], follow, arc *Arc[T], in BytesReader) (*Arc[T], error) {
	if label == EndLabel {
		return f.FindTargetArc(EndLabel, follow, arc, in)
	}
	if !targetHasArcs(follow) {
		return nil, nil
	}
	target := follow.target
	if _, err := f.ReadFirstTargetArc(follow, arc, in); err != nil {
		return nil, err
	}
	if arc.bytesPerArc != 0 && arc.Label != EndLabel {
		idx, _, err := f.searchArray(arc, label, arc.arcIdx, in)
		if err != nil {
			return nil, err
		}
		if idx == arc.numArcs {
			return nil, nil
		}
		arc.arcIdx = idx - 1
		return f.ReadNextRealArc(arc, in)
	}

	if _, err := f.ReadFirstRealTargetArc(target, arc, in); err != nil {
		return nil, err
	}
	for {
		if arc.Label >= label {
			return arc, nil
		}
		if arc.IsLast() {
			return nil, nil
		}
		if _, err := f.ReadNextRealArc(arc, in); err != nil {
			return nil, err
		}
	}
}

// ToInts appends the bytes of b to dst[:0] as labels.
func ToInts(b []byte, dst []int) []int {
	dst = dst[:0]
	for _, c := range b {
		dst = append(dst, int(c))
	}
	return dst
}

// ToUTF32 appends the code points of s to dst[:0].
func ToUTF32(s string, dst []int) []int {
	dst = dst[:0]
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		dst = append(dst, int(r))
		s = s[size:]
	}
	return dst
}

// ToUTF16 appends the UTF-16 code units of s to dst[:0].
func ToUTF16(s string, dst []int) []int {
	dst = dst[:0]
	for _, r := range s {
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			dst = append(dst, int(r1), int(r2))
			continue
		}
		dst = append(dst, int(r))
	}
	return dst
}

// ToBytes converts byte labels back to a byte slice.
func ToBytes(labels []int) []byte {
	b := make([]byte, len(labels))
	for i, label := range labels {
		b[i] = byte(label)
	}
	return b
}
