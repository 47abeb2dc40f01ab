// Package fst implements minimal acyclic finite state transducers.
//
// An FST maps sorted label sequences (UTF-8 bytes, UTF-16 code units or
// arbitrary non-negative ints) to outputs drawn from an [outputs.Outputs]
// algebra. A [Builder] consumes keys in ascending order and shares common
// suffixes as it goes, so the finished automaton is close to minimal. The
// compiled FST is a single byte buffer that can be traversed without
// decoding it, saved, loaded, and optionally packed into a smaller layout.
//
// Lookups:
//
//	b := fst.NewBuilder[uint64](fst.InputByte1, outputs.NewPositiveIntOutputs())
//	_ = b.AddString("cat", 5)
//	_ = b.AddString("dog", 7)
//	f, _ := b.Finish()
//	v, ok, _ := fst.GetBytes(f, []byte("dog")) // 7, true
//
// A finished FST is immutable and may be shared between goroutines. Arcs,
// readers and enums are cursors and belong to a single goroutine.
package fst
