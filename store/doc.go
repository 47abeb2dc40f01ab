// Package store provides the byte-stream primitives shared by the FST engine
// and its output algebras.
//
// DataOutput and DataInput are deliberately small: a byte writer/reader plus a
// bulk operation. The variable-length integer codecs in this package write
// 7 bits per byte, least significant group first, with the high bit set on
// every byte except the last.
package store
