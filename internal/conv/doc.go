// Package conv provides checked integer conversions for lengths and counts
// read from persisted dictionaries. Every failure wraps ErrOverflow.
package conv
