// Package compress wraps the LZ4 and Zstandard codecs used for persisted
// dictionary payloads. Payloads are single blocks; the caller records the
// effective Type and the raw length next to the compressed bytes.
package compress
