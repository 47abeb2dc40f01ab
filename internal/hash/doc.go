// Package hash provides the CRC32-Castagnoli checksums that guard persisted
// dictionaries and S3 uploads.
//
// One-shot:
//
//	sum := hash.CRC32C(payload)
//
// Streaming over several buffers:
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(payload)
//	sum := h.Sum32()
package hash
