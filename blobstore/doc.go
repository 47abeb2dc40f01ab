// Package blobstore abstracts where persisted dictionaries live.
//
// A [Store] holds immutable, named blobs. Implementations:
//
//   - [MemoryStore]: in memory, for tests and ephemeral use
//   - [LocalStore]: files below a directory, memory-mapped for reads and
//     published with an atomic rename
//   - s3.Store: Amazon S3 with ranged reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// [ReadAll] fetches a whole blob, without copying through ranged reads when
// the blob implements [Mappable].
package blobstore
