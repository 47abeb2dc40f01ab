// Package fs abstracts the file operations of the local blob store so that
// tests can inject I/O failures.
//
// [LocalFS] delegates to the os package and [FaultyFS] wraps any
// [FileSystem] with per-file fault rules. [WriteFileAtomic] publishes a
// file through a synced temporary file and a rename:
//
//	err := fs.WriteFileAtomic(fs.Default, path, func(w io.Writer) error {
//		_, err := w.Write(payload)
//		return err
//	})
package fs
