// Package mmap maps persisted dictionaries into memory read-only so that
// the local blob store can serve them without copying.
//
//	m, err := mmap.Open(path)
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Bytes must not be used after Close.
package mmap
