// Package mmap provides read-only memory-mapped access to signature files.
//
// Local signature stores are decoded straight from the mapping, which avoids
// copying multi-hundred-megabyte NPY files through a read buffer before the
// values land in the store arena.
//
//	m, err := mmap.Open("signatures.npy")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.HintSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
