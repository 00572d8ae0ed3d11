//go:build unix

// Package ioutil maps a source file into memory for the CLI's file-to-file
// compress/decompress path, so a multi-megabyte input is not read into a
// second, heap-allocated copy before the encoder ever touches it. The
// teacher module's only use of golang.org/x/sys was unix-build CPU feature
// detection for SIMD matching (v04/simd); this compressor has no SIMD or
// parallel encoding path, so the same dependency is repurposed here for
// golang.org/x/sys/unix's Mmap.
package ioutil

import (
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile is a read-only view of a file's contents backed by mmap.
type MappedFile struct {
	data []byte
	f    *os.File
}

// OpenMapped opens path and maps its entire contents read-only. Empty
// files are returned with a nil Bytes() slice rather than mapped (mmap
// rejects zero-length mappings).
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		return &MappedFile{f: f}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MappedFile{data: data, f: f}, nil
}

// Bytes returns the mapped file contents. The slice is only valid until
// Close is called.
func (m *MappedFile) Bytes() []byte { return m.data }

// Close unmaps the file and closes the underlying descriptor.
func (m *MappedFile) Close() error {
	var unmapErr error
	if m.data != nil {
		unmapErr = unix.Munmap(m.data)
	}
	if err := m.f.Close(); err != nil && unmapErr == nil {
		return err
	}
	return unmapErr
}
