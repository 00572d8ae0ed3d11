//go:build !unix

package ioutil

import "os"

// MappedFile is a read-only view of a file's contents. On non-unix
// platforms (no golang.org/x/sys/unix.Mmap) it falls back to a plain read.
type MappedFile struct {
	data []byte
}

// OpenMapped reads path's entire contents.
func OpenMapped(path string) (*MappedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &MappedFile{data: data}, nil
}

// Bytes returns the file contents.
func (m *MappedFile) Bytes() []byte { return m.data }

// Close is a no-op on this platform.
func (m *MappedFile) Close() error { return nil }
