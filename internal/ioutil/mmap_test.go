package ioutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMappedReadsContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	want := bytes.Repeat([]byte("mmap me "), 1000)
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	mf, err := OpenMapped(path)
	if err != nil {
		t.Fatalf("OpenMapped: %v", err)
	}
	defer mf.Close()

	if !bytes.Equal(mf.Bytes(), want) {
		t.Fatal("mapped contents do not match the file")
	}
}

func TestOpenMappedEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	mf, err := OpenMapped(path)
	if err != nil {
		t.Fatalf("OpenMapped: %v", err)
	}
	defer mf.Close()

	if len(mf.Bytes()) != 0 {
		t.Fatalf("expected an empty mapping, got %d bytes", len(mf.Bytes()))
	}
}
