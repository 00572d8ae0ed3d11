package verify

import (
	"bytes"
	"testing"

	"github.com/go4x/lz4x/internal/matchtab"
	"github.com/go4x/lz4x/internal/optimize"
	"github.com/go4x/lz4x/internal/token"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	matches := make([]matchtab.Match, len(data))
	for i := range data {
		if i+4 <= len(data) {
			for j := 0; j < i; j++ {
				if bytes.Equal(data[j:min(j+4, len(data))], data[i:min(i+4, len(data))]) && j != i {
					l := 4
					for i+l < len(data) && j+l < i && data[j+l] == data[i+l] {
						l++
					}
					if int(matches[i].Length) < l {
						matches[i] = matchtab.Match{Length: int32(l), Offset: int32(i - j)}
					}
				}
			}
		}
	}
	optimize.Matches(matches, 0, len(data), true)
	optimize.ReduceCommandCount(matches, data, 0, len(data))
	out, _, err := token.Write(nil, data, 0, len(data), matches, false)
	if err != nil {
		t.Fatalf("token.Write: %v", err)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestDecompressRoundtripLiteralsOnly(t *testing.T) {
	data := []byte("no repeats here!")
	out := compress(t, data)

	dst := make([]byte, len(data)+16)
	n, err := DecompressBlock(out, dst, 0)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(dst[:n], data) {
		t.Fatalf("roundtrip mismatch: got %q, want %q", dst[:n], data)
	}
}

func TestDecompressRoundtripWithMatches(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 20)
	out := compress(t, data)

	dst := make([]byte, len(data)+16)
	n, err := DecompressBlock(out, dst, 0)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(dst[:n], data) {
		t.Fatalf("roundtrip mismatch: got %d bytes, want %d", n, len(data))
	}
}

func TestDecompressTruncatedErrors(t *testing.T) {
	dst := make([]byte, 16)
	if _, err := DecompressBlock([]byte{0xf0}, dst, 0); err == nil {
		t.Fatal("expected error on truncated varlen literal run")
	}
}

func TestDecompressRejectsNegativeSourcePosition(t *testing.T) {
	// token: 0 literals, match length nibble 0 (encoded len 0 -> actual 4),
	// offset bytes larger than the current output position.
	src := []byte{0x00, 0xff, 0xff}
	dst := make([]byte, 16)
	if _, err := DecompressBlock(src, dst, 0); err == nil {
		t.Fatal("expected error for match reaching before start of output")
	}
}
