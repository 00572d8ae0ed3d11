package frame_test

import (
	"bytes"
	"io"
	"testing"

	pierreclz4 "github.com/pierrec/lz4/v4"

	"github.com/go4x/lz4x/frame"
	"github.com/go4x/lz4x/internal/blockcodec"
)

// These tests decode this package's frame output with github.com/pierrec/lz4,
// an independent, widely used LZ4 implementation: a conforming third-party
// decoder must accept the stream and reproduce the source bytes, not just
// this module's own verify.DecompressBlock.
func conformanceCases() []string {
	return []string{
		"",
		"x",
		"the quick brown fox jumps over the lazy dog",
		string(bytes.Repeat([]byte("abcdefgh"), 5000)),
		string(bytes.Repeat([]byte{0}, 1<<20)),
	}
}

func decodeWithPierrec(t *testing.T, framed []byte) []byte {
	t.Helper()
	r := pierreclz4.NewReader(bytes.NewReader(framed))
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("pierrec/lz4 failed to decode our frame: %v", err)
	}
	return out
}

func TestFrameConformsToThirdPartyDecoderIndependentBlocks(t *testing.T) {
	for _, data := range conformanceCases() {
		var buf bytes.Buffer
		w := frame.NewWriterOptions(&buf, frame.WriterOptions{
			Flags:        blockcodec.FlagIndependentBlocks,
			BlockMaxCode: 6,
		})
		if _, err := io.WriteString(w, data); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		got := decodeWithPierrec(t, buf.Bytes())
		if string(got) != data {
			t.Fatalf("pierrec decode mismatch for %d-byte input: got %d bytes, want %d", len(data), len(got), len(data))
		}
	}
}

func TestFrameConformsToThirdPartyDecoderFavorRatio(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 4000)
	var buf bytes.Buffer
	w := frame.NewWriterOptions(&buf, frame.WriterOptions{
		Flags:        blockcodec.FlagIndependentBlocks | blockcodec.FlagFavorRatio,
		BlockMaxCode: 5,
	})
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := decodeWithPierrec(t, buf.Bytes())
	if !bytes.Equal(got, data) {
		t.Fatalf("pierrec decode mismatch")
	}
}
