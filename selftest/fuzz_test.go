package selftest

import (
	"bytes"
	"testing"

	"github.com/go4x/lz4x/frame"
)

// FuzzRoundtrip feeds arbitrary byte slices through the default frame
// options and checks the round trip, the same property TestRoundtripAllScenariosAllOptions
// checks for the named scenarios, but over whatever the fuzzer discovers.
func FuzzRoundtrip(f *testing.F) {
	for _, data := range scenarios() {
		f.Add(data)
	}
	f.Add([]byte{})
	f.Add([]byte{0xFF})
	f.Add(bytes.Repeat([]byte{0xFF}, 300))

	f.Fuzz(func(t *testing.T, data []byte) {
		opt := Option{Name: "fuzz", BlockMaxCode: 4}
		if err := Roundtrip(data, opt); err != nil {
			t.Fatal(err)
		}
	})
}

// FuzzDecompressNeverPanics feeds arbitrary bytes directly into the Reader
// as if they were a frame: a corrupt or adversarial stream must error,
// never panic.
func FuzzDecompressNeverPanics(f *testing.F) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	_, _ = w.Write(bytes.Repeat([]byte("seed corpus data"), 100))
	_ = w.Close()
	f.Add(buf.Bytes())
	f.Add([]byte{0x04, 0x22, 0x4D, 0x18})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := frame.NewReader(bytes.NewReader(data))
		buf := make([]byte, 4096)
		for {
			_, err := r.Read(buf)
			if err != nil {
				break
			}
		}
	})
}
