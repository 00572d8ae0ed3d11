package bench

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/go4x/lz4x"
	"github.com/go4x/lz4x/frame"
)

const (
	smallSize  = 1 << 10 // 1KB
	mediumSize = 1 << 16 // 64KB
	largeSize  = 1 << 20 // 1MB
)

var (
	// Package-level sinks so the compiler can't optimize the work away.
	blockResult  []byte
	streamResult []byte
	benchErr     error
)

// generateData produces size bytes with the requested compressibility:
// 0 is random (incompressible), 1 is all zeros, values in between repeat a
// pattern sized to approximate that ratio.
func generateData(size int, compressibility float64) []byte {
	data := make([]byte, size)
	if compressibility <= 0 {
		rand.Read(data)
		return data
	}
	if compressibility >= 1 {
		return data
	}

	patternSize := int(float64(size) * (1 - compressibility))
	if patternSize < 4 {
		patternSize = 4
	}
	pattern := make([]byte, patternSize)
	rand.Read(pattern)
	for i := 0; i < size; i += patternSize {
		n := copy(data[i:], pattern)
		if n < patternSize {
			break
		}
	}
	return data
}

func BenchmarkCompressBlock(b *testing.B) {
	for _, size := range []int{smallSize, mediumSize} {
		sizeName := "Small"
		if size == mediumSize {
			sizeName = "Medium"
		}
		for _, comp := range []float64{0.0, 0.5, 0.9} {
			compName := map[float64]string{0.0: "Random", 0.5: "Mixed", 0.9: "Compressible"}[comp]
			data := generateData(size, comp)

			b.Run(sizeName+"_"+compName, func(b *testing.B) {
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					blockResult, benchErr = lz4x.CompressBlock(data, nil)
					if benchErr != nil && blockResult == nil {
						b.Fatal(benchErr)
					}
				}
				b.ReportMetric(float64(len(blockResult))/float64(len(data)), "ratio")
				b.SetBytes(int64(len(data)))
			})
		}
	}
}

func BenchmarkDecompressBlock(b *testing.B) {
	data := generateData(mediumSize, 0.7)
	compressed, err := lz4x.CompressBlock(data, nil)
	if err != nil && compressed == nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		blockResult, benchErr = lz4x.DecompressBlock(compressed, nil, len(data))
		if benchErr != nil {
			b.Fatal(benchErr)
		}
	}
}

func BenchmarkStreamRoundtrip(b *testing.B) {
	for _, indep := range []bool{false, true} {
		name := "Dependent"
		var flags lz4x.Flags
		if indep {
			name = "Independent"
			flags = lz4x.FlagIndependentBlocks
		}
		data := generateData(largeSize, 0.6)

		b.Run(name, func(b *testing.B) {
			b.ResetTimer()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				var buf bytes.Buffer
				w := frame.NewWriterOptions(&buf, frame.WriterOptions{Flags: flags, BlockMaxCode: 6})
				if _, err := w.Write(data); err != nil {
					b.Fatal(err)
				}
				if err := w.Close(); err != nil {
					b.Fatal(err)
				}
				streamResult = buf.Bytes()
			}
			b.ReportMetric(float64(len(streamResult))/float64(len(data)), "ratio")
		})
	}
}
