// Package selftest implements the property-based checks a conforming
// implementation must pass: round-trip, bounded expansion, offset/grammar
// bounds, stability, robustness against corrupted input, and guard-byte
// invariance, plus a handful of named end-to-end scenarios. It is
// exercised both as `go test` (selftest_test.go, fuzz_test.go) and as the
// CLI's `-test` subcommand (cmd/lz4x), mirroring lz4ultra.c's own
// `-cbench`/`-dbench`/verify passes bundled into one driver.
package selftest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go4x/lz4x/frame"
	"github.com/go4x/lz4x/internal/blockcodec"
)

// Option bundles one combination of stream options under test.
type Option struct {
	Name         string
	Flags        blockcodec.Flags
	BlockMaxCode int
}

// Options enumerates every (block_max_code, independent_blocks,
// favor_decode_speed) combination of the modern frame, plus the legacy
// frame, that the round-trip property must hold for. Raw blocks are not
// included: Roundtrip always goes through package frame.
func Options() []Option {
	var out []Option
	for code := 4; code <= 7; code++ {
		for _, indep := range []bool{false, true} {
			for _, ratio := range []bool{false, true} {
				var flags blockcodec.Flags
				name := fmt.Sprintf("B%d", code)
				if indep {
					flags |= blockcodec.FlagIndependentBlocks
					name += "-indep"
				} else {
					name += "-dep"
				}
				if ratio {
					flags |= blockcodec.FlagFavorRatio
					name += "-favorRatio"
				} else {
					name += "-favorDecSpeed"
				}
				out = append(out, Option{Name: name, Flags: flags, BlockMaxCode: code})
			}
		}
	}
	out = append(out, Option{Name: "legacy", Flags: blockcodec.FlagLegacyFrames})
	return out
}

// Roundtrip compresses data under opt's flags/frame as a full stream and
// decompresses it, returning an error if the result doesn't match.
func Roundtrip(data []byte, opt Option) error {
	var buf bytes.Buffer
	w := frame.NewWriterOptions(&buf, frame.WriterOptions{Flags: opt.Flags, BlockMaxCode: opt.BlockMaxCode})
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("selftest: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("selftest: close: %w", err)
	}

	if max := BoundedExpansion(len(data), opt.BlockMaxCode, opt.Flags); buf.Len() > max {
		return fmt.Errorf("selftest: bounded-expansion violated: got %d bytes, bound %d", buf.Len(), max)
	}

	r := frame.NewReader(&buf)
	got, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("selftest: read: %w", err)
	}
	if !bytes.Equal(got, data) {
		return fmt.Errorf("selftest: roundtrip mismatch for %q (%d bytes)", opt.Name, len(data))
	}
	return nil
}

// BoundedExpansion returns the worst-case acceptable output size for an
// n-byte input under the given block size/flags: header + one 4-byte
// block length word per block, plus the input, plus the footer.
func BoundedExpansion(n int, blockMaxCode int, flags blockcodec.Flags) int {
	blockMax := frame.BlockMaxSize(blockMaxCode)
	if flags&blockcodec.FlagLegacyFrames != 0 {
		blockMax = 1 << 23
	}
	numBlocks := (n + blockMax - 1) / blockMax
	if numBlocks == 0 {
		numBlocks = 1
	}
	const headerSize = 7 // magic+flags+blockdesc+checksum (legacy: 4, smaller is fine for an upper bound)
	const frameSize = 4  // per-block length word
	const footerSize = 4
	return headerSize + numBlocks*frameSize + n + footerSize
}

// Stability checks that compressing data twice with identical options
// yields byte-identical output.
func Stability(data []byte, opt Option) error {
	encodeOnce := func() ([]byte, error) {
		var buf bytes.Buffer
		w := frame.NewWriterOptions(&buf, frame.WriterOptions{Flags: opt.Flags, BlockMaxCode: opt.BlockMaxCode})
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	a, err := encodeOnce()
	if err != nil {
		return fmt.Errorf("selftest: first encode: %w", err)
	}
	b, err := encodeOnce()
	if err != nil {
		return fmt.Errorf("selftest: second encode: %w", err)
	}
	if !bytes.Equal(a, b) {
		return fmt.Errorf("selftest: stability violated for %q", opt.Name)
	}
	return nil
}

// RobustAgainstCorruption decompresses every single-byte-flipped variant
// of framed and checks that it never panics; a structural error or a
// mismatching result are both acceptable, silent memory corruption is not.
func RobustAgainstCorruption(framed []byte) (panics int) {
	for i := range framed {
		func() {
			defer func() {
				if recover() != nil {
					panics++
				}
			}()
			corrupt := append([]byte(nil), framed...)
			corrupt[i] ^= 0xff
			r := frame.NewReader(bytes.NewReader(corrupt))
			_, _ = io.ReadAll(r)
		}()
	}
	return panics
}

// GuardInvariance compresses data into a destination buffer framed by
// canary bytes before and after its declared capacity and reports whether
// either guard region was touched.
func GuardInvariance(data []byte, capacity int) (guardsIntact bool, err error) {
	const guardLen = 32
	buf := make([]byte, guardLen+capacity+guardLen)
	for i := range buf {
		buf[i] = 0xA5
	}
	dst := buf[guardLen : guardLen+capacity]

	c := blockcodec.New(blockcodec.FlagIndependentBlocks)
	out, encErr := c.ShrinkBlock(data, 0, len(data), dst[:0])
	if encErr != nil && out == nil {
		return true, encErr
	}

	for i := 0; i < guardLen; i++ {
		if buf[i] != 0xA5 || buf[guardLen+capacity+i] != 0xA5 {
			return false, nil
		}
	}
	return true, nil
}

// GrammarBounds decodes a compressed block's structure far enough to
// verify the last LastLiterals bytes of src are literals and no match
// starts within the last LastMatchOffset bytes, by replaying the block
// byte grammar (not by re-deriving the parse): it walks the same
// literal/match token stream verify.DecompressBlock does, recording where
// matches start.
func GrammarBounds(src []byte, blockLen int) error {
	matchStarts, literalTail, err := scanTokens(src, blockLen)
	if err != nil {
		return err
	}
	const lastLiterals = 5
	const lastMatchOffset = 12
	if blockLen >= lastLiterals && literalTail < lastLiterals {
		return fmt.Errorf("selftest: last %d bytes of block are not literals", lastLiterals)
	}
	for _, pos := range matchStarts {
		if pos >= blockLen-lastMatchOffset {
			return fmt.Errorf("selftest: match starts at %d, within the last %d bytes of a %d-byte block", pos, lastMatchOffset, blockLen)
		}
	}
	return nil
}

// scanTokens replays the token grammar verify.DecompressBlock implements,
// without writing output, returning every match's logical start position
// and the length of the trailing literal-only run.
func scanTokens(src []byte, blockLen int) (matchStarts []int, literalTail int, err error) {
	si, di := 0, 0
	lastLiteralStart := blockLen
	for si < len(src) {
		tok := src[si]
		si++

		litLen := int(tok >> 4)
		if litLen == 15 {
			for {
				if si >= len(src) {
					return nil, 0, fmt.Errorf("selftest: truncated literals-run varlen")
				}
				b := src[si]
				si++
				litLen += int(b)
				if b != 255 {
					break
				}
			}
		}
		if litLen > 0 {
			lastLiteralStart = di
		}
		si += litLen
		di += litLen

		if si+1 >= len(src) {
			break
		}
		matchStarts = append(matchStarts, di)

		offset := int(src[si]) | int(src[si+1])<<8
		si += 2
		if offset == 0 {
			break
		}
		matchLen := int(tok & 0x0f)
		if matchLen == 15 {
			for {
				if si >= len(src) {
					return nil, 0, fmt.Errorf("selftest: truncated match-len varlen")
				}
				b := src[si]
				si++
				matchLen += int(b)
				if b != 255 {
					break
				}
			}
		}
		matchLen += minMatchSize
		di += matchLen
	}
	return matchStarts, blockLen - lastLiteralStart, nil
}

const minMatchSize = 4
