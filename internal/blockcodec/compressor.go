// Package blockcodec implements the optimal-parse LZ4 block compressor:
// build the suffix-array/LCP index over a window, enumerate matches with
// the lazy-last-visitor interval walk, select the cheapest parse with the
// backward DP optimizer, reduce the command count, then emit tokens. It
// sits under internal so both the root package and the frame package can
// share one Compressor without creating an import cycle between them.
package blockcodec

import (
	"errors"

	"github.com/go4x/lz4x/internal/lcpindex"
	"github.com/go4x/lz4x/internal/matchtab"
	"github.com/go4x/lz4x/internal/optimize"
	"github.com/go4x/lz4x/internal/sufarray"
	"github.com/go4x/lz4x/internal/token"
)

// candidatesPerPosition bounds how many previous occurrences the interval
// walk collects per position; ShrinkBlock keeps the longest in-range one
// for the DP optimizer. It
// mirrors NMATCHES_PER_OFFSET from the reference compressor's match table.
const candidatesPerPosition = 8

// Flags select compression policy and framing behavior.
type Flags uint32

const (
	// FlagFavorRatio biases the optimizer toward smaller output even when
	// it costs decompression speed; the default favors decode speed.
	FlagFavorRatio Flags = 1 << iota
	// FlagRawBlock produces a single frameless block with an in-band EOD
	// marker instead of a framed stream.
	FlagRawBlock
	// FlagIndependentBlocks disables carrying history between blocks.
	FlagIndependentBlocks
	// FlagLegacyFrames selects the legacy 8 MB fixed block-size framing.
	FlagLegacyFrames
)

// ErrUncompressible is returned when the compressed form is not smaller
// than the block's input; callers should fall back to an uncompressed
// block.
var ErrUncompressible = errors.New("blockcodec: block did not compress to fewer bytes than its input")

// Compressor drives the pipeline for one block. It keeps no state between
// calls other than the running command count, so a single instance may be
// reused across a stream's blocks; it is not safe for concurrent use
// (single-threaded per instance, mirroring lz4ultra_compressor).
type Compressor struct {
	Flags       Flags
	numCommands int
}

// New returns a Compressor configured with flags.
func New(flags Flags) *Compressor {
	return &Compressor{Flags: flags}
}

// CommandCount returns the running total of emitted tokens across every
// ShrinkBlock call made on this Compressor.
func (c *Compressor) CommandCount() int {
	return c.numCommands
}

// ShrinkBlock compresses window[previousBlockSize : previousBlockSize+inDataSize]
// using window[:previousBlockSize] as history context, appending the result
// to dst. It mirrors lz4ultra_compressor_shrink_block's driver sequence:
// build the suffix-array/LCP index over the whole window, skip-walk the
// history prefix so later positions never become an interval's first
// visitor, enumerate and select matches for the new data, reduce the
// command count, then emit tokens.
func (c *Compressor) ShrinkBlock(window []byte, previousBlockSize, inDataSize int, dst []byte) ([]byte, error) {
	end := previousBlockSize + inDataSize
	idx := sufarray.Build(window[:end])
	tree := lcpindex.Build(idx)

	for p := 0; p < previousBlockSize; p++ {
		tree.Skip(p)
	}

	matches := make([]matchtab.Match, end)
	for p := previousBlockSize; p < end; p++ {
		candidates := tree.Find(p, candidatesPerPosition, token.MinMatchSize)
		// A match may not start within the final LastMatchOffset bytes of
		// the block (spec §3/§4.2), so every p >= end-LastMatchOffset gets
		// no match. tree.Find still runs so the lazy last-visitor update
		// happens, but the candidates it returns here are discarded.
		if p >= end-token.LastMatchOffset {
			continue
		}
		var best matchtab.Match
		for _, cnd := range candidates {
			offset := p - cnd.Pos
			if offset > token.MaxOffset {
				continue
			}
			if cnd.Length > best.Length {
				best = matchtab.Match{Length: cnd.Length, Offset: int32(offset)}
			}
		}
		matches[p] = best
	}

	optimize.Matches(matches, previousBlockSize, end, c.Flags&FlagFavorRatio != 0)
	optimize.ReduceCommandCount(matches, window, previousBlockSize, end)

	startLen := len(dst)
	out, n, err := token.Write(dst, window, previousBlockSize, end, matches, c.Flags&FlagRawBlock != 0)
	if err != nil {
		return nil, err
	}
	c.numCommands += n
	if inDataSize > 0 && len(out)-startLen >= inDataSize {
		// The parse did not beat storing the block verbatim. This is a
		// policy outcome (spec class 3), not a structural failure: out
		// still holds a valid, decodable token stream, so callers that
		// have nowhere to fall back to (a lone block, no surrounding
		// frame) may use it as-is; callers with a "stored" frame option
		// should discard it and store the source bytes instead.
		return out, ErrUncompressible
	}
	return out, nil
}
