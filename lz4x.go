// Package lz4x implements an LZ4-block-compatible compressor that searches
// for the size-optimal parse of its input via a suffix-array/LCP-interval
// match index and a backward dynamic-programming cost optimizer, instead of
// the greedy/lazy matching typical LZ4 encoders use. Decompression accepts
// any conformant LZ4 block, including ones produced by other encoders.
package lz4x

import (
	"errors"

	"github.com/go4x/lz4x/internal/blockcodec"
	"github.com/go4x/lz4x/internal/verify"
)

// Version identifies this module's release.
const (
	Version      = "1.0.0"
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Flags select compression policy; see the blockcodec.Flag* constants.
type Flags = blockcodec.Flags

const (
	FlagFavorRatio        = blockcodec.FlagFavorRatio
	FlagRawBlock          = blockcodec.FlagRawBlock
	FlagIndependentBlocks = blockcodec.FlagIndependentBlocks
	FlagLegacyFrames      = blockcodec.FlagLegacyFrames
)

// MaxRawBlockSize is the largest input CompressBlockFlags accepts under
// FlagRawBlock: a raw block has no length prefix of its own, so callers
// must bound its size out of band.
const MaxRawBlockSize = 4 << 20

// ErrRawTooLarge is returned by CompressBlockFlags when FlagRawBlock is set
// and src exceeds MaxRawBlockSize.
var ErrRawTooLarge = errors.New("lz4x: input exceeds the 4 MiB raw block limit")

// ErrUncompressible is returned when a block's optimal parse is no smaller
// than storing it verbatim. Framed callers (see package frame) treat this
// as policy: they store the block uncompressed instead. RAW block mode has
// nowhere to fall back to (there is no frame to flag "stored"), so callers
// compressing with FlagRawBlock must treat ErrUncompressible as fatal.
var ErrUncompressible = blockcodec.ErrUncompressible

// Compressor drives one block's compression pipeline; see
// internal/blockcodec for the implementation.
type Compressor = blockcodec.Compressor

// NewCompressor returns a Compressor configured with flags.
func NewCompressor(flags Flags) *Compressor {
	return blockcodec.New(flags)
}

// MaxCompressedSize returns a safe upper bound on the compressed size of an
// inputSize-byte block, accounting for the worst case of one token per
// MIN_MATCH-sized run plus varlen extension bytes.
func MaxCompressedSize(inputSize int) int {
	return inputSize + inputSize/255 + 16
}

// CompressBlock compresses src as a single, history-free LZ4 block into
// dst (allocating a new slice if dst is nil or too small) and returns the
// compressed slice.
func CompressBlock(src []byte, dst []byte) ([]byte, error) {
	return CompressBlockFlags(src, dst, FlagIndependentBlocks)
}

// CompressBlockFlags compresses src as a single block using the given
// flags (FlagRawBlock/FlagFavorRatio apply; FlagIndependentBlocks and
// FlagLegacyFrames are meaningless for a lone block and ignored).
//
// A lone block (unlike a framed stream) has no "stored" representation to
// fall back to, so when the optimal parse does not beat the source's size,
// CompressBlockFlags still returns the (larger but valid) encoded block
// rather than an error — except under FlagRawBlock, where that condition
// is fatal (raw-incompressible): there the error is returned and the
// returned bytes are nil.
func CompressBlockFlags(src []byte, dst []byte, flags Flags) ([]byte, error) {
	if flags&FlagRawBlock != 0 && len(src) > MaxRawBlockSize {
		return nil, ErrRawTooLarge
	}
	maxSize := MaxCompressedSize(len(src))
	if cap(dst) < maxSize {
		dst = make([]byte, 0, maxSize)
	} else {
		dst = dst[:0]
	}

	c := NewCompressor(flags)
	out, err := c.ShrinkBlock(src, 0, len(src), dst)
	if errors.Is(err, ErrUncompressible) {
		if flags&FlagRawBlock != 0 {
			return nil, err
		}
		return out, nil
	}
	return out, err
}

// DecompressBlock decompresses a non-raw LZ4 block from src into dst,
// allocating a new slice if dst is nil or smaller than maxSize.
func DecompressBlock(src []byte, dst []byte, maxSize int) ([]byte, error) {
	return DecompressBlockFlags(src, dst, maxSize, 0)
}

// DecompressBlockFlags decompresses src as DecompressBlock does; pass
// FlagRawBlock when src was produced with CompressBlockFlags(src, dst,
// FlagRawBlock|...) so the trailing zero-offset EOD marker token.Write
// appends is recognized as a terminator instead of a malformed match.
func DecompressBlockFlags(src []byte, dst []byte, maxSize int, flags Flags) ([]byte, error) {
	if cap(dst) < maxSize {
		dst = make([]byte, maxSize)
	} else {
		dst = dst[:maxSize]
	}

	n, err := verify.DecompressBlockRaw(src, dst, 0, flags&FlagRawBlock != 0)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
