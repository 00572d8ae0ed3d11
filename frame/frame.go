// Package frame implements the LZ4 frame format (modern and legacy) around
// the block compressor: header/footer encoding with the XXH32 header
// checksum, and per-block framing with the compressed/uncompressed flag
// bit. Frameless raw blocks are not handled here; the root package's
// CompressBlockFlags produces them. Byte layout is ported from frame.c (lz4ultra_encode_header and friends).
package frame

import (
	"encoding/binary"
	"errors"

	"github.com/go4x/lz4x/internal/xxh32"
)

const (
	Magic       uint32 = 0x184D2204
	LegacyMagic uint32 = 0x184C2102

	headerSize      = 7 // magic(4) + flags(1) + block-descriptor(1) + checksum(1)
	blockHeaderSize = 4
	footerSize      = 4

	legacyBlockMaxBits = 23 // legacy frames always use 8 MiB blocks
)

// ErrFormat is returned when frame bytes don't match the expected layout.
var ErrFormat = errors.New("frame: malformed header or block")

// ErrChecksum is returned when the header checksum doesn't match.
var ErrChecksum = errors.New("frame: header checksum mismatch")

// BlockMaxBits returns the block size, in bits, for a block-size code
// (4-7, meaning 64 KiB through 4 MiB): 8 + code*2.
func BlockMaxBits(blockMaxCode int) int {
	return 8 + (blockMaxCode << 1)
}

// BlockMaxSize returns 1 << BlockMaxBits(blockMaxCode).
func BlockMaxSize(blockMaxCode int) int {
	return 1 << BlockMaxBits(blockMaxCode)
}

// EncodeHeader appends the modern frame header (magic, flags, block
// descriptor, XXH32 checksum) to dst.
func EncodeHeader(dst []byte, blockMaxCode int, independentBlocks bool) []byte {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], Magic)

	hdr[4] = 0b01000000
	if independentBlocks {
		hdr[4] |= 0b00100000
	}
	hdr[5] = byte(blockMaxCode << 4)

	sum := xxh32.Sum(hdr[4:6], 0)
	hdr[6] = byte((sum >> 8) & 0xff)

	return append(dst, hdr[:]...)
}

// DecodeHeader parses a modern frame header from the front of data and
// returns the block-size code, whether blocks are independent, and the
// number of bytes consumed.
func DecodeHeader(data []byte) (blockMaxCode int, independentBlocks bool, consumed int, err error) {
	if len(data) < headerSize {
		return 0, false, 0, ErrFormat
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return 0, false, 0, ErrFormat
	}
	if data[4]&0xc0 != 0b01000000 || data[5]&0x0f != 0 {
		return 0, false, 0, ErrFormat
	}

	sum := xxh32.Sum(data[4:6], 0)
	if byte((sum>>8)&0xff) != data[6] {
		return 0, false, 0, ErrChecksum
	}

	independentBlocks = data[4]&0x20 != 0
	blockMaxCode = int(data[5] >> 4)
	return blockMaxCode, independentBlocks, headerSize, nil
}

// EncodeLegacyHeader appends the fixed 4-byte legacy frame magic to dst.
func EncodeLegacyHeader(dst []byte) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], LegacyMagic)
	return append(dst, b[:]...)
}

// EncodeBlock appends a block frame header (size + compressed flag) to
// dst. Set uncompressed when blockData is stored verbatim.
func EncodeBlock(dst []byte, blockDataSize int, uncompressed bool) ([]byte, error) {
	if blockDataSize&0x80000000 != 0 {
		return nil, ErrFormat
	}
	var b [blockHeaderSize]byte
	v := uint32(blockDataSize)
	if uncompressed {
		v |= 0x80000000
	}
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...), nil
}

// DecodeBlock reads a block frame header from the front of data.
func DecodeBlock(data []byte) (size int, uncompressed bool, consumed int, err error) {
	if len(data) < blockHeaderSize {
		return 0, false, 0, ErrFormat
	}
	v := binary.LittleEndian.Uint32(data[:blockHeaderSize])
	uncompressed = v&0x80000000 != 0
	v &^= 0x80000000
	return int(v), uncompressed, blockHeaderSize, nil
}

// EncodeFooter appends the 4 zero bytes that terminate a modern frame.
func EncodeFooter(dst []byte) []byte {
	var b [footerSize]byte
	return append(dst, b[:]...)
}
