// Package verify implements a scalar LZ4 block decompressor used to check
// the optimizer's output and to serve the public DecompressBlock API. It is
// a bounds-checked port of expand.c's lz4ultra_expand_block: this code
// exists to verify what the compressor produced, not to be the fastest
// possible decompressor for arbitrary third-party LZ4 data.
package verify

import "errors"

const minMatchSize = 4

// Errors returned when a block is malformed or a buffer is too small; both
// are structural failures a caller should treat as ErrFormat-class.
var (
	ErrTruncated     = errors.New("verify: truncated block")
	ErrOutOfBounds   = errors.New("verify: decompressed data exceeds destination")
	ErrInvalidOffset = errors.New("verify: match offset before start of output")
)

// DecompressBlock decodes the compressed bytes in src into dst starting at
// dstOffset (the bytes before dstOffset are prior window/history context
// matches may reference) and returns the number of bytes written after
// dstOffset. It is equivalent to DecompressBlockRaw(src, dst, dstOffset, false).
func DecompressBlock(src []byte, dst []byte, dstOffset int) (int, error) {
	return DecompressBlockRaw(src, dst, dstOffset, false)
}

// DecompressBlockRaw decodes src as DecompressBlock does. When rawEOD is
// true, src is treated as a frameless raw block: an offset field of 0 is
// not a match, it is the in-band end-of-data marker token.Write appends
// after the final literal run, and decoding stops there instead of
// interpreting the following bytes as a match. A zero offset is a
// structural error in any other (framed) context.
func DecompressBlockRaw(src []byte, dst []byte, dstOffset int, rawEOD bool) (int, error) {
	si := 0
	di := dstOffset

	for si < len(src) {
		token := src[si]
		si++

		literalsLen := int(token >> 4)
		if literalsLen == 15 {
			for {
				if si >= len(src) {
					return 0, ErrTruncated
				}
				b := src[si]
				si++
				literalsLen += int(b)
				if b != 255 {
					break
				}
			}
		}
		if literalsLen > 0 {
			if si+literalsLen > len(src) {
				return 0, ErrTruncated
			}
			if di+literalsLen > len(dst) {
				return 0, ErrOutOfBounds
			}
			copy(dst[di:di+literalsLen], src[si:si+literalsLen])
			si += literalsLen
			di += literalsLen
		}

		// The final token in a block carries no match fields.
		if si+1 >= len(src) {
			break
		}

		offset := int(src[si]) | int(src[si+1])<<8
		si += 2

		if offset == 0 {
			if rawEOD {
				break
			}
			return 0, ErrInvalidOffset
		}

		matchLen := int(token & 0x0f)
		if matchLen == 15 {
			for {
				if si >= len(src) {
					return 0, ErrTruncated
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

		srcPos := di - offset
		if srcPos < 0 {
			return 0, ErrInvalidOffset
		}
		if di+matchLen > len(dst) {
			return 0, ErrOutOfBounds
		}

		if offset == 1 && matchLen >= 16 {
			fillByte := dst[srcPos]
			for k := 0; k < matchLen; k++ {
				dst[di+k] = fillByte
			}
		} else {
			for k := 0; k < matchLen; k++ {
				dst[di+k] = dst[srcPos+k]
			}
		}
		di += matchLen
	}

	return di - dstOffset, nil
}
