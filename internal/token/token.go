// Package token implements the LZ4 block token grammar: the literal/match
// nibble token byte, the 0xFF-run variable length extension, and the
// 2-byte little-endian match offset, exactly as emitted by
// lz4ultra_write_block_lz4 in the reference compressor.
package token

import (
	"errors"

	"github.com/go4x/lz4x/internal/matchtab"
)

const (
	MinMatchSize    = 4  // shortest match the format can encode
	LiteralsRunLen  = 15 // token nibble value meaning "read a varlen extension"
	MatchRunLen     = 15
	LastLiterals    = 5  // trailing literal bytes the format always reserves
	LastMatchOffset = 12 // matches may not start within this many bytes of the block end
	MinOffset       = 1
	MaxOffset       = 65535
)

// ErrDestTooSmall reports a destination buffer too small for an encoded
// block. Write grows dst with append and never returns it.
var ErrDestTooSmall = errors.New("token: destination buffer too small")

// ErrInvalidOffset is returned when a match's offset is out of the
// format's representable range.
var ErrInvalidOffset = errors.New("token: match offset out of range")

// LiteralsVarlenSize returns the number of extra bytes the format needs to
// encode a literal run of the given length beyond the inline nibble value.
func LiteralsVarlenSize(length int) int {
	if length < LiteralsRunLen {
		return 0
	}
	return (length-LiteralsRunLen)/255 + 1
}

// MatchVarlenSize returns the number of extra bytes needed to encode an
// already-MinMatchSize-biased match length beyond the inline nibble value.
func MatchVarlenSize(encodedLength int) int {
	if encodedLength < MatchRunLen {
		return 0
	}
	return (encodedLength-MatchRunLen)/255 + 1
}

func writeVarlen(dst []byte, length, runLen int) []byte {
	if length < runLen {
		return dst
	}
	n := length - runLen
	for n >= 255 {
		dst = append(dst, 0xff)
		n -= 255
	}
	return append(dst, byte(n))
}

// Write emits the compressed block for window[start:end], reading the
// chosen match for each position from matches (indexed absolutely into
// window, sized len(window)). rawBlock appends the two-zero-byte in-band
// EOD marker used by frameless raw blocks in place of a frame footer.
// Returns the number of emitted commands (tokens) alongside the encoded
// bytes.
func Write(dst []byte, window []byte, start, end int, matches []matchtab.Match, rawBlock bool) ([]byte, int, error) {
	numCommands := 0
	numLiterals := 0
	firstLiteralOffset := 0

	i := start
	for i < end {
		m := matches[i]
		if m.Length >= MinMatchSize {
			matchOffset := int(m.Offset)
			matchLen := int(m.Length)
			encodedMatchLen := matchLen - MinMatchSize

			if matchOffset < MinOffset || matchOffset > MaxOffset {
				return nil, 0, ErrInvalidOffset
			}

			tokenLit := numLiterals
			if tokenLit > LiteralsRunLen {
				tokenLit = LiteralsRunLen
			}
			tokenMatch := encodedMatchLen
			if tokenMatch > MatchRunLen {
				tokenMatch = MatchRunLen
			}

			dst = append(dst, byte(tokenLit<<4)|byte(tokenMatch))
			dst = writeVarlen(dst, numLiterals, LiteralsRunLen)
			if numLiterals != 0 {
				dst = append(dst, window[firstLiteralOffset:firstLiteralOffset+numLiterals]...)
				numLiterals = 0
			}

			dst = append(dst, byte(matchOffset&0xff), byte((matchOffset>>8)&0xff))
			dst = writeVarlen(dst, encodedMatchLen, MatchRunLen)

			i += matchLen
			numCommands++
		} else {
			if numLiterals == 0 {
				firstLiteralOffset = i
			}
			numLiterals++
			i++
		}
	}

	tokenLit := numLiterals
	if tokenLit > LiteralsRunLen {
		tokenLit = LiteralsRunLen
	}
	dst = append(dst, byte(tokenLit<<4))
	dst = writeVarlen(dst, numLiterals, LiteralsRunLen)
	if numLiterals != 0 {
		dst = append(dst, window[firstLiteralOffset:firstLiteralOffset+numLiterals]...)
	}
	if rawBlock {
		dst = append(dst, 0, 0)
	}
	numCommands++

	return dst, numCommands, nil
}
