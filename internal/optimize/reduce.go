package optimize

import (
	"bytes"

	"github.com/go4x/lz4x/internal/matchtab"
	"github.com/go4x/lz4x/internal/token"
)

// ReduceCommandCount absorbs short matches into surrounding literals and
// fuses adjacent matches when doing so cannot grow the encoded size, so
// the decoder issues fewer commands without losing ratio. Ports
// lz4ultra_optimize_command_count_lz4 exactly, including the join case's
// -1 length sentinel marking a position absorbed by the match before it.
func ReduceCommandCount(matches []matchtab.Match, window []byte, start, end int) {
	numLiterals := 0

	i := start
	for i < end {
		m := &matches[i]
		if int(m.Length) < token.MinMatchSize {
			numLiterals++
			i++
			continue
		}

		matchLen := int(m.Length)
		reduce := false

		if matchLen <= 19 && (i+matchLen) < end {
			encodedMatchLen := matchLen - token.MinMatchSize
			commandSize := 8 + (token.LiteralsVarlenSize(numLiterals) << 3) + 16 + (token.MatchVarlenSize(encodedMatchLen) << 3)

			if int(matches[i+matchLen].Length) >= token.MinMatchSize {
				if commandSize >= (matchLen<<3)+(token.LiteralsVarlenSize(numLiterals+matchLen)<<3) {
					reduce = true
				}
			} else {
				nextLiterals := 0
				cur := i + matchLen
				for {
					cur++
					nextLiterals++
					if !(cur < end && int(matches[cur].Length) < token.MinMatchSize) {
						break
					}
				}

				if commandSize >= (matchLen<<3)+(token.LiteralsVarlenSize(numLiterals+nextLiterals+matchLen)<<3)-(token.LiteralsVarlenSize(nextLiterals)<<3) {
					reduce = true
				}
			}
		}

		if reduce {
			for j := 0; j < matchLen; j++ {
				matches[i+j].Length = 0
			}
			numLiterals += matchLen
			i += matchLen
			continue
		}

		if (i+matchLen) < end && m.Offset > 0 && matchLen >= 2 {
			next := matches[i+matchLen]
			joinedLen := matchLen + int(next.Length)
			if next.Offset > 0 && next.Length >= 2 &&
				joinedLen >= leaveAloneMatchSize && joinedLen <= 65535 &&
				(i+matchLen) >= int(m.Offset) && (i+matchLen) >= int(next.Offset) &&
				(i+matchLen+int(next.Length)) <= end &&
				bytes.Equal(
					window[i+matchLen-int(m.Offset):i+matchLen-int(m.Offset)+int(next.Length)],
					window[i+matchLen-int(next.Offset):i+matchLen-int(next.Offset)+int(next.Length)],
				) {
				m.Length += next.Length
				matches[i+matchLen].Offset = 0
				matches[i+matchLen].Length = -1
				continue
			}
		}

		numLiterals = 0
		i += matchLen
	}
}
