// Package optimize implements the backward dynamic-programming match
// selector (picks, for every position, the match length that minimizes
// encoded size) and the command-count reducer (absorbs small matches into
// surrounding literals, fuses adjacent matches) that run over the match
// table before token.Write encodes it. Both are direct ports of
// lz4ultra_optimize_matches_lz4 and lz4ultra_optimize_command_count_lz4.
package optimize

import (
	"github.com/go4x/lz4x/internal/matchtab"
	"github.com/go4x/lz4x/internal/token"
)

const (
	leaveAloneMatchSize = 1000 // matches at least this long are never truncated by the DP
	modeSwitchPenalty   = 1    // extra cost charged when the position after a step starts a match
)

// Matches picks, for each position in [start, end), the match length
// (possibly shorter than the one found) and offset that minimize the
// encoded size of the rest of the window, walking backward from end.
// matches is indexed absolutely into the window and must already hold one
// candidate (or a zero Match) per position; it is mutated in place.
// favorRatio trades ratio against decode speed: it sets the per-match
// score to 1 when true and 5 otherwise (mirrors LZ4ULTRA_FLAG_FAVOR_RATIO).
func Matches(matches []matchtab.Match, start, end int, favorRatio bool) {
	if end <= start {
		return
	}

	extraMatchScore := 5
	if favorRatio {
		extraMatchScore = 1
	}

	cost := make([]int, end)
	score := make([]int, end)

	cost[end-1] = 8
	score[end-1] = 0
	lastLiteralsOffset := end

	for i := end - 2; i >= start; i-- {
		literalsLen := lastLiteralsOffset - i

		bestCost := 8 + cost[i+1]
		bestScore := 1 + score[i+1]
		if literalsLen >= token.LiteralsRunLen && (literalsLen-token.LiteralsRunLen)%255 == 0 {
			bestCost += 8
		}
		if int(matches[i+1].Length) >= token.MinMatchSize {
			bestCost += modeSwitchPenalty
		}
		bestMatchLen := 0
		bestMatchOffset := 0

		m := matches[i]
		if int(m.Length) >= token.MinMatchSize {
			matchLen := int(m.Length)
			if (i + matchLen) > (end - token.LastLiterals) {
				matchLen = end - token.LastLiterals - i
			}

			try := func(k int) {
				curCost := 8 + 16 + (token.MatchVarlenSize(k-token.MinMatchSize) << 3)
				curCost += cost[i+k]
				if int(matches[i+k].Length) >= token.MinMatchSize {
					curCost += modeSwitchPenalty
				}
				curScore := extraMatchScore + score[i+k]

				if bestCost > curCost || (bestCost == curCost && bestScore > curScore) {
					bestCost = curCost
					bestScore = curScore
					bestMatchLen = k
					bestMatchOffset = int(m.Offset)
				}
			}

			if matchLen >= leaveAloneMatchSize {
				try(matchLen)
			} else {
				if !favorRatio {
					fastPathLen := token.MatchRunLen + token.MinMatchSize - 1
					if matchLen > fastPathLen && matchLen <= 2*fastPathLen {
						matchLen = fastPathLen
					}
				}
				for k := matchLen; k >= token.MinMatchSize; k-- {
					try(k)
				}
			}
		}

		if bestMatchLen >= token.MinMatchSize {
			lastLiteralsOffset = i
		}

		cost[i] = bestCost
		score[i] = bestScore
		matches[i].Length = int32(bestMatchLen)
		matches[i].Offset = int32(bestMatchOffset)
	}
}
