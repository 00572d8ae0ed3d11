// Package matchtab defines the per-position match table that
// internal/optimize, internal/token, and the top-level Compressor all share:
// one candidate match per input position, mutated in place by the DP
// optimizer and the command-count reducer before the emitter reads it.
package matchtab

// Match is the single best candidate match found at a position. Length < 4
// (token.MinMatchSize) means no usable match starts here. The reducer can
// set Length to -1 to mark a position absorbed into a preceding joined
// match, so Length is signed.
type Match struct {
	Length int32
	Offset int32
}
