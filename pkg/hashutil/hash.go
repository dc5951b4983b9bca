// Package hashutil implements the deterministic 32-bit string hash used by
// the lookup intent parser (spec.md §4.7, §9 "Hashing for the lookup
// parser"). It is an internal contract between this engine and whatever
// training pipeline produced the lookup table; any caller, including the
// one that built the table, must use this exact function.
package hashutil

import "github.com/cespare/xxhash/v2"

// Hash32 returns a deterministic 32-bit hash of s, derived from xxhash's
// 64-bit digest truncated to its lower 32 bits.
func Hash32(s string) int32 {
	return int32(uint32(xxhash.Sum64String(s)))
}
