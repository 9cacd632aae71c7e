package contentgen

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// baseSeed derives a 32-bit value from kind and seed. xxhash output does
// not vary by platform or release.
func baseSeed(kind Kind, seed string) uint32 {
	h := xxhash.Sum64String(string(kind) + ":" + seed)
	return uint32(h) ^ uint32(h>>32)
}

// itemSeed mixes the item index into the base seed.
func itemSeed(base uint32, index int) int64 {
	return int64(base ^ uint32(index+1)*0x9E3779B1)
}

// newRand returns a generator for one item. math/rand v1 sources produce
// the same sequence for the same seed in every Go release.
func newRand(base uint32, index int) *rand.Rand {
	return rand.New(rand.NewSource(itemSeed(base, index)))
}

// shuffleKind is the seed namespace for Shuffle.
const shuffleKind Kind = "shuffle"

// Shuffle permutes n elements in an order fixed by seed.
func Shuffle(seed string, n int, swap func(i, j int)) {
	newRand(baseSeed(shuffleKind, seed), 0).Shuffle(n, swap)
}
