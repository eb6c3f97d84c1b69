package selector

import (
	"math/rand/v2"

	"github.com/ogero/subtitle-shots/pkg/frequency"
)

// MaxBonusCount is the highest count a word may have to be picked as a bonus word.
const MaxBonusCount = 2

// SelectBonus draws up to requested distinct rare words, shared by every player.
// A short pool is not an error: fewer words, possibly none, are returned.
func SelectBonus(rnd *rand.Rand, index frequency.Index, requested int) []frequency.WordOccurrence {
	pool := index.Where(func(o frequency.WordOccurrence) bool { return o.Count <= MaxBonusCount })

	n := min(requested, len(pool))
	if n <= 0 {
		return []frequency.WordOccurrence{}
	}

	return distinct(rnd, pool, n)
}
