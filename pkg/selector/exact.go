package selector

import (
	"math/rand/v2"

	"github.com/ogero/subtitle-shots/pkg/frequency"
)

// exactRepeat picks words occurring exactly level times. When there are fewer such words than players,
// all of them are used and the remaining players get repeated draws.
type exactRepeat struct{}

func (exactRepeat) Select(rnd *rand.Rand, index frequency.Index, players, level int) ([]Assignment, error) {
	pool := index.WithCount(level)
	if len(pool) == 0 {
		return nil, insufficientWords("no word occurs exactly %d times", level)
	}

	if len(pool) >= players {
		return single(distinct(rnd, pool, players)), nil
	}

	picked := make([]frequency.WordOccurrence, 0, players)
	picked = append(picked, pool...)
	for len(picked) < players {
		picked = append(picked, pool[rnd.IntN(len(pool))])
	}
	rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	return single(picked), nil
}
