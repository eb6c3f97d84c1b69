package selector

import (
	"math/rand/v2"

	"github.com/ogero/subtitle-shots/pkg/frequency"
)

// proximityBand prefers words occurring exactly level times and completes with words whose count is
// within Proximity(level) of it.
type proximityBand struct{}

// Proximity is the tolerance around level accepted by the proximity band strategy, ceil(level/5).
func Proximity(level int) int {
	return (level + 4) / 5
}

func (proximityBand) Select(rnd *rand.Rand, index frequency.Index, players, level int) ([]Assignment, error) {
	proximity := Proximity(level)

	exact := index.WithCount(level)
	near := index.Where(func(o frequency.WordOccurrence) bool {
		d := o.Count - level
		if d < 0 {
			d = -d
		}
		return d > 0 && d <= proximity
	})

	if len(exact)+len(near) < players {
		return nil, insufficientWords("%d words occur between %d and %d times, %d players need one each",
			len(exact)+len(near), level-proximity, level+proximity, players)
	}

	fromExact := min(len(exact), players)
	picked := distinct(rnd, exact, fromExact)
	picked = append(picked, distinct(rnd, near, players-fromExact)...)

	return single(picked), nil
}
