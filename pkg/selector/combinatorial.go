package selector

import (
	"math/rand/v2"
	"sort"

	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/ogero/subtitle-shots/pkg/solver"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/sampleuv"
)

const (
	// MaxWordsPerPlayer bounds the number of words a player gets from the combinatorial strategy.
	MaxWordsPerPlayer = 3
	// combinationsDepth is the solver depth used to build the combinations.
	combinationsDepth = 3
	// topCombinations is the number of best ranked combinations a player draws from.
	topCombinations = 5
)

// combinatorial gives each player a set of words whose counts add up to level.
type combinatorial struct{}

func (combinatorial) Select(rnd *rand.Rand, index frequency.Index, players, level int) ([]Assignment, error) {
	ranked := RankedCombinations(index, level)
	if len(ranked) == 0 {
		return nil, insufficientCombinations("no combination of up to %d words adds up to %d", MaxWordsPerPlayer, level)
	}

	top := ranked[:min(topCombinations, len(ranked))]
	weights := make([]float64, len(top))
	for i := range weights {
		weights[i] = float64(topCombinations - i)
	}

	byCount := index.ByCount()

	assignments := make([]Assignment, 0, players)
	for range players {
		i, _ := sampleuv.NewWeighted(weights, rnd).Take()
		assignment := make(Assignment, 0, len(top[i].Counts))
		for _, c := range top[i].Counts {
			candidates := byCount[c]
			assignment = append(assignment, candidates[rnd.IntN(len(candidates))])
		}
		assignments = append(assignments, assignment)
	}

	return assignments, nil
}

// RankedCombinations returns the lists of at most MaxWordsPerPlayer counts present in index adding up to level,
// most even first.
func RankedCombinations(index frequency.Index, level int) []solver.Solution {
	solutions := lo.Filter(solver.Solve(index.DistinctCounts(level), level, combinationsDepth, true),
		func(s solver.Solution, _ int) bool {
			return len(s.Counts) > 0 && len(s.Counts) <= MaxWordsPerPlayer
		})

	// Sorted so that permutations of the same counts get the exact same spread.
	spread := lo.Map(solutions, func(s solver.Solution, _ int) float64 {
		x := lo.Map(s.Counts, func(c int, _ int) float64 { return float64(c) })
		sort.Float64s(x)
		return stat.PopStdDev(x, nil)
	})

	order := lo.Range(len(solutions))
	sort.SliceStable(order, func(i, j int) bool {
		return spread[order[i]] < spread[order[j]]
	})

	return lo.Map(order, func(i int, _ int) solver.Solution { return solutions[i] })
}
