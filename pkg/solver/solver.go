package solver

import (
	"sort"

	"github.com/gammazero/deque"
	"github.com/samber/lo"
)

// Solution is a list of counts and their sum.
type Solution struct {
	Sum    int   `json:"sum"`
	Counts []int `json:"counts"`
}

// tolerance is the accepted distance to the target for non exact searches.
const tolerance = 2

/*
Solve enumerates lists of available counts whose sum reaches target, breadth-first.

Parameters:
  - available: the counts that can be appended to a list. Duplicates and non-positive values are ignored.
  - target: the sum to reach.
  - depth: a list is only extended while its length is <= depth.
  - exact: when false, sums within 2 of target are accepted.

The frontier starts with the empty list. A state is accepted when |target - sum| <= epsilon and extended
when len(list) <= depth and sum - target < epsilon. Permutations of the same multiset are all returned.
*/
func Solve(available []int, target, depth int, exact bool) []Solution {
	epsilon := 0
	if !exact {
		epsilon = tolerance
	}

	counts := lo.Uniq(lo.Filter(available, func(c int, _ int) bool { return c > 0 }))
	sort.Ints(counts)

	var solutions []Solution

	var frontier deque.Deque[Solution]
	frontier.PushBack(Solution{})

	for frontier.Len() > 0 {
		state := frontier.PopFront()

		if abs(target-state.Sum) <= epsilon {
			solutions = append(solutions, state)
		}

		if len(state.Counts) > depth || state.Sum-target >= epsilon {
			continue
		}

		for _, c := range counts {
			next := make([]int, len(state.Counts), len(state.Counts)+1)
			copy(next, state.Counts)
			frontier.PushBack(Solution{
				Sum:    state.Sum + c,
				Counts: append(next, c),
			})
		}
	}

	return solutions
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
