package frequency

import (
	"sort"

	"github.com/samber/lo"
)

// WordOccurrence is a normalized word and the number of times it occurs in the filtered token stream.
type WordOccurrence struct {
	Word  string `json:"word"`
	Count int    `json:"occurrences"`
}

// Index holds word occurrences ordered by descending count.
// Words with the same count keep the order in which they were first seen.
type Index []WordOccurrence

// Build counts the given tokens and returns them ranked as an Index.
func Build(tokens []string) Index {
	counts := lo.CountValues(tokens)

	index := lo.Map(lo.Uniq(tokens), func(word string, _ int) WordOccurrence {
		return WordOccurrence{Word: word, Count: counts[word]}
	})

	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Count > index[j].Count
	})

	return index
}

// Where returns the occurrences matching pred, preserving the index order.
func (idx Index) Where(pred func(o WordOccurrence) bool) Index {
	return lo.Filter(idx, func(o WordOccurrence, _ int) bool {
		return pred(o)
	})
}

// WithCount returns the occurrences whose count is exactly n.
func (idx Index) WithCount(n int) Index {
	return idx.Where(func(o WordOccurrence) bool { return o.Count == n })
}

// Between returns the occurrences with min <= count < max.
func (idx Index) Between(min, max int) Index {
	return idx.Where(func(o WordOccurrence) bool { return o.Count >= min && o.Count < max })
}

// DistinctCounts returns the distinct counts not greater than max, ascending.
func (idx Index) DistinctCounts(max int) []int {
	counts := lo.Uniq(lo.FilterMap(idx, func(o WordOccurrence, _ int) (int, bool) {
		return o.Count, o.Count <= max
	}))
	sort.Ints(counts)
	return counts
}

// ByCount groups occurrences by their count. Each group keeps the index order.
func (idx Index) ByCount() map[int]Index {
	groups := make(map[int]Index)
	for _, o := range idx {
		groups[o.Count] = append(groups[o.Count], o)
	}
	return groups
}

// Words returns the words of the index in order.
func (idx Index) Words() []string {
	return lo.Map(idx, func(o WordOccurrence, _ int) string { return o.Word })
}
