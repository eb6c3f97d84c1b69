package solver_test

import (
	"testing"

	"github.com/ogero/subtitle-shots/pkg/solver"
	"github.com/stretchr/testify/assert"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		available []int
		target    int
		depth     int
		exact     bool
		expected  []solver.Solution
	}{
		{
			name:      "single count reaching target",
			available: []int{8},
			target:    8,
			depth:     1,
			exact:     true,
			expected:  []solver.Solution{{Sum: 8, Counts: []int{8}}},
		},
		{
			name:      "permutations are kept",
			available: []int{5, 3},
			target:    8,
			depth:     3,
			exact:     true,
			expected: []solver.Solution{
				{Sum: 8, Counts: []int{3, 5}},
				{Sum: 8, Counts: []int{5, 3}},
			},
		},
		{
			name:      "duplicated and non positive counts are ignored",
			available: []int{4, 4, 0, -1},
			target:    8,
			depth:     1,
			exact:     true,
			expected:  []solver.Solution{{Sum: 8, Counts: []int{4, 4}}},
		},
		{
			name:      "lists stop growing past depth",
			available: []int{1},
			target:    4,
			depth:     2,
			exact:     true,
			expected:  nil,
		},
		{
			name:      "lists of depth length are extended once more",
			available: []int{1},
			target:    4,
			depth:     3,
			exact:     true,
			expected:  []solver.Solution{{Sum: 4, Counts: []int{1, 1, 1, 1}}},
		},
		{
			name:      "tolerance when not exact",
			available: []int{5},
			target:    8,
			depth:     1,
			exact:     false,
			expected:  []solver.Solution{{Sum: 10, Counts: []int{5, 5}}},
		},
		{
			name:      "overshoot below tolerance keeps expanding",
			available: []int{1},
			target:    3,
			depth:     5,
			exact:     false,
			expected: []solver.Solution{
				{Sum: 1, Counts: []int{1}},
				{Sum: 2, Counts: []int{1, 1}},
				{Sum: 3, Counts: []int{1, 1, 1}},
				{Sum: 4, Counts: []int{1, 1, 1, 1}},
				{Sum: 5, Counts: []int{1, 1, 1, 1, 1}},
			},
		},
		{
			name:      "no available counts",
			available: nil,
			target:    8,
			depth:     3,
			exact:     true,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, solver.Solve(tt.available, tt.target, tt.depth, tt.exact))
		})
	}
}

func TestSolveExactSums(t *testing.T) {
	solutions := solver.Solve([]int{1, 2, 3, 5, 7}, 8, 3, true)

	assert.NotEmpty(t, solutions)
	for _, s := range solutions {
		sum := 0
		for _, c := range s.Counts {
			sum += c
		}
		assert.Equal(t, 8, sum)
		assert.Equal(t, 8, s.Sum)
		assert.LessOrEqual(t, len(s.Counts), 4)
	}
}
