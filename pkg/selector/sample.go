package selector

import (
	"math/rand/v2"

	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// distinct draws n different occurrences of pool, uniformly at random. n must not exceed len(pool).
func distinct(rnd *rand.Rand, pool frequency.Index, n int) []frequency.WordOccurrence {
	if n <= 0 {
		return nil
	}
	idxs := make([]int, n)
	sampleuv.WithoutReplacement(idxs, len(pool), rnd)
	return lo.Map(idxs, func(i int, _ int) frequency.WordOccurrence { return pool[i] })
}

// single wraps each occurrence in its own Assignment.
func single(occurrences []frequency.WordOccurrence) []Assignment {
	return lo.Map(occurrences, func(o frequency.WordOccurrence, _ int) Assignment {
		return Assignment{o}
	})
}
