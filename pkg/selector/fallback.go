package selector

import (
	"errors"
	"math/rand/v2"

	"github.com/ogero/subtitle-shots/pkg/frequency"
)

type fallbackSelector struct {
	primary  Selector
	fallback Selector
}

// WithFallback returns a Selector that runs fallback when primary fails with ErrInsufficientWords.
// Any other primary error is returned as is.
func WithFallback(primary, fallback Selector) Selector {
	return &fallbackSelector{primary: primary, fallback: fallback}
}

func (s *fallbackSelector) Select(rnd *rand.Rand, index frequency.Index, players, level int) ([]Assignment, error) {
	assignments, err := s.primary.Select(rnd, index, players, level)
	if err == nil || !errors.Is(err, ErrInsufficientWords) {
		return assignments, err
	}
	return s.fallback.Select(rnd, index, players, level)
}
