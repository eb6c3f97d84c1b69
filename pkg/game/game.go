package game

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/ogero/subtitle-shots/pkg/lexical"
	"github.com/ogero/subtitle-shots/pkg/selector"
)

// Assembler turns subtitle cues into games.
// It holds no mutable state, a single Assembler may serve concurrent generations.
type Assembler struct {
	ta lexical.TextAnalysis
}

func NewAssembler(ta lexical.TextAnalysis) *Assembler {
	return &Assembler{ta: ta}
}

// Analyze builds the frequency index of the nouns found in cues.
// Cues are joined by newlines in the given order.
func (a *Assembler) Analyze(cues []string) (frequency.Index, error) {
	words, err := lexical.Filter(a.ta, strings.Join(cues, "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to lexical.Filter: %w", err)
	}
	return frequency.Build(words), nil
}

/*
Play generates a game from an already built index.

Parameters:
  - rnd: random source used by every selection. Callers own it, it must not be shared between goroutines.
  - req: game parameters, validated before selecting.
  - index: frequency index, as returned by Analyze.

Selection failures are returned as is, so they can be matched against selector.ErrInsufficientWords.
*/
func (a *Assembler) Play(rnd *rand.Rand, req Request, index frequency.Index) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var used selector.Strategy
	sel, err := req.selector(&used)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	players, err := sel.Select(rnd, index, req.Players, req.Level)
	if err != nil {
		return nil, err
	}

	return &Result{
		Players:    players,
		BonusWords: selector.SelectBonus(rnd, index, req.BonusWords),
		Strategy:   used,
	}, nil
}

// Generate analyzes cues and plays a game on the resulting index.
func (a *Assembler) Generate(rnd *rand.Rand, req Request, cues []string) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	index, err := a.Analyze(cues)
	if err != nil {
		return nil, err
	}

	return a.Play(rnd, req, index)
}
