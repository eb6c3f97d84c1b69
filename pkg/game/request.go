package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/ogero/subtitle-shots/pkg/selector"
)

// ErrInvalidRequest is wrapped by every Request validation error.
var ErrInvalidRequest = errors.New("invalid request")

// Request holds the parameters of a game generation.
type Request struct {
	Players    int
	Level      int
	BonusWords int
	Strategy   selector.Strategy
	// Fallback, when not nil, is run when Strategy fails for lack of words.
	Fallback *selector.Strategy
}

// Validate checks the request lower bounds and strategies.
func (r Request) Validate() error {
	switch {
	case r.Players <= 0:
		return fmt.Errorf("%w: players must be greater than 0, got %d", ErrInvalidRequest, r.Players)
	case r.Level <= 0:
		return fmt.Errorf("%w: level must be greater than 0, got %d", ErrInvalidRequest, r.Level)
	case r.BonusWords < 0:
		return fmt.Errorf("%w: bonus words must not be negative, got %d", ErrInvalidRequest, r.BonusWords)
	}

	if _, err := r.Strategy.Selector(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.Fallback != nil {
		if _, err := r.Fallback.Selector(); err != nil {
			return fmt.Errorf("%w: fallback: %w", ErrInvalidRequest, err)
		}
	}

	return nil
}

// selector builds the selection chain of the request. Each successful selection stores its strategy in used.
func (r Request) selector(used *selector.Strategy) (selector.Selector, error) {
	primary, err := r.Strategy.Selector()
	if err != nil {
		return nil, err
	}
	chain := selector.Selector(recording{sel: primary, strategy: r.Strategy, used: used})
	if r.Fallback == nil {
		return chain, nil
	}
	fallback, err := r.Fallback.Selector()
	if err != nil {
		return nil, err
	}
	return selector.WithFallback(chain, recording{sel: fallback, strategy: *r.Fallback, used: used}), nil
}

type recording struct {
	sel      selector.Selector
	strategy selector.Strategy
	used     *selector.Strategy
}

func (r recording) Select(rnd *rand.Rand, index frequency.Index, players, level int) ([]selector.Assignment, error) {
	assignments, err := r.sel.Select(rnd, index, players, level)
	if err == nil {
		*r.used = r.strategy
	}
	return assignments, err
}

// Result is a generated game.
type Result struct {
	// Players holds one assignment per player, in player order.
	Players []selector.Assignment `json:"words"`
	// BonusWords are rare words shared by every player.
	BonusWords []frequency.WordOccurrence `json:"bonus_words"`
	// Strategy produced Players. It differs from the requested one when the fallback ran.
	Strategy selector.Strategy `json:"-"`
}
