package selector

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ogero/subtitle-shots/pkg/frequency"
)

// Assignment is the list of words a player drinks to.
type Assignment []frequency.WordOccurrence

// Selector picks one Assignment per player from a frequency index.
type Selector interface {
	// Select returns exactly players assignments built from index for the given intoxication level.
	Select(rnd *rand.Rand, index frequency.Index, players, level int) ([]Assignment, error)
}

// Strategy identifies one of the available selectors.
type Strategy int

const (
	// ProximityBand picks words whose count is the level or close to it. It is the default strategy.
	ProximityBand Strategy = iota
	// ExactRepeat picks words whose count is exactly the level, repeating them when there are not enough.
	ExactRepeat
	// Combinatorial assigns several words per player whose counts add up to the level.
	Combinatorial
)

var strategyNames = map[Strategy]string{
	ProximityBand: "proximity",
	ExactRepeat:   "exact",
	Combinatorial: "combinatorial",
}

// Strategies returns all the strategies, default first.
func Strategies() []Strategy {
	return []Strategy{ProximityBand, ExactRepeat, Combinatorial}
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the Strategy with the given name. An empty name is the default strategy.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProximityBand, nil
	}
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Selector returns the Selector implementing the strategy.
func (s Strategy) Selector() (Selector, error) {
	switch s {
	case ProximityBand:
		return proximityBand{}, nil
	case ExactRepeat:
		return exactRepeat{}, nil
	case Combinatorial:
		return combinatorial{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %d", int(s))
	}
}
