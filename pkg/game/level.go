package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Level is an intoxication level: the number of times a player's words must be heard to finish a game.
// Any positive integer is a valid level; the named ones are the levels offered to players.
type Level int

const (
	Tipsy               Level = 2
	Dancer              Level = 3
	EverybodyGetsADrink Level = 4
	Friendly            Level = 5
	Fighter             Level = 6
	Sleepy              Level = 7
	Hungry              Level = 8
	NeverDrinkingAgain  Level = 9
	TooMuch             Level = 12
)

var levelNames = map[Level]string{
	Tipsy:               "tipsy",
	Dancer:              "dancer",
	EverybodyGetsADrink: "everybody-gets-a-drink",
	Friendly:            "friendly",
	Fighter:             "fighter",
	Sleepy:              "sleepy",
	Hungry:              "hungry",
	NeverDrinkingAgain:  "never-drinking-again",
	TooMuch:             "too-much",
}

// Levels returns the named levels in ascending order.
func Levels() []Level {
	levels := make([]Level, 0, len(levelNames))
	for l := range levelNames {
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return levels
}

// Next returns the lowest named level above l. TooMuch, and anything beyond it, stays TooMuch.
func (l Level) Next() Level {
	for _, next := range Levels() {
		if next > l {
			return next
		}
	}
	return TooMuch
}

// Named reports whether l is one of the named levels.
func (l Level) Named() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return strconv.Itoa(int(l))
}

// ParseLevel accepts a level name, with either dashes, underscores or spaces between words, or a positive integer.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)

	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown level %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("level must be greater than 0, got %d", n)
	}
	return Level(n), nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
