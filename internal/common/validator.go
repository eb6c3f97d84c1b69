package common

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ogero/subtitle-shots/pkg/subtitle"
)

const (
	// MaxTitleLength bounds the length, in characters, of a game title.
	MaxTitleLength = 200
	// MaxPlayers bounds the number of players of a single requested game.
	MaxPlayers = 64
	// MaxLevel bounds the requested intoxication level. The combinatorial search grows with the level.
	MaxLevel = 30
	// MaxBonusWords bounds the number of requested bonus words.
	MaxBonusWords = 20
)

var archiveExtensions = []string{".zip", ".rar", ".gz"}

// ParsePlayers parses the number of players of a game.
// It must be a positive integer, at most MaxPlayers.
func ParsePlayers(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid players, not a number")
	}

	if v <= 0 {
		return 0, errors.New("invalid players, less than or equal to 0")
	}

	if v > MaxPlayers {
		return 0, fmt.Errorf("invalid players, greater than %d", MaxPlayers)
	}

	return v, nil
}

// ParseBonus parses the number of bonus words, at most MaxBonusWords. An empty value means no bonus words.
func ParseBonus(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid bonus, not a number")
	}

	if v < 0 {
		return 0, errors.New("invalid bonus, less than 0")
	}

	if v > MaxBonusWords {
		return 0, fmt.Errorf("invalid bonus, greater than %d", MaxBonusWords)
	}

	return v, nil
}

// ValidateLevel checks if a parsed intoxication level is at most MaxLevel.
func ValidateLevel(level int) error {
	if level > MaxLevel {
		return fmt.Errorf("invalid level, greater than %d", MaxLevel)
	}

	return nil
}

// ParseSeed parses an optional random seed. It returns nil for an empty value.
func ParseSeed(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid seed, not an unsigned number")
	}

	return &v, nil
}

// ValidateFilename checks if the uploaded file name has a subtitle or archive extension.
// An empty name is valid, the content is then parsed as SRT or WebVTT.
func ValidateFilename(name string) error {
	if name == "" {
		return nil
	}

	ext := strings.ToLower(path.Ext(name))
	for _, supported := range append(subtitle.Formats(), archiveExtensions...) {
		if ext == supported {
			return nil
		}
	}

	return fmt.Errorf("invalid filename, unsupported extension %q", ext)
}

// ValidateTitle checks if the game title is printable and at most MaxTitleLength characters long.
func ValidateTitle(title string) error {
	if !utf8.ValidString(title) {
		return errors.New("invalid title, not UTF-8")
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("invalid title, longer than %d characters", MaxTitleLength)
	}

	if strings.IndexFunc(title, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return errors.New("invalid title, contains non printable characters")
	}

	return nil
}
