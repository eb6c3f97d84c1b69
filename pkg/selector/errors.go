package selector

import "fmt"

// ErrorKind classifies a GenerationError.
type ErrorKind int

const (
	// KindInsufficientWords means the selection pool is too small for the chosen strategy.
	KindInsufficientWords ErrorKind = iota + 1
	// KindInsufficientCombinations means no list of counts sums to the intoxication level.
	KindInsufficientCombinations
)

func (k ErrorKind) String() string {
	switch k {
	case KindInsufficientWords:
		return "insufficient_words"
	case KindInsufficientCombinations:
		return "insufficient_combinations"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// GenerationError is returned when a game cannot be generated from a frequency index.
type GenerationError struct {
	Kind   ErrorKind
	Reason string
}

var (
	// ErrInsufficientWords matches every GenerationError, since insufficient combinations are a special case of it.
	ErrInsufficientWords = &GenerationError{Kind: KindInsufficientWords}
	// ErrInsufficientCombinations matches only GenerationError of KindInsufficientCombinations.
	ErrInsufficientCombinations = &GenerationError{Kind: KindInsufficientCombinations}
)

func (e *GenerationError) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is a GenerationError of the same kind, or of a kind e specializes.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindInsufficientWords && e.Kind == KindInsufficientCombinations
}

func insufficientWords(format string, args ...any) error {
	return &GenerationError{Kind: KindInsufficientWords, Reason: fmt.Sprintf(format, args...)}
}

func insufficientCombinations(format string, args ...any) error {
	return &GenerationError{Kind: KindInsufficientCombinations, Reason: fmt.Sprintf(format, args...)}
}
