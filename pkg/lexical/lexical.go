package lexical

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Token is a word produced by a tokenizer along with its part-of-speech tag.
type Token struct {
	Text string
	Tag  string
}

// TextAnalysis bundles the tokenizer, the part-of-speech tagger and the stopword set of a language.
// Implementations must be safe for concurrent use once built.
type TextAnalysis interface {
	// Analyze splits text on word boundaries and tags every token.
	Analyze(text string) ([]Token, error)
	// IsNoun reports whether tag is a noun tag.
	IsNoun(tag string) bool
	// IsStopword reports whether the lowercased word is a stopword.
	IsStopword(word string) bool
	// Language is the language of the analyzed text.
	Language() language.Tag
}

// Filter returns the lowercased nouns of text that are longer than one character, not numeric and not stopwords.
// Repeated words are kept, in text order.
func Filter(ta TextAnalysis, text string) ([]string, error) {
	tokens, err := ta.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("failed to lexical.TextAnalysis.Analyze: %w", err)
	}

	lower := cases.Lower(ta.Language())

	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token.Text) <= 1 || isNumeric(token.Text) || !ta.IsNoun(token.Tag) {
			continue
		}
		word := lower.String(token.Text)
		if ta.IsStopword(word) {
			continue
		}
		words = append(words, word)
	}

	return words, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}
