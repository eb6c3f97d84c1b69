package lexical

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed stopwords/*.yaml
var embeddedStopwords embed.FS

// Stopwords is an immutable set of lowercased words of a language.
type Stopwords struct {
	language language.Tag
	words    map[string]struct{}
}

type stopwordsFile struct {
	Language string   `yaml:"language"`
	Terms    []string `yaml:"terms"`
}

// NewStopwords builds a stopword set. Terms are lowercased and trimmed.
func NewStopwords(lang language.Tag, terms []string) *Stopwords {
	lower := cases.Lower(lang)
	words := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			words[lower.String(term)] = struct{}{}
		}
	}
	return &Stopwords{language: lang, words: words}
}

// LoadStopwords returns the embedded stopword list for the base language of lang, e.g. "en" or "en-US".
func LoadStopwords(lang string) (*Stopwords, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to language.Parse: %w", err)
	}
	base, _ := tag.Base()

	data, err := embeddedStopwords.ReadFile("stopwords/" + base.String() + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no stopwords for language %q: %w", base, err)
	}

	return ParseStopwords(data)
}

// LoadStopwordsFile reads a YAML stopword list from path.
func LoadStopwordsFile(path string) (*Stopwords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to os.ReadFile: %w", err)
	}
	return ParseStopwords(data)
}

// ParseStopwords decodes a YAML stopword list of the form:
//
//	language: en
//	terms:
//	  - the
//	  - time
func ParseStopwords(data []byte) (*Stopwords, error) {
	var f stopwordsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to yaml.Unmarshal: %w", err)
	}

	tag := language.Und
	if f.Language != "" {
		var err error
		if tag, err = language.Parse(f.Language); err != nil {
			return nil, fmt.Errorf("invalid stopwords language %q: %w", f.Language, err)
		}
	}

	return NewStopwords(tag, f.Terms), nil
}

// Contains reports whether word is in the set. A nil set contains nothing.
func (s *Stopwords) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Language returns the language of the set.
func (s *Stopwords) Language() language.Tag {
	if s == nil {
		return language.Und
	}
	return s.language
}

// Len returns the number of stopwords.
func (s *Stopwords) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}
