package lexical

import (
	"fmt"

	"github.com/jdkato/prose/v2"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// Penn Treebank noun tags.
var nounTags = map[string]struct{}{
	"NN":   {},
	"NNS":  {},
	"NNP":  {},
	"NNPS": {},
}

type proseAnalysis struct {
	stopwords *Stopwords
}

// NewProseAnalysis returns a TextAnalysis backed by the prose English tokenizer and perceptron tagger.
// Tokens are tagged with the Penn Treebank tag set.
func NewProseAnalysis(stopwords *Stopwords) TextAnalysis {
	return &proseAnalysis{stopwords: stopwords}
}

// Analyze tokenizes and tags text. Sentence segmentation and entity extraction are disabled.
func (p *proseAnalysis) Analyze(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to prose.NewDocument: %w", err)
	}

	return lo.Map(doc.Tokens(), func(t prose.Token, _ int) Token {
		return Token{Text: t.Text, Tag: t.Tag}
	}), nil
}

func (p *proseAnalysis) IsNoun(tag string) bool {
	_, ok := nounTags[tag]
	return ok
}

func (p *proseAnalysis) IsStopword(word string) bool {
	return p.stopwords.Contains(word)
}

func (p *proseAnalysis) Language() language.Tag {
	if lang := p.stopwords.Language(); lang != language.Und {
		return lang
	}
	return language.English
}
