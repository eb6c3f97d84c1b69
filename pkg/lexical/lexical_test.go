package lexical_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogero/subtitle-shots/pkg/lexical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// stubAnalysis splits on whitespace and tags each word from a fixed table, defaulting to "NN".
type stubAnalysis struct {
	tags      map[string]string
	stopwords *lexical.Stopwords
	err       error
}

func (s stubAnalysis) Analyze(text string) ([]lexical.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	var tokens []lexical.Token
	for _, f := range strings.Fields(text) {
		tag, ok := s.tags[f]
		if !ok {
			tag = "NN"
		}
		tokens = append(tokens, lexical.Token{Text: f, Tag: tag})
	}
	return tokens, nil
}

func (s stubAnalysis) IsNoun(tag string) bool      { return strings.HasPrefix(tag, "NN") }
func (s stubAnalysis) IsStopword(word string) bool { return s.stopwords.Contains(word) }
func (s stubAnalysis) Language() language.Tag      { return language.English }

func TestFilter(t *testing.T) {
	ta := stubAnalysis{
		tags: map[string]string{
			"runs":  "VBZ",
			"quick": "JJ",
			"Ghost": "NNP",
		},
		stopwords: lexical.NewStopwords(language.English, []string{"Time"}),
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Nouns are lowercased and repeats kept",
			text: "Ghost ghost HOUSE ghost",
			want: []string{"ghost", "ghost", "house", "ghost"},
		},
		{
			name: "Single characters are dropped",
			text: "a b ghost",
			want: []string{"ghost"},
		},
		{
			name: "Numbers are dropped",
			text: "42 1984 ghost 2nd",
			want: []string{"ghost", "2nd"},
		},
		{
			name: "Non nouns are dropped",
			text: "quick ghost runs",
			want: []string{"ghost"},
		},
		{
			name: "Stopwords are matched after lowercasing",
			text: "TIME time ghost",
			want: []string{"ghost"},
		},
		{
			name: "Empty text",
			text: "",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lexical.Filter(ta, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterDeterministic(t *testing.T) {
	ta := stubAnalysis{}
	text := "door ghost house ghost door"

	first, err := lexical.Filter(ta, text)
	require.NoError(t, err)
	for range 5 {
		got, err := lexical.Filter(ta, text)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestFilterAnalyzeError(t *testing.T) {
	boom := errors.New("boom")
	_, err := lexical.Filter(stubAnalysis{err: boom}, "ghost")
	assert.ErrorIs(t, err, boom)
}

func TestLoadStopwords(t *testing.T) {
	tests := []struct {
		name    string
		lang    string
		wantErr assert.ErrorAssertionFunc
	}{
		{name: "English", lang: "en", wantErr: assert.NoError},
		{name: "Regional English", lang: "en-US", wantErr: assert.NoError},
		{name: "Unknown language", lang: "xx", wantErr: assert.Error},
		{name: "Invalid tag", lang: "not a tag", wantErr: assert.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw, err := lexical.LoadStopwords(tt.lang)
			if !tt.wantErr(t, err) || err != nil {
				return
			}
			assert.Equal(t, language.English, sw.Language())
			assert.Positive(t, sw.Len())
			assert.True(t, sw.Contains("the"))
			assert.True(t, sw.Contains("yes"))
			assert.True(t, sw.Contains("n't"))
			assert.False(t, sw.Contains("ghost"))
		})
	}
}

func TestLoadStopwordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: es\nterms:\n  - Cosa\n  - \" vez \"\n  - \"\"\n"), 0o600))

	sw, err := lexical.LoadStopwordsFile(path)
	require.NoError(t, err)
	assert.Equal(t, language.Spanish, sw.Language())
	assert.Equal(t, 2, sw.Len())
	assert.True(t, sw.Contains("cosa"))
	assert.True(t, sw.Contains("vez"))

	_, err = lexical.LoadStopwordsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseStopwords(t *testing.T) {
	sw, err := lexical.ParseStopwords([]byte("terms: [one, two]"))
	require.NoError(t, err)
	assert.Equal(t, language.Und, sw.Language())
	assert.True(t, sw.Contains("two"))

	_, err = lexical.ParseStopwords([]byte("language: [nope"))
	assert.Error(t, err)

	_, err = lexical.ParseStopwords([]byte("language: \"!!\""))
	assert.Error(t, err)
}

func TestNilStopwords(t *testing.T) {
	var sw *lexical.Stopwords
	assert.False(t, sw.Contains("the"))
	assert.Zero(t, sw.Len())
	assert.Equal(t, language.Und, sw.Language())
}

func TestProseAnalysis(t *testing.T) {
	sw, err := lexical.LoadStopwords("en")
	require.NoError(t, err)
	ta := lexical.NewProseAnalysis(sw)

	assert.Equal(t, language.English, ta.Language())
	assert.True(t, ta.IsNoun("NN"))
	assert.True(t, ta.IsNoun("NNPS"))
	assert.False(t, ta.IsNoun("VB"))
	assert.True(t, ta.IsStopword("the"))

	tokens, err := ta.Analyze("The ghost opened the door.")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	assert.Equal(t, "The", tokens[0].Text)

	words, err := lexical.Filter(ta, "The ghost opened the door. The ghost screamed.")
	require.NoError(t, err)
	assert.Contains(t, words, "ghost")
	assert.NotContains(t, words, "the")
	assert.NotContains(t, words, ".")

	assert.Equal(t, language.English, lexical.NewProseAnalysis(nil).Language())
}
