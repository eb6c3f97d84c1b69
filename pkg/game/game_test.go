package game_test

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/ogero/subtitle-shots/pkg/game"
	"github.com/ogero/subtitle-shots/pkg/lexical"
	"github.com/ogero/subtitle-shots/pkg/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// nounsOnly tags every whitespace separated word as a noun.
type nounsOnly struct {
	err error
}

func (n nounsOnly) Analyze(text string) ([]lexical.Token, error) {
	if n.err != nil {
		return nil, n.err
	}
	var tokens []lexical.Token
	for _, f := range strings.Fields(text) {
		tokens = append(tokens, lexical.Token{Text: f, Tag: "NN"})
	}
	return tokens, nil
}

func (nounsOnly) IsNoun(tag string) bool      { return tag == "NN" }
func (nounsOnly) IsStopword(word string) bool { return word == "the" }
func (nounsOnly) Language() language.Tag      { return language.English }

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// cues spreads every word count times over several cues.
func cues(counts map[string]int) []string {
	var out []string
	for word, count := range counts {
		for i := 0; i < count; i++ {
			out = append(out, "The "+strings.ToUpper(word[:1])+word[1:])
		}
	}
	return out
}

func words(a selector.Assignment) []string {
	out := make([]string, 0, len(a))
	for _, o := range a {
		out = append(out, o.Word)
	}
	return out
}

func strategy(s selector.Strategy) *selector.Strategy {
	return &s
}

var haunted = map[string]int{"ghost": 8, "house": 9, "door": 7, "ring": 1}

func TestAssemblerAnalyze(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})

	index, err := a.Analyze(cues(haunted))
	require.NoError(t, err)
	assert.Equal(t, frequency.Index{
		{Word: "house", Count: 9},
		{Word: "ghost", Count: 8},
		{Word: "door", Count: 7},
		{Word: "ring", Count: 1},
	}, index)

	boom := errors.New("boom")
	_, err = game.NewAssembler(nounsOnly{err: boom}).Analyze([]string{"ghost"})
	assert.ErrorIs(t, err, boom)
}

func TestAssemblerGenerateHaunted(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	req := game.Request{Players: 2, Level: 8, BonusWords: 2, Strategy: selector.ProximityBand}

	for seed := range uint64(20) {
		result, err := a.Generate(newRand(seed), req, cues(haunted))
		require.NoError(t, err)
		require.Len(t, result.Players, 2)

		assert.Equal(t, []string{"ghost"}, words(result.Players[0]))
		assert.Contains(t, []string{"house", "door"}, result.Players[1][0].Word)
		assert.Equal(t, []frequency.WordOccurrence{{Word: "ring", Count: 1}}, result.BonusWords)
	}
}

func TestAssemblerGenerateEmptyBonusPool(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	req := game.Request{Players: 1, Level: 8, BonusWords: 3}

	result, err := a.Generate(newRand(1), req, cues(map[string]int{"ghost": 8, "house": 9}))
	require.NoError(t, err)
	assert.Empty(t, result.BonusWords)

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"bonus_words":[]`)
}

func TestAssemblerGenerateLoneWord(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	text := cues(map[string]int{"ghost": 8, "ring": 1, "house": 20})

	result, err := a.Generate(newRand(3), game.Request{Players: 5, Level: 8, Strategy: selector.ExactRepeat}, text)
	require.NoError(t, err)
	require.Len(t, result.Players, 5)
	for _, p := range result.Players {
		assert.Equal(t, selector.Assignment{{Word: "ghost", Count: 8}}, p)
	}

	_, err = a.Generate(newRand(3), game.Request{Players: 5, Level: 8, Strategy: selector.ProximityBand}, text)
	assert.ErrorIs(t, err, selector.ErrInsufficientWords)
}

func TestAssemblerPlayFallback(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	index, err := a.Analyze(cues(map[string]int{"house": 9, "door": 7}))
	require.NoError(t, err)

	req := game.Request{Players: 2, Level: 8, Strategy: selector.ExactRepeat}
	_, err = a.Play(newRand(1), req, index)
	require.ErrorIs(t, err, selector.ErrInsufficientWords)

	req.Fallback = strategy(selector.ProximityBand)
	result, err := a.Play(newRand(1), req, index)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"house", "door"}, []string{result.Players[0][0].Word, result.Players[1][0].Word})
	assert.Equal(t, selector.ProximityBand, result.Strategy)

	// The fallback is not run when the first strategy succeeds.
	result, err = a.Play(newRand(1), game.Request{Players: 1, Level: 9, Strategy: selector.ExactRepeat, Fallback: strategy(selector.Combinatorial)}, index)
	require.NoError(t, err)
	assert.Equal(t, []string{"house"}, words(result.Players[0]))
	assert.Equal(t, selector.ExactRepeat, result.Strategy)
}

func TestAssemblerPlayWithoutUpperBounds(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})

	result, err := a.Play(newRand(1), game.Request{Players: 1, Level: 31, Strategy: selector.ExactRepeat},
		frequency.Index{{Word: "ghost", Count: 31}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, words(result.Players[0]))

	result, err = a.Play(newRand(1), game.Request{Players: 65, Level: 8, BonusWords: 100, Strategy: selector.ExactRepeat},
		frequency.Index{{Word: "ghost", Count: 8}, {Word: "ring", Count: 1}})
	require.NoError(t, err)
	require.Len(t, result.Players, 65)
	for _, p := range result.Players {
		assert.Equal(t, []string{"ghost"}, words(p))
	}
	assert.Len(t, result.BonusWords, 1)
}

func TestAssemblerCombinatorial(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	text := cues(map[string]int{"ghost": 4, "house": 2, "door": 6, "ring": 1, "knife": 3})

	result, err := a.Generate(newRand(5), game.Request{Players: 4, Level: 8, Strategy: selector.Combinatorial}, text)
	require.NoError(t, err)
	require.Len(t, result.Players, 4)
	for _, p := range result.Players {
		assert.LessOrEqual(t, len(p), selector.MaxWordsPerPlayer)
		sum := 0
		for _, o := range p {
			sum += o.Count
		}
		assert.Equal(t, 8, sum)
	}
}

func TestAssemblerDeterminism(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	text := cues(map[string]int{"ghost": 8, "house": 9, "door": 7, "ring": 1, "knife": 2, "car": 4, "phone": 8})

	for _, s := range selector.Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			req := game.Request{Players: 3, Level: 8, BonusWords: 2, Strategy: s}

			first, err := a.Generate(newRand(42), req, text)
			require.NoError(t, err)
			want, err := json.Marshal(first)
			require.NoError(t, err)

			for range 5 {
				result, err := a.Generate(newRand(42), req, text)
				require.NoError(t, err)
				got, err := json.Marshal(result)
				require.NoError(t, err)
				assert.Equal(t, string(want), string(got))
			}
		})
	}
}

func TestAssemblerInvalidRequest(t *testing.T) {
	a := game.NewAssembler(nounsOnly{})
	_, err := a.Generate(newRand(1), game.Request{Players: 0, Level: 8}, cues(haunted))
	assert.ErrorIs(t, err, game.ErrInvalidRequest)

	_, err = a.Play(newRand(1), game.Request{Players: 1, Level: 0}, nil)
	assert.ErrorIs(t, err, game.ErrInvalidRequest)
}

func TestResultJSON(t *testing.T) {
	result := game.Result{
		Players:    []selector.Assignment{{{Word: "ghost", Count: 8}}},
		BonusWords: []frequency.WordOccurrence{{Word: "ring", Count: 1}},
	}

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"words": [[{"word": "ghost", "occurrences": 8}]],
		"bonus_words": [{"word": "ring", "occurrences": 1}]
	}`, string(b))
}
