// Command shots generates a drinking game from a subtitle file.
//
//	shots -players 3 -level hungry -bonus 2 -strategy proximity movie.srt
//	shots -list -min 5 -max 10 movie.zip
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"text/tabwriter"

	"github.com/ogero/subtitle-shots/internal/common"
	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/ogero/subtitle-shots/pkg/game"
	"github.com/ogero/subtitle-shots/pkg/lexical"
	"github.com/ogero/subtitle-shots/pkg/selector"
	"github.com/ogero/subtitle-shots/pkg/subtitle"
)

var newAnalysis = lexical.NewProseAnalysis

func main() {
	common.Log = slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "shots:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("shots", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		players   = fs.Int("players", 2, "number of players")
		level     = game.Hungry
		bonus     = fs.Int("bonus", 0, "number of bonus words")
		strategy  = selector.ProximityBand
		fallback  = fs.String("fallback", "", "strategy used when the first one runs out of words")
		seed      = fs.Uint64("seed", 0, "random seed, 0 picks one")
		list      = fs.Bool("list", false, "print the frequency index instead of a game")
		minCount  = fs.Int("min", 1, "with -list, lowest count listed")
		maxCount  = fs.Int("max", 0, "with -list, counts below this are listed, 0 lists all")
		lang      = fs.String("lang", "en", "stopwords language")
		stopwords = fs.String("stopwords", "", "YAML stopwords file, replaces the -lang list")
		limit     = fs.Int64("limit", 2<<20, "maximum subtitle size in bytes")
	)
	fs.TextVar(&level, "level", game.Hungry, "intoxication level, a name or a number")
	fs.TextVar(&strategy, "strategy", selector.ProximityBand, "selection strategy: proximity, exact or combinatorial")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected one subtitle file")
	}

	sw, err := loadStopwords(*lang, *stopwords)
	if err != nil {
		return err
	}
	assembler := game.NewAssembler(newAnalysis(sw))

	name := fs.Arg(0)
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to os.Open: %w", err)
	}
	defer f.Close()

	cues, err := subtitle.Read(name, f, *limit)
	if err != nil {
		return fmt.Errorf("failed to subtitle.Read: %w", err)
	}

	index, err := assembler.Analyze(cues)
	if err != nil {
		return fmt.Errorf("failed to game.Assembler.Analyze: %w", err)
	}

	if *list {
		return printIndex(stdout, window(index, *minCount, *maxCount))
	}

	req := game.Request{
		Players:    *players,
		Level:      int(level),
		BonusWords: *bonus,
		Strategy:   strategy,
	}
	if *fallback != "" {
		s, err := selector.ParseStrategy(*fallback)
		if err != nil {
			return err
		}
		req.Fallback = &s
	}

	if *seed == 0 {
		*seed = rand.Uint64()
		common.Log.Debug("Picked seed", "seed", *seed)
	}

	result, err := assembler.Play(rand.New(rand.NewPCG(*seed, *seed)), req, index)
	if err != nil {
		return fmt.Errorf("failed to game.Assembler.Play: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadStopwords(lang, path string) (*lexical.Stopwords, error) {
	if path != "" {
		return lexical.LoadStopwordsFile(path)
	}
	return lexical.LoadStopwords(lang)
}

func window(index frequency.Index, minCount, maxCount int) frequency.Index {
	if maxCount <= 0 {
		return index.Where(func(o frequency.WordOccurrence) bool { return o.Count >= minCount })
	}
	return index.Between(minCount, maxCount)
}

func printIndex(w io.Writer, index frequency.Index) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tCOUNT")
	for _, o := range index {
		fmt.Fprintf(tw, "%s\t%d\n", o.Word, o.Count)
	}
	return tw.Flush()
}
