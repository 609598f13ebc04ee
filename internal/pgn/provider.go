package pgn

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/notnil/chess"
)

// Provider replays every game of a set of PGN files.
type Provider struct {
	Files  []string
	Filter Filter
	Seed   int64
}

// DefaultFilter skips the opening plies and positions in check and samples 40% of the rest.
func DefaultFilter() Filter {
	return Filter{
		MinPly:     7,
		SkipCheck:  true,
		SampleRate: 0.4,
	}
}

func NewFolderProvider(folderPath string) (*Provider, error) {
	var files, err = pgnFiles(folderPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one PGN file is expected in %v", folderPath)
	}
	return &Provider{
		Files:  files,
		Filter: DefaultFilter(),
	}, nil
}

func (p *Provider) Load(
	ctx context.Context,
	items chan<- domain.DatasetItem,
) error {
	var rnd = rand.New(rand.NewSource(p.Seed))
	var gamesCount, skippedCount int
	var emit = func(item domain.DatasetItem) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case items <- item:
			return nil
		}
	}
	for _, filepath := range p.Files {
		log.Println("loadGames",
			"filepath", filepath)
		var err = WalkPgnFile(filepath, func(gr GameRaw) error {
			var game, outcome, err = decodeGame(gr)
			if err != nil {
				skippedCount++
				log.Println("skip game", err)
				return nil
			}
			gamesCount++
			return Replay(game, outcome, &p.Filter, rnd, emit)
		})
		if err != nil {
			return err
		}
	}
	log.Println("loadGames",
		"gamesCount", gamesCount,
		"skippedCount", skippedCount)
	return nil
}

func decodeGame(gr GameRaw) (*chess.Game, float64, error) {
	var result, _ = tagValue(gr.Tags, "Result")
	var outcome, ok = ParseResult(result)
	if !ok {
		return nil, 0, fmt.Errorf("bad game result %q", result)
	}
	var opt, err = chess.PGN(strings.NewReader(gr.String()))
	if err != nil {
		return nil, 0, fmt.Errorf("parse game failed %w", err)
	}
	return chess.NewGame(opt), outcome, nil
}

func pgnFiles(folderPath string) ([]string, error) {
	dirs, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, de := range dirs {
		if !de.IsDir() && filepath.Ext(de.Name()) == ".pgn" {
			result = append(result, filepath.Join(folderPath, de.Name()))
		}
	}
	return result, nil
}
