package pgn

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fe64/nnuetrain/internal/domain"
)

const testPgn = `[Event "scholar"]
[Result "1-0"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0

[Event "broken"]
[Result "0-1"]

1. e4 e5 2. Qxe8 Ke7 0-1

[Event "unfinished"]
[Result "*"]

1. d4 d5 *

[Event "knights"]
[Result "1/2-1/2"]

1. Nf3 Nf6 2. Ng1 Ng8 1/2-1/2
`

func TestWalkGames(t *testing.T) {
	var games []GameRaw
	var err = WalkGames(strings.NewReader(testPgn), func(gr GameRaw) error {
		games = append(games, gr)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 4 {
		t.Fatalf("expected 4 games, got %v", len(games))
	}
	if result, _ := tagValue(games[3].Tags, "Result"); result != GameResultDraw {
		t.Error(result)
	}
}

func loadItems(t *testing.T, filter Filter) []domain.DatasetItem {
	t.Helper()
	var path = filepath.Join(t.TempDir(), "games.pgn")
	if err := os.WriteFile(path, []byte(testPgn), 0644); err != nil {
		t.Fatal(err)
	}
	var provider = &Provider{Files: []string{path}, Filter: filter}
	var items = make(chan domain.DatasetItem, 64)
	var err = provider.Load(context.Background(), items)
	close(items)
	if err != nil {
		t.Fatal(err)
	}
	var result []domain.DatasetItem
	for item := range items {
		result = append(result, item)
	}
	return result
}

func TestProviderSkipsBrokenGames(t *testing.T) {
	var items = loadItems(t, Filter{})
	if len(items) != 8+5 {
		t.Fatalf("expected 13 positions, got %v", len(items))
	}
	for i, item := range items {
		var want = domain.OutcomeWhiteWin
		if i >= 8 {
			want = domain.OutcomeDraw
		}
		if item.Outcome != want {
			t.Error(i, item.Outcome, want)
		}
	}
	if items[0].Position.Ply != 0 || items[7].Position.Ply != 7 {
		t.Error(items[0].Position.Ply, items[7].Position.Ply)
	}
	if items[7].Position.WhiteMove {
		t.Error("black is to move after Qxf7#")
	}
}

func TestProviderFilter(t *testing.T) {
	var items = loadItems(t, Filter{MinPly: 2, SkipCheck: true})
	// scholar: plies 2..6 (ply 7 is check), knights: plies 2..4
	if len(items) != 5+3 {
		t.Fatalf("expected 8 positions, got %v", len(items))
	}
	for _, item := range items {
		if item.Position.Ply < 2 {
			t.Error(item.Position.Ply)
		}
	}
}

func TestNewPositionSquareConvention(t *testing.T) {
	var game, err = PlaySAN("", []string{"e4"})
	if err != nil {
		t.Fatal(err)
	}
	var positions = game.Positions()
	var pos = NewPosition(positions[len(positions)-1])
	var e4, _ = domain.ParseSquare("e4")
	var e2, _ = domain.ParseSquare("e2")
	if pos.Board[e4] != domain.WhitePawn || pos.Board[e2] != domain.NoPiece {
		t.Error(pos.FEN())
	}
	if pos.Board[domain.SquareA8] != domain.BlackRook {
		t.Error(pos.FEN())
	}
	if pos.WhiteMove || pos.Ply != 1 {
		t.Error(pos.WhiteMove, pos.Ply)
	}
	if pos.FEN() != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1" {
		t.Error(pos.FEN())
	}
}

func TestPlaySANStopsAtIllegalMove(t *testing.T) {
	var game, err = PlaySAN("", []string{"e4", "e5", "Ke3", "Nf3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(game.Moves()) != 2 {
		t.Error(len(game.Moves()))
	}
}
