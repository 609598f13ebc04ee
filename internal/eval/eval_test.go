package eval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/target"
)

func mustPosition(t *testing.T, fen string) domain.Position {
	t.Helper()
	var pos, err = domain.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

func TestMaterial(t *testing.T) {
	var tests = []struct {
		fen  string
		want int
	}{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", 0},
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
		{"4k3/8/8/8/8/8/8/3QK3 b - - 0 1", 900},
		{"3qk3/8/8/8/8/8/8/2B1K3 w - - 0 1", 330 - 900},
		{"4k3/pp6/8/8/8/8/8/1N2KR2 w - - 0 1", 320 + 500 - 200},
	}
	var m = NewMaterial()
	for _, test := range tests {
		var pos = mustPosition(t, test.fen)
		if got := m.Evaluate(&pos); got != test.want {
			t.Error(test.fen, got, test.want)
		}
	}
}

func TestParseScore(t *testing.T) {
	var tests = []struct {
		line  string
		want  target.Score
		found bool
	}{
		{"info depth 12 seldepth 15 score cp 34 nodes 1000 pv e2e4", target.Score{Centipawns: 34}, true},
		{"info depth 20 score mate -3 pv a1a2", target.Score{Centipawns: -3, Mate: true}, true},
		{"info depth 0 score mate 0", target.Score{Centipawns: -1, Mate: true}, true},
		{"info depth 8 score cp 50 lowerbound nodes 10", target.Score{}, false},
		{"info string NNUE evaluation enabled", target.Score{}, false},
		{"info depth 1 score", target.Score{}, false},
		{"info depth 1 score cp x", target.Score{}, false},
	}
	for _, test := range tests {
		var fields = strings.Fields(test.line)
		var got, found = parseScore(fields[1:])
		if got != test.want || found != test.found {
			t.Error(test.line, got, found)
		}
	}
}

// fakeEngine answers the UCI handshake and reports the given info lines for every search.
func fakeEngine(t *testing.T, info ...string) *UciEngine {
	var commandsReader, commandsWriter = io.Pipe()
	var outputReader, outputWriter = io.Pipe()
	go func() {
		defer outputWriter.Close()
		var scanner = bufio.NewScanner(commandsReader)
		for scanner.Scan() {
			var fields = strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "uci":
				fmt.Fprintln(outputWriter, "id name fake")
				fmt.Fprintln(outputWriter, "uciok")
			case "isready":
				fmt.Fprintln(outputWriter, "readyok")
			case "go":
				for _, line := range info {
					fmt.Fprintln(outputWriter, line)
				}
				fmt.Fprintln(outputWriter, "bestmove e2e4")
			case "quit":
				return
			}
		}
	}()
	var engine = newUciEngine(outputReader, commandsWriter)
	if err := engine.handshake(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestUciEngineEvaluate(t *testing.T) {
	var ctx = context.Background()
	var tests = []struct {
		fen  string
		info []string
		want target.Score
	}{
		{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
			[]string{"info depth 1 score cp 10", "info depth 2 score cp 35 pv e2e4"},
			target.Score{Centipawns: 35},
		},
		{
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1",
			[]string{"info depth 2 score cp -35", "info depth 3 score cp 90 upperbound"},
			target.Score{Centipawns: 35},
		},
		{
			"4k3/8/8/8/8/8/8/3QK3 b - - 0 1",
			[]string{"info depth 5 score mate -4"},
			target.Score{Centipawns: 4, Mate: true},
		},
		{
			"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
			[]string{"info depth 1 score mate 0"},
			target.Score{Centipawns: -1, Mate: true},
		},
		{
			"rnbqkbnr/ppppp2p/5p2/6pQ/4P3/8/PPPP1PPP/RNB1KBNR b KQkq - 1 3",
			[]string{"info depth 1 score mate 0"},
			target.Score{Centipawns: 1, Mate: true},
		},
	}
	for _, test := range tests {
		var engine = fakeEngine(t, test.info...)
		var pos = mustPosition(t, test.fen)
		var got, err = engine.Evaluate(ctx, &pos, 5)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Error(test.fen, got, test.want)
		}
	}
}

func TestUciEngineNoScore(t *testing.T) {
	var engine = fakeEngine(t, "info string thinking")
	var pos = mustPosition(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	var _, err = engine.Evaluate(context.Background(), &pos, 1)
	if !errors.Is(err, ErrNoScore) {
		t.Error(err)
	}
}

type countingEvaluator struct {
	calls int
	err   error
}

func (e *countingEvaluator) Evaluate(ctx context.Context, pos *domain.Position, depth int) (target.Score, error) {
	e.calls++
	if e.err != nil {
		return target.Score{}, e.err
	}
	return target.Score{Centipawns: 10*depth + pos.PieceCount()}, nil
}

func TestCachedEvaluator(t *testing.T) {
	var store, err = OpenStore("")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var ctx = context.Background()
	var inner = &countingEvaluator{}
	var cached = NewCachedEvaluator(inner, store)
	var start = mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1")
	var other = mustPosition(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b - - 0 1")

	var steps = []struct {
		pos   *domain.Position
		depth int
		want  int
		calls int
	}{
		{&start, 3, 62, 1},
		{&start, 3, 62, 1},
		{&start, 4, 72, 2},
		{&other, 3, 62, 3},
		{&other, 3, 62, 3},
	}
	for i, step := range steps {
		var score, err = cached.Evaluate(ctx, step.pos, step.depth)
		if err != nil {
			t.Fatal(err)
		}
		if score.Centipawns != step.want || inner.calls != step.calls {
			t.Error(i, score, inner.calls)
		}
	}
	var hits, misses = cached.Stats()
	if hits != 2 || misses != 3 {
		t.Error(hits, misses)
	}

	// a precomputed key shares entries with Evaluate
	score, err := cached.EvaluateKey(ctx, other.Key(), &other, 3)
	if err != nil || score.Centipawns != 62 || inner.calls != 3 {
		t.Error(score, err, inner.calls)
	}

	// a second evaluator over the same store reuses stored scores
	var fresh = &countingEvaluator{err: errors.New("unreachable")}
	score, err = NewCachedEvaluator(fresh, store).Evaluate(ctx, &start, 4)
	if err != nil || score.Centipawns != 72 || fresh.calls != 0 {
		t.Error(score, err, fresh.calls)
	}
}

func TestCachedEvaluatorError(t *testing.T) {
	var store, err = OpenStore("")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var inner = &countingEvaluator{err: errors.New("engine crashed")}
	var cached = NewCachedEvaluator(inner, store)
	var pos = mustPosition(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	for i := 0; i < 2; i++ {
		if _, err := cached.Evaluate(context.Background(), &pos, 1); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Error("errors must not be cached", inner.calls)
	}
}
