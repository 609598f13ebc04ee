package features

import (
	"errors"
	"testing"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/pgn"
)

var testGames = [][]string{
	{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7", "Re1", "b5", "Bb3", "d6", "c3", "O-O"},
	{"e4", "e5", "Nf3", "Nc6", "d4", "exd4", "Nxd4", "Nxd4", "Qxd4", "Qf6", "Qxf6", "Nxf6", "Bd3", "Bc5", "O-O", "d6", "Nc3", "O-O"},
	{"e4", "d5", "exd5", "Qxd5", "Nc3", "Qa5", "d4", "c6", "Nf3", "Bf5", "Bc4", "e6", "O-O", "Nf6"},
}

func replayPositions(t *testing.T) []domain.Position {
	t.Helper()
	var result []domain.Position
	for _, moves := range testGames {
		var game, err = pgn.PlaySAN("", moves)
		if err != nil {
			t.Fatal(err)
		}
		if len(game.Moves()) != len(moves) {
			t.Fatalf("illegal move in test game %v", moves)
		}
		for _, pos := range game.Positions() {
			result = append(result, pgn.NewPosition(pos))
		}
	}
	return result
}

func TestEncodeSize(t *testing.T) {
	for _, pos := range replayPositions(t) {
		var input, err = Encode(&pos)
		if err != nil {
			t.Fatal(pos.FEN(), err)
		}
		if len(input) < 2 || len(input) > 32 {
			t.Error(pos.FEN(), len(input))
		}
		if len(input) != pos.PieceCount() {
			t.Error(pos.FEN(), len(input), pos.PieceCount())
		}
		for i, index := range input {
			if index < 0 || index >= InputSize {
				t.Error(pos.FEN(), index)
			}
			if i > 0 && input[i-1] >= index {
				t.Error("indices not strictly ascending", pos.FEN())
			}
		}
	}
}

func TestEncodeBareKings(t *testing.T) {
	var pos, err = domain.NewPositionFromFEN("8/8/4k3/8/8/4K3/8/8 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	input, err := Encode(&pos)
	if err != nil {
		t.Fatal(err)
	}
	// white king e3 = square 44, black king e6 = square 20
	var want = []int16{5*64 + 44, 11*64 + 20}
	if len(input) != 2 || input[0] != want[0] || input[1] != want[1] {
		t.Error(input, want)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	for _, pos := range replayPositions(t) {
		var a, _ = Encode(&pos)
		var b, _ = Encode(&pos)
		if !equal(a, b) {
			t.Error(pos.FEN())
		}
	}
}

func TestMovedPieceChangesTwoIndices(t *testing.T) {
	var a, err = domain.NewPositionFromFEN("r3k2r/ppp2ppp/2n5/3q4/8/2N5/PPP2PPP/R2QK2R w - - 0 12")
	if err != nil {
		t.Fatal(err)
	}
	var b = a
	var from, _ = domain.ParseSquare("c3")
	var to, _ = domain.ParseSquare("e4")
	b.Board[to] = b.Board[from]
	b.Board[from] = domain.NoPiece

	inputA, _ := Encode(&a)
	inputB, _ := Encode(&b)
	var onlyA = difference(inputA, inputB)
	var onlyB = difference(inputB, inputA)
	if len(onlyA) != 1 || len(onlyB) != 1 {
		t.Fatal(onlyA, onlyB)
	}
	if int(onlyA[0]) != InputIndex(domain.WhiteKnight, from) ||
		int(onlyB[0]) != InputIndex(domain.WhiteKnight, to) {
		t.Error(onlyA, onlyB)
	}
}

func TestInvalidPiece(t *testing.T) {
	var pos, _ = domain.NewPositionFromFEN("8/8/4k3/8/8/4K3/8/8 w - - 0 1")
	pos.Board[0] = domain.Piece(13)
	var _, err = Encode(&pos)
	if !errors.Is(err, ErrInvalidSquareMapping) {
		t.Error(err)
	}
}

func TestMirror(t *testing.T) {
	for _, pos := range replayPositions(t) {
		var input, _ = Encode(&pos)
		var mirrorPos = pos.Mirror()
		var want, _ = Encode(&mirrorPos)
		if !equal(Mirror(input), want) {
			t.Error(pos.FEN())
		}
	}
}

func difference(a, b []int16) []int16 {
	var set = make(map[int16]bool)
	for _, x := range b {
		set[x] = true
	}
	var result []int16
	for _, x := range a {
		if !set[x] {
			result = append(result, x)
		}
	}
	return result
}

func equal(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
