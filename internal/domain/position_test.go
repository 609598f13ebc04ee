package domain

import "testing"

const initialFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

func TestFenRoundTrip(t *testing.T) {
	var fens = []string{
		initialFen,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w - - 0 3",
		"8/8/4k3/8/8/4K3/8/8 b - - 0 61",
	}
	for _, fen := range fens {
		var pos, err = NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(fen, err)
		}
		if pos.FEN() != fen {
			t.Error(fen, pos.FEN())
		}
	}
}

func TestSquareConvention(t *testing.T) {
	var pos, err = NewPositionFromFEN(initialFen)
	if err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		square string
		want   Piece
	}{
		{"a8", BlackRook},
		{"e8", BlackKing},
		{"e1", WhiteKing},
		{"h1", WhiteRook},
		{"d2", WhitePawn},
	}
	for _, test := range tests {
		var sq, ok = ParseSquare(test.square)
		if !ok {
			t.Fatal(test.square)
		}
		if pos.Board[sq] != test.want {
			t.Error(test.square, sq, pos.Board[sq], test.want)
		}
		if SquareName(sq) != test.square {
			t.Error(test.square, SquareName(sq))
		}
	}
	if sq, _ := ParseSquare("a8"); sq != SquareA8 {
		t.Error("a8", sq)
	}
	if sq, _ := ParseSquare("h1"); sq != SquareH1 {
		t.Error("h1", sq)
	}
}

func TestPly(t *testing.T) {
	var pos, err = NewPositionFromFEN("8/8/4k3/8/8/4K3/8/8 b - - 0 61")
	if err != nil {
		t.Fatal(err)
	}
	if pos.Ply != 121 {
		t.Error(pos.Ply)
	}
}

func TestBadFen(t *testing.T) {
	var fens = []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x - - 0 1",
	}
	for _, fen := range fens {
		if _, err := NewPositionFromFEN(fen); err == nil {
			t.Error("expected error", fen)
		}
	}
}

func TestMirror(t *testing.T) {
	var pos, err = NewPositionFromFEN(initialFen)
	if err != nil {
		t.Fatal(err)
	}
	var mirror = pos.Mirror()
	if mirror.WhiteMove {
		t.Error("side to move not flipped")
	}
	mirror.WhiteMove = true
	if mirror.FEN() != initialFen {
		t.Error(mirror.FEN())
	}
	var back = mirror.Mirror()
	back.WhiteMove = true
	if back.Board != pos.Board {
		t.Error("double mirror changed the board")
	}
}

func TestKey(t *testing.T) {
	var a, _ = NewPositionFromFEN(initialFen)
	var b, _ = NewPositionFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1")
	if a.Key() == b.Key() {
		t.Error("different positions share a key")
	}
	var c = a
	c.Ply = 40
	if a.Key() != c.Key() {
		t.Error("key depends on ply")
	}
}
