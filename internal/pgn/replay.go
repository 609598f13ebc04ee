package pgn

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/notnil/chess"
)

// Filter selects which replayed positions become dataset items.
type Filter struct {
	MinPly     int
	SkipCheck  bool
	SampleRate float64 // 0 or 1 keeps every position
}

func (f *Filter) accept(ply int, inCheck bool, rnd *rand.Rand) bool {
	if ply < f.MinPly {
		return false
	}
	if f.SkipCheck && inCheck {
		return false
	}
	if f.SampleRate > 0 && f.SampleRate < 1 && rnd != nil {
		return rnd.Float64() < f.SampleRate
	}
	return true
}

// NewPosition converts a position of the rules library to the evaluator's layout.
func NewPosition(pos *chess.Position) domain.Position {
	var result = domain.Position{
		WhiteMove: pos.Turn() == chess.White,
	}
	for sq, piece := range pos.Board().SquareMap() {
		result.Board[domain.MakeSquare(int(sq.File()), int(sq.Rank()))] = convertPiece(piece)
	}
	result.Ply = plyFromFen(pos.String(), result.WhiteMove)
	return result
}

func plyFromFen(fen string, whiteMove bool) int {
	var fields = strings.Fields(fen)
	if len(fields) < 6 {
		return 0
	}
	var fullMove, err = strconv.Atoi(fields[5])
	if err != nil || fullMove < 1 {
		return 0
	}
	var ply = 2 * (fullMove - 1)
	if !whiteMove {
		ply++
	}
	return ply
}

func convertPiece(piece chess.Piece) domain.Piece {
	var result domain.Piece
	switch piece.Type() {
	case chess.Pawn:
		result = domain.WhitePawn
	case chess.Knight:
		result = domain.WhiteKnight
	case chess.Bishop:
		result = domain.WhiteBishop
	case chess.Rook:
		result = domain.WhiteRook
	case chess.Queen:
		result = domain.WhiteQueen
	case chess.King:
		result = domain.WhiteKing
	default:
		return domain.NoPiece
	}
	if piece.Color() == chess.Black {
		result = result.Flip()
	}
	return result
}

// Replay walks the positions of a game and emits the ones accepted by the filter.
func Replay(
	game *chess.Game,
	outcome float64,
	filter *Filter,
	rnd *rand.Rand,
	emit func(domain.DatasetItem) error,
) error {
	var positions = game.Positions()
	var moves = game.Moves()
	for i, chessPos := range positions {
		var inCheck = i > 0 && moves[i-1].HasTag(chess.Check)
		var pos = NewPosition(chessPos)
		if !filter.accept(pos.Ply, inCheck, rnd) {
			continue
		}
		var err = emit(domain.DatasetItem{
			Position: pos,
			Outcome:  outcome,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PlaySAN builds a game from a list of SAN moves. Replay stops at the first move that
// cannot be decoded; the moves played so far are kept.
func PlaySAN(startFen string, moves []string) (*chess.Game, error) {
	var game *chess.Game
	if startFen == "" {
		game = chess.NewGame()
	} else {
		var fen, err = chess.FEN(startFen)
		if err != nil {
			return nil, err
		}
		game = chess.NewGame(fen)
	}
	for _, san := range moves {
		if err := game.MoveStr(san); err != nil {
			break
		}
	}
	return game, nil
}
