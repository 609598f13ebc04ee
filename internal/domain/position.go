package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// Position is an immutable snapshot of a board. It carries no castling or en passant
// rights: the network input depends only on piece placement.
type Position struct {
	Board     [SquareCount]Piece
	WhiteMove bool
	Ply       int
}

var ErrBadFen = errors.New("bad fen")

// NewPositionFromFEN reads piece placement, side to move and the move counters of a FEN.
// Castling and en passant fields are accepted and ignored.
func NewPositionFromFEN(fen string) (Position, error) {
	var fields = strings.Fields(fen)
	if len(fields) < 2 {
		return Position{}, fmt.Errorf("%w %v", ErrBadFen, fen)
	}
	var p Position
	var sq = 0
	for i := 0; i < len(fields[0]); i++ {
		var ch = fields[0][i]
		switch {
		case ch == '/':
			if sq%8 != 0 {
				return Position{}, fmt.Errorf("%w %v", ErrBadFen, fen)
			}
		case ch >= '1' && ch <= '8':
			sq += int(ch - '0')
		default:
			var piece = ParsePiece(ch)
			if piece == NoPiece || sq >= SquareCount {
				return Position{}, fmt.Errorf("%w %v", ErrBadFen, fen)
			}
			p.Board[sq] = piece
			sq++
		}
	}
	if sq != SquareCount {
		return Position{}, fmt.Errorf("%w %v", ErrBadFen, fen)
	}
	switch fields[1] {
	case "w":
		p.WhiteMove = true
	case "b":
		p.WhiteMove = false
	default:
		return Position{}, fmt.Errorf("%w %v", ErrBadFen, fen)
	}
	if len(fields) >= 6 {
		var fullMove, err = strconv.Atoi(fields[5])
		if err == nil && fullMove > 0 {
			p.Ply = 2 * (fullMove - 1)
			if !p.WhiteMove {
				p.Ply++
			}
		}
	}
	return p, nil
}

// FEN renders the position. Castling and en passant are written as "-".
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 0; rank < 8; rank++ {
		var empty = 0
		for file := 0; file < 8; file++ {
			var piece = p.Board[rank*8+file]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty != 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty != 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank != 7 {
			sb.WriteByte('/')
		}
	}
	if p.WhiteMove {
		sb.WriteString(" w - - 0 ")
	} else {
		sb.WriteString(" b - - 0 ")
	}
	sb.WriteString(strconv.Itoa(p.Ply/2 + 1))
	return sb.String()
}

func (p Position) String() string {
	return p.FEN()
}

// Key is the Zobrist hash of the placement and side to move.
func (p *Position) Key() uint64 {
	var board = dragontoothmg.ParseFen(p.FEN())
	return board.Hash()
}

func (p *Position) PieceCount() int {
	var n = 0
	for _, piece := range p.Board {
		if piece != NoPiece {
			n++
		}
	}
	return n
}

// Mirror flips the board vertically and swaps colours, including the side to move.
func (p *Position) Mirror() Position {
	var result = Position{
		WhiteMove: !p.WhiteMove,
		Ply:       p.Ply,
	}
	for sq, piece := range p.Board {
		result.Board[FlipSquare(sq)] = piece.Flip()
	}
	return result
}
