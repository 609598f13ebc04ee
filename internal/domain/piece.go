package domain

type Piece uint8

const (
	NoPiece Piece = iota
	WhitePawn
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
)

const PieceChannels = 12

// Channel returns the input plane of the piece: P,N,B,R,Q,K,p,n,b,r,q,k.
func (p Piece) Channel() int {
	return int(p) - 1
}

func (p Piece) IsWhite() bool {
	return p >= WhitePawn && p <= WhiteKing
}

func (p Piece) IsKing() bool {
	return p == WhiteKing || p == BlackKing
}

// Flip swaps the colour of the piece.
func (p Piece) Flip() Piece {
	switch {
	case p == NoPiece:
		return NoPiece
	case p.IsWhite():
		return p + 6
	default:
		return p - 6
	}
}

func (p Piece) String() string {
	if p == NoPiece || p > BlackKing {
		return "."
	}
	return string(pieceLetters[p-1])
}

const pieceLetters = "PNBRQKpnbrqk"

func ParsePiece(ch byte) Piece {
	for i := 0; i < len(pieceLetters); i++ {
		if pieceLetters[i] == ch {
			return Piece(i + 1)
		}
	}
	return NoPiece
}
