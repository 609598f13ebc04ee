package eval

import "github.com/fe64/nnuetrain/internal/domain"

// Material counts piece values. Kings are not scored.
type Material struct{}

func NewMaterial() *Material {
	return &Material{}
}

var pieceValues = [domain.PieceChannels / 2]int{100, 320, 330, 500, 900, 0}

// Evaluate returns the material balance in centipawns from White's point of view.
func (m *Material) Evaluate(p *domain.Position) int {
	var eval int
	for _, piece := range p.Board {
		if piece == domain.NoPiece || piece > domain.BlackKing {
			continue
		}
		if piece.IsWhite() {
			eval += pieceValues[piece.Channel()]
		} else {
			eval -= pieceValues[piece.Flip().Channel()]
		}
	}
	return eval
}
