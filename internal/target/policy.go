package target

import (
	"context"
	"log"

	"github.com/fe64/nnuetrain/internal/domain"
)

// Score is an engine result from White's point of view. With Mate set, Centipawns
// holds the signed mate distance in moves.
type Score struct {
	Centipawns int
	Mate       bool
}

type Evaluator interface {
	Evaluate(ctx context.Context, pos *domain.Position, depth int) (Score, error)
}

// KeyedEvaluator accepts the position key computed by the caller, so it is not
// derived again from the board.
type KeyedEvaluator interface {
	Evaluator
	EvaluateKey(ctx context.Context, key uint64, pos *domain.Position, depth int) (Score, error)
}

// StaticEvaluator scores a position in centipawns from White's point of view.
type StaticEvaluator interface {
	Evaluate(pos *domain.Position) int
}

// Policy computes training targets. Evaluator is optional; Material is used when it
// is absent or fails.
type Policy struct {
	Labeler   Labeler
	Evaluator Evaluator
	Material  StaticEvaluator
	Depth     int
}

func (p *Policy) StaticEvaluation(ctx context.Context, pos *domain.Position) float64 {
	return p.staticEvaluation(ctx, 0, pos)
}

func (p *Policy) staticEvaluation(ctx context.Context, key uint64, pos *domain.Position) float64 {
	if p.Evaluator != nil {
		var score Score
		var err error
		if keyed, ok := p.Evaluator.(KeyedEvaluator); ok && key != 0 {
			score, err = keyed.EvaluateKey(ctx, key, pos, p.Depth)
		} else {
			score, err = p.Evaluator.Evaluate(ctx, pos, p.Depth)
		}
		if err == nil {
			return p.Labeler.Squash(score)
		}
		log.Println("static evaluation", "error", err)
	}
	return float64(p.Material.Evaluate(pos))
}

// Target returns the centipawn label of item.
func (p *Policy) Target(ctx context.Context, item *domain.DatasetItem) float64 {
	var static = p.staticEvaluation(ctx, item.Key, &item.Position)
	return p.Labeler.Label(item.Position.Ply, item.Outcome, static)
}
