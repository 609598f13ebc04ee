package nnue

import (
	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/features"
)

// EvalService scores positions with a trained network the way the engine does.
type EvalService struct {
	model *Model
}

func NewEvalService(model *Model) *EvalService {
	return &EvalService{model: model}
}

func NewEvalServiceFromFile(cfg Config, path string) (*EvalService, error) {
	var net, err = LoadFile(cfg, path)
	if err != nil {
		return nil, err
	}
	return NewEvalService(NewModel(net)), nil
}

// Evaluate returns centipawns from White's point of view.
func (e *EvalService) Evaluate(pos *domain.Position) (int, error) {
	var input, err = features.Encode(pos)
	if err != nil {
		return 0, err
	}
	var output = e.model.Forward(input)
	return int(output * e.model.Config().OutputScale), nil
}

// EvaluateSideToMove returns centipawns from the side to move's point of view.
func (e *EvalService) EvaluateSideToMove(pos *domain.Position) (int, error) {
	var score, err = e.Evaluate(pos)
	if err != nil {
		return 0, err
	}
	if !pos.WhiteMove {
		score = -score
	}
	return score, nil
}
