package target

import (
	"math"

	nmath "github.com/fe64/nnuetrain/internal/math"
)

// Labeler blends the game outcome with a static evaluation into a centipawn target.
// Outcome and evaluations are from White's point of view.
type Labeler struct {
	MaxResultWeight float64
	PlyHorizon      float64
	ResultScale     float64
	Steepness       float64
	SquashRange     float64
}

func DefaultLabeler() Labeler {
	return Labeler{
		MaxResultWeight: 0.8,
		PlyHorizon:      100,
		ResultScale:     300,
		Steepness:       0.004,
		SquashRange:     1000,
	}
}

// ResultWeight grows linearly with ply up to MaxResultWeight.
func (l *Labeler) ResultWeight(ply int) float64 {
	if ply <= 0 {
		return 0
	}
	return math.Min(l.MaxResultWeight, float64(ply)/l.PlyHorizon)
}

func (l *Labeler) Label(ply int, outcome, static float64) float64 {
	var w = l.ResultWeight(ply)
	return (1-w)*static + w*outcome*l.ResultScale
}

// Squash compresses an engine score into (-SquashRange, SquashRange).
// Mate scores take the bound with the sign of Centipawns.
func (l *Labeler) Squash(score Score) float64 {
	if score.Mate {
		if score.Centipawns < 0 {
			return -l.SquashRange
		}
		return l.SquashRange
	}
	return nmath.Squash(float64(score.Centipawns), l.Steepness, l.SquashRange)
}
