package dataset

import (
	"context"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/features"
	"github.com/fe64/nnuetrain/internal/target"
)

// analyzeItem labels one position. With Mirror set the colour-flipped position is
// added with the negated target.
func (b *Builder) analyzeItem(
	ctx context.Context,
	policy *target.Policy,
	item *domain.DatasetItem,
) ([]domain.Sample, error) {
	var input, err = features.Encode(&item.Position)
	if err != nil {
		return nil, err
	}
	var label = policy.Target(ctx, item)
	var sample = domain.Sample{
		Features: input,
		Target:   float32(label) / b.OutputScale,
	}
	if !b.Mirror {
		return []domain.Sample{sample}, nil
	}
	var mirrored = domain.Sample{
		Features: features.Mirror(input),
		Target:   -sample.Target,
	}
	return []domain.Sample{sample, mirrored}, nil
}
