package trainer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"runtime"

	"github.com/fe64/nnuetrain/internal/dataset"
	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/nnue"
	"golang.org/x/sync/errgroup"
)

var ErrNotEnoughSamples = errors.New("not enough samples")

const DefaultMinSamples = 100

type RunConfig struct {
	Trainer Config
	Network nnue.Config
	Builder *dataset.Builder

	// ValidationProviders build a separate validation set. Without them
	// ValidationRatio of the samples is held out.
	ValidationProviders []dataset.Provider
	ValidationRatio     float64
	MinSamples          int
	OnEpoch             func(EpochInfo)
}

// Run builds the samples, resumes from the checkpoint when one exists and trains.
func Run(
	ctx context.Context,
	providers []dataset.Provider,
	config RunConfig,
) error {
	if err := config.Network.Validate(); err != nil {
		return err
	}
	if err := config.Trainer.Validate(); err != nil {
		return err
	}

	var samples, validation []domain.Sample
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		samples, err = config.Builder.Build(gctx, providers...)
		return err
	})
	if len(config.ValidationProviders) != 0 {
		g.Go(func() error {
			var err error
			validation, err = config.Builder.Build(gctx, config.ValidationProviders...)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Loaded dataset", len(samples))
	runtime.GC()

	if len(config.ValidationProviders) == 0 && config.ValidationRatio > 0 {
		samples, validation = splitValidation(samples, config.ValidationRatio, config.Trainer.Seed)
	}
	var minSamples = config.MinSamples
	if minSamples == 0 {
		minSamples = DefaultMinSamples
	}
	if len(samples) < minSamples {
		return fmt.Errorf("%w: %v, at least %v required", ErrNotEnoughSamples, len(samples), minSamples)
	}

	net, err := loadOrCreateNetwork(config.Network, config.Trainer)
	if err != nil {
		return err
	}

	var trainer = NewTrainer(nnue.NewModel(net), config.Trainer)
	trainer.Validation = validation
	trainer.OnEpoch = config.OnEpoch
	return trainer.Train(samples)
}

// splitValidation shuffles samples with seed and holds out ratio of them.
func splitValidation(samples []domain.Sample, ratio float64, seed int64) (training, validation []domain.Sample) {
	shuffle(rand.New(rand.NewSource(seed)), samples)
	var validationSize = int(float64(len(samples)) * ratio)
	return samples[validationSize:], samples[:validationSize]
}

// loadOrCreateNetwork resumes from the checkpoint or writes a freshly initialized one.
func loadOrCreateNetwork(cfg nnue.Config, trainerConfig Config) (*nnue.Network, error) {
	var path = trainerConfig.CheckpointPath
	if path != "" {
		var net, err = nnue.LoadFile(cfg, path)
		if err == nil {
			log.Println("resume from checkpoint", "path", path)
			return net, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	var net = nnue.NewNetwork(cfg)
	net.InitWeights(rand.New(rand.NewSource(trainerConfig.Seed)))
	if path != "" {
		if err := nnue.SaveFile(path, net); err != nil {
			return nil, err
		}
	}
	return net, nil
}
