package trainer

import (
	"log"
	"math"
	"math/rand"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/nnue"
)

// EpochInfo describes a finished epoch.
type EpochInfo struct {
	Epoch          int
	LearningRate   float32 // rate used during the epoch
	Batches        int
	TrainingCost   float64
	ValidationCost float64 // NaN without validation samples
	Checkpoint     bool
}

// Trainer fits a model to samples with minibatch gradient descent.
// It owns the model's network while training.
type Trainer struct {
	model        *nnue.Model
	config       Config
	rnd          *rand.Rand
	gradients    *nnue.Gradients
	cache        *nnue.Cache
	learningRate float32
	phase        Phase

	Validation []domain.Sample
	OnEpoch    func(EpochInfo)
}

func NewTrainer(model *nnue.Model, config Config) *Trainer {
	return &Trainer{
		model:        model,
		config:       config,
		rnd:          rand.New(rand.NewSource(config.Seed)),
		gradients:    nnue.NewGradients(model.Config()),
		cache:        nnue.NewCache(model.Config()),
		learningRate: config.LearningRate,
		phase:        PhaseInit,
	}
}

func (t *Trainer) LearningRate() float32 {
	return t.learningRate
}

func (t *Trainer) Phase() Phase {
	return t.phase
}

// Train runs all epochs. Samples are shuffled in place.
func (t *Trainer) Train(samples []domain.Sample) error {
	log.Println("Train started")
	defer log.Println("Train finished")

	if err := t.config.Validate(); err != nil {
		return err
	}
	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		var info = EpochInfo{
			Epoch:          epoch,
			LearningRate:   t.learningRate,
			ValidationCost: math.NaN(),
		}
		info.TrainingCost, info.Batches = t.TrainEpoch(samples)
		log.Printf("Finished Epoch %v\n", epoch)
		log.Printf("Current training cost is: %f\n", info.TrainingCost)
		if len(t.Validation) != 0 {
			info.ValidationCost = MeanSquaredError(t.model, t.Validation)
			log.Printf("Current validation cost is: %f\n", info.ValidationCost)
		}

		if t.config.DecayEvery > 0 && epoch%t.config.DecayEvery == 0 {
			t.phase = PhaseDecay
			t.learningRate *= t.config.DecayFactor
			log.Println("learning rate", t.learningRate)
		}
		if t.config.CheckpointEvery > 0 && epoch%t.config.CheckpointEvery == 0 {
			var saved, err = t.checkpoint()
			if err != nil {
				return err
			}
			info.Checkpoint = saved
		}
		if t.OnEpoch != nil {
			t.OnEpoch(info)
		}
	}
	if _, err := t.checkpoint(); err != nil {
		return err
	}
	t.phase = PhaseDone
	return nil
}

// TrainEpoch shuffles samples and makes one pass in batches. A final partial batch
// smaller than half the batch size is skipped. It returns the mean squared error
// of the trained samples and the number of batches.
func (t *Trainer) TrainEpoch(samples []domain.Sample) (float64, int) {
	t.phase = PhaseShuffle
	shuffle(t.rnd, samples)

	t.phase = PhaseBatch
	var batchSize = t.config.BatchSize
	var totalError float64
	var count, batches int
	for i := 0; i < len(samples); i += batchSize {
		var end = min(i+batchSize, len(samples))
		if 2*(end-i) < batchSize {
			break
		}
		totalError += t.TrainBatch(samples[i:end])
		count += end - i
		batches++
	}
	if count == 0 {
		return 0, 0
	}
	return totalError / float64(count), batches
}

// TrainBatch applies one batch-averaged update and returns the summed squared error.
func (t *Trainer) TrainBatch(batch []domain.Sample) float64 {
	var total float64
	for i := range batch {
		var sample = &batch[i]
		t.model.ForwardWithCache(sample.Features, t.cache)
		total += float64(t.model.Accumulate(t.cache, sample.Target, t.gradients))
	}
	t.model.Apply(t.gradients, t.learningRate)
	return total
}

func (t *Trainer) checkpoint() (bool, error) {
	if t.config.CheckpointPath == "" {
		return false, nil
	}
	t.phase = PhaseCheckpoint
	var err = nnue.SaveFile(t.config.CheckpointPath, t.model.Network())
	if err != nil {
		return false, err
	}
	log.Println("checkpoint", "path", t.config.CheckpointPath)
	return true, nil
}

// MeanSquaredError evaluates the model on samples without changing it.
func MeanSquaredError(model *nnue.Model, samples []domain.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var cache = nnue.NewCache(model.Config())
	var total float64
	for i := range samples {
		var e = float64(model.ForwardWithCache(samples[i].Features, cache) - samples[i].Target)
		total += e * e
	}
	return total / float64(len(samples))
}

func shuffle(rnd *rand.Rand, samples []domain.Sample) {
	rnd.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}
