package trainer

import "fmt"

type Config struct {
	Epochs          int
	BatchSize       int
	LearningRate    float32
	DecayFactor     float32
	DecayEvery      int // 0 disables decay
	CheckpointEvery int // 0 saves only at the end
	CheckpointPath  string
	Seed            int64
}

func DefaultConfig() Config {
	return Config{
		Epochs:          30,
		BatchSize:       64,
		LearningRate:    0.001,
		DecayFactor:     0.5,
		DecayEvery:      20,
		CheckpointEvery: 10,
	}
}

func (c Config) Validate() error {
	if c.Epochs <= 0 || c.BatchSize <= 0 {
		return fmt.Errorf("bad epochs or batch size %+v", c)
	}
	if !(c.LearningRate > 0) {
		return fmt.Errorf("bad learning rate %v", c.LearningRate)
	}
	if c.DecayEvery < 0 || c.CheckpointEvery < 0 {
		return fmt.Errorf("bad schedule %+v", c)
	}
	return nil
}

// Phase is the state of the training loop.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseShuffle
	PhaseBatch
	PhaseDecay
	PhaseCheckpoint
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseShuffle:
		return "shuffle"
	case PhaseBatch:
		return "batch"
	case PhaseDecay:
		return "decay"
	case PhaseCheckpoint:
		return "checkpoint"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
