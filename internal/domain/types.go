package domain

// Outcome scores from White's point of view.
const (
	OutcomeWhiteWin = 1.0
	OutcomeDraw     = 0.0
	OutcomeBlackWin = -1.0
)

// DatasetItem is a replayed position together with the final result of its game.
// Key caches Position.Key() once the item is numbered; zero means not computed.
type DatasetItem struct {
	Position Position
	Outcome  float64
	Key      uint64
}

// Sample is one training pair: active feature indices and a regression target
// in network output units.
type Sample struct {
	Features []int16
	Target   float32
}
