package nnue

// Gradients accumulates the loss gradient over a minibatch. Only the W1 rows of
// inputs that were active in the batch are tracked.
type Gradients struct {
	W1   []float32
	B1   []float32
	W2   []float32
	B2   []float32
	W3   []float32
	BOut float32

	touched []bool
	rows    []int16
	count   int

	d1 []float32
	d2 []float32
}

func NewGradients(cfg Config) *Gradients {
	return &Gradients{
		W1:      make([]float32, cfg.Inputs*cfg.Hidden1),
		B1:      make([]float32, cfg.Hidden1),
		W2:      make([]float32, cfg.Hidden1*cfg.Hidden2),
		B2:      make([]float32, cfg.Hidden2),
		W3:      make([]float32, cfg.Hidden2),
		touched: make([]bool, cfg.Inputs),
		d1:      make([]float32, cfg.Hidden1),
		d2:      make([]float32, cfg.Hidden2),
	}
}

// Count is the number of samples accumulated since the last reset.
func (g *Gradients) Count() int {
	return g.count
}

// Rows returns the W1 rows that carry gradient.
func (g *Gradients) Rows() []int16 {
	return g.rows
}

func (g *Gradients) touch(index int16) {
	if !g.touched[index] {
		g.touched[index] = true
		g.rows = append(g.rows, index)
	}
}

func (g *Gradients) reset() {
	var hidden1Size = len(g.B1)
	for _, index := range g.rows {
		clear(g.W1[int(index)*hidden1Size : (int(index)+1)*hidden1Size])
		g.touched[index] = false
	}
	g.rows = g.rows[:0]
	clear(g.B1)
	clear(g.W2)
	clear(g.B2)
	clear(g.W3)
	g.BOut = 0
	g.count = 0
}
