package nnue

import (
	"math"
	"math/rand"
)

// Network holds the parameters. Matrices are row-major with one row per input of
// the layer: W1[i*Hidden1+j] connects feature i to hidden1 neuron j and
// W2[j*Hidden2+k] connects hidden1 neuron j to hidden2 neuron k.
type Network struct {
	Config Config
	W1     []float32
	B1     []float32
	W2     []float32
	B2     []float32
	W3     []float32
	BOut   float32
}

func NewNetwork(cfg Config) *Network {
	return &Network{
		Config: cfg,
		W1:     make([]float32, cfg.Inputs*cfg.Hidden1),
		B1:     make([]float32, cfg.Hidden1),
		W2:     make([]float32, cfg.Hidden1*cfg.Hidden2),
		B2:     make([]float32, cfg.Hidden2),
		W3:     make([]float32, cfg.Hidden2),
	}
}

// InitWeights draws every weight from N(0, 2/fan-in) and zeroes the biases.
func (n *Network) InitWeights(rnd *rand.Rand) {
	var cfg = n.Config
	initNorm(rnd, n.W1, math.Sqrt(2.0/float64(cfg.Inputs)))
	initNorm(rnd, n.W2, math.Sqrt(2.0/float64(cfg.Hidden1)))
	initNorm(rnd, n.W3, math.Sqrt(2.0/float64(cfg.Hidden2)))
	clear(n.B1)
	clear(n.B2)
	n.BOut = 0
}

func (n *Network) Clone() *Network {
	return &Network{
		Config: n.Config,
		W1:     append([]float32(nil), n.W1...),
		B1:     append([]float32(nil), n.B1...),
		W2:     append([]float32(nil), n.W2...),
		B2:     append([]float32(nil), n.B2...),
		W3:     append([]float32(nil), n.W3...),
		BOut:   n.BOut,
	}
}

// IsFinite reports whether no parameter is NaN or infinite.
func (n *Network) IsFinite() bool {
	var finite = true
	n.walk(func(data []float32) {
		for _, x := range data {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				finite = false
			}
		}
	})
	return finite
}

// walk visits the parameter blocks in file order.
func (n *Network) walk(f func(data []float32)) {
	f(n.W1)
	f(n.B1)
	f(n.W2)
	f(n.B2)
	f(n.W3)
	var bOut = []float32{n.BOut}
	f(bOut)
	n.BOut = bOut[0]
}

func initNorm(rnd *rand.Rand, data []float32, stDev float64) {
	for i := range data {
		data[i] = float32(rnd.NormFloat64() * stDev)
	}
}
