package nnue

import "gonum.org/v1/gonum/mat"

// Accumulator computes the hidden1 pre-activation b1 + W1ᵀx for a one-hot input x
// given by its active indices.
type Accumulator interface {
	Accumulate(n *Network, active []int16, dst []float32)
}

// SparseAccumulator adds only the W1 rows of the active inputs.
type SparseAccumulator struct{}

func (SparseAccumulator) Accumulate(n *Network, active []int16, dst []float32) {
	var hidden = n.Config.Hidden1
	copy(dst, n.B1)
	for _, index := range active {
		var row = n.W1[int(index)*hidden : (int(index)+1)*hidden]
		for j := range dst {
			dst[j] += row[j]
		}
	}
}

// DenseAccumulator multiplies the full input vector by W1. It is the reference the
// sparse path is checked against; the float64 product is rounded back to float32.
type DenseAccumulator struct{}

func (DenseAccumulator) Accumulate(n *Network, active []int16, dst []float32) {
	var cfg = n.Config
	var weights = mat.NewDense(cfg.Inputs, cfg.Hidden1, toFloat64(n.W1))
	var input = mat.NewVecDense(cfg.Inputs, nil)
	for _, index := range active {
		input.SetVec(int(index), input.AtVec(int(index))+1)
	}
	var product mat.VecDense
	product.MulVec(weights.T(), input)
	for j := range dst {
		dst[j] = float32(float64(n.B1[j]) + product.AtVec(j))
	}
}

func toFloat64(data []float32) []float64 {
	var result = make([]float64, len(data))
	for i, x := range data {
		result[i] = float64(x)
	}
	return result
}
