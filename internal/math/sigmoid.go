package math

import "math"

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Logistic is the sigmoid with steepness k.
func Logistic(x, k float64) float64 {
	return Sigmoid(k * x)
}

// Squash maps x into (-limit, limit) along a logistic curve of steepness k.
func Squash(x, k, limit float64) float64 {
	return limit * (2*Logistic(x, k) - 1)
}
