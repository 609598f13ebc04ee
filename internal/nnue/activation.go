package nnue

// ClippedReLU clamps x to [0, 1]. NaN maps to 0.
func ClippedReLU(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x > 0 {
		return x
	}
	return 0
}

// ClippedReLUPrime is 1 strictly inside (0, 1). The clamp boundaries do not pass gradient.
func ClippedReLUPrime(x float32) float32 {
	if x > 0 && x < 1 {
		return 1
	}
	return 0
}
