package nnue

import "fmt"

// Config fixes the layer widths of the network and the factor that converts the
// network output to centipawns.
type Config struct {
	Inputs      int
	Hidden1     int
	Hidden2     int
	Outputs     int
	OutputScale float32
}

func DefaultConfig() Config {
	return Config{
		Inputs:      768,
		Hidden1:     256,
		Hidden2:     32,
		Outputs:     1,
		OutputScale: 400,
	}
}

func (c Config) Validate() error {
	if c.Inputs <= 0 || c.Hidden1 <= 0 || c.Hidden2 <= 0 {
		return fmt.Errorf("bad layer sizes %+v", c)
	}
	if c.Outputs != 1 {
		return fmt.Errorf("single output expected %+v", c)
	}
	if c.OutputScale <= 0 {
		return fmt.Errorf("bad output scale %+v", c)
	}
	return nil
}

// ParamCount is the number of float32 values of the network in file order:
// W1, b1, W2, b2, W3, bOut.
func (c Config) ParamCount() int {
	return c.Inputs*c.Hidden1 + c.Hidden1 +
		c.Hidden1*c.Hidden2 + c.Hidden2 +
		c.Hidden2 + 1
}

// ByteSize is the exact length of a serialized network.
func (c Config) ByteSize() int {
	return 4 * c.ParamCount()
}
