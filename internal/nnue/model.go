package nnue

// Cache keeps the intermediate tensors of one forward pass for the backward pass.
type Cache struct {
	Active     []int16
	Hidden1Pre []float32
	Hidden1    []float32
	Hidden2Pre []float32
	Hidden2    []float32
	Output     float32
}

func NewCache(cfg Config) *Cache {
	return &Cache{
		Hidden1Pre: make([]float32, cfg.Hidden1),
		Hidden1:    make([]float32, cfg.Hidden1),
		Hidden2Pre: make([]float32, cfg.Hidden2),
		Hidden2:    make([]float32, cfg.Hidden2),
	}
}

// Model runs the network. It is not safe for concurrent use while training.
type Model struct {
	net         *Network
	accumulator Accumulator
	gradients   *Gradients
}

func NewModel(net *Network) *Model {
	return NewModelWithAccumulator(net, SparseAccumulator{})
}

func NewModelWithAccumulator(net *Network, accumulator Accumulator) *Model {
	return &Model{
		net:         net,
		accumulator: accumulator,
	}
}

func (m *Model) Network() *Network {
	return m.net
}

func (m *Model) Config() Config {
	return m.net.Config
}

// Forward evaluates the network. It does not change the parameters.
func (m *Model) Forward(features []int16) float32 {
	return m.ForwardWithCache(features, NewCache(m.net.Config))
}

// ForwardWithCache evaluates the network and records the activations in cache.
func (m *Model) ForwardWithCache(features []int16, cache *Cache) float32 {
	var n = m.net
	var hidden2Size = n.Config.Hidden2

	cache.Active = features
	m.accumulator.Accumulate(n, features, cache.Hidden1Pre)
	for j, x := range cache.Hidden1Pre {
		cache.Hidden1[j] = ClippedReLU(x)
	}

	copy(cache.Hidden2Pre, n.B2)
	for j, h := range cache.Hidden1 {
		if h == 0 {
			continue
		}
		var row = n.W2[j*hidden2Size : (j+1)*hidden2Size]
		for k := range cache.Hidden2Pre {
			cache.Hidden2Pre[k] += h * row[k]
		}
	}
	for k, x := range cache.Hidden2Pre {
		cache.Hidden2[k] = ClippedReLU(x)
	}

	var output = n.BOut
	for k, h := range cache.Hidden2 {
		output += h * n.W3[k]
	}
	cache.Output = output
	return output
}

// Backward applies one plain gradient descent step for a single sample and returns
// its squared error.
func (m *Model) Backward(cache *Cache, target, learningRate float32) float32 {
	if m.gradients == nil {
		m.gradients = NewGradients(m.net.Config)
	}
	var loss = m.Accumulate(cache, target, m.gradients)
	m.Apply(m.gradients, learningRate)
	return loss
}

// Accumulate adds the gradient of one sample to g and returns its squared error.
// The error term is output - target.
func (m *Model) Accumulate(cache *Cache, target float32, g *Gradients) float32 {
	var n = m.net
	var hidden1Size = n.Config.Hidden1
	var hidden2Size = n.Config.Hidden2

	var e = cache.Output - target

	g.BOut += e
	var d2 = g.d2
	for k := range d2 {
		g.W3[k] += e * cache.Hidden2[k]
		d2[k] = e * n.W3[k] * ClippedReLUPrime(cache.Hidden2Pre[k])
		g.B2[k] += d2[k]
	}

	var d1 = g.d1
	for j := range d1 {
		var row = n.W2[j*hidden2Size : (j+1)*hidden2Size]
		var gradRow = g.W2[j*hidden2Size : (j+1)*hidden2Size]
		var h = cache.Hidden1[j]
		var sum float32
		for k, d := range d2 {
			gradRow[k] += h * d
			sum += row[k] * d
		}
		d1[j] = sum * ClippedReLUPrime(cache.Hidden1Pre[j])
		g.B1[j] += d1[j]
	}

	for _, index := range cache.Active {
		var gradRow = g.W1[int(index)*hidden1Size : (int(index)+1)*hidden1Size]
		for j, d := range d1 {
			gradRow[j] += d
		}
		g.touch(index)
	}

	g.count++
	return e * e
}

// Apply updates every parameter by -learningRate * (accumulated gradient / samples)
// and resets g. W1 rows of inputs not seen since the last reset stay untouched.
func (m *Model) Apply(g *Gradients, learningRate float32) {
	if g.count == 0 {
		return
	}
	var n = m.net
	var hidden1Size = n.Config.Hidden1
	var batchSize = float32(g.count)

	for _, index := range g.rows {
		var row = n.W1[int(index)*hidden1Size : (int(index)+1)*hidden1Size]
		var gradRow = g.W1[int(index)*hidden1Size : (int(index)+1)*hidden1Size]
		applySlice(row, gradRow, learningRate, batchSize)
	}
	applySlice(n.B1, g.B1, learningRate, batchSize)
	applySlice(n.W2, g.W2, learningRate, batchSize)
	applySlice(n.B2, g.B2, learningRate, batchSize)
	applySlice(n.W3, g.W3, learningRate, batchSize)
	n.BOut -= learningRate * (g.BOut / batchSize)

	g.reset()
}

func applySlice(params, grads []float32, learningRate, batchSize float32) {
	for i, grad := range grads {
		params[i] -= learningRate * (grad / batchSize)
	}
}
