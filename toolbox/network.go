package toolbox

import "fmt"

// InputSize is the number of features in a Sample (x, y, z).
const InputSize = 3

// Sample is one 3-axis measurement.
type Sample [InputSize]float64

// Validate reports ErrNonFinite if any component is NaN or infinite.  Forward
// does not check its input.
func (x Sample) Validate() error {
	for j, v := range x {
		if !isFinite(v) {
			return fmt.Errorf("%w: feature %d is %v", ErrNonFinite, j, v)
		}
	}
	return nil
}

// Prediction is a probability distribution over classes.
type Prediction []float64

// Network is a two-layer classifier: a ReLU hidden layer followed by a
// softmax output layer.  A Network is read-only once built and safe to share
// between goroutines.
type Network struct {
	Hidden *Layer
	Output *Layer
}

// NewNetwork checks that the layers chain together and accept a Sample.
func NewNetwork(hidden, output *Layer) (*Network, error) {
	if hidden == nil || output == nil {
		return nil, fmt.Errorf("%w: missing layer", ErrShape)
	}
	if err := checkLayer(hidden); err != nil {
		return nil, fmt.Errorf("while checking hidden layer: %w", err)
	}
	if err := checkLayer(output); err != nil {
		return nil, fmt.Errorf("while checking output layer: %w", err)
	}
	if hidden.InputSize != InputSize {
		return nil, fmt.Errorf("%w: hidden layer takes %d inputs, samples have %d", ErrShape, hidden.InputSize, InputSize)
	}
	if output.InputSize != hidden.OutputSize {
		return nil, fmt.Errorf("%w: output layer takes %d inputs, hidden layer produces %d", ErrShape, output.InputSize, hidden.OutputSize)
	}
	return &Network{Hidden: hidden, Output: output}, nil
}

func checkLayer(lay *Layer) error {
	if lay.InputSize <= 0 || lay.OutputSize <= 0 {
		return fmt.Errorf("%w: invalid layer size %dx%d", ErrShape, lay.OutputSize, lay.InputSize)
	}
	if len(lay.W) != lay.OutputSize*lay.InputSize {
		return fmt.Errorf("%w: len(W) = %d, want %d*%d", ErrShape, len(lay.W), lay.OutputSize, lay.InputSize)
	}
	if len(lay.B) != lay.OutputSize {
		return fmt.Errorf("%w: len(B) = %d, want %d", ErrShape, len(lay.B), lay.OutputSize)
	}
	return nil
}

// Classes is the number of output classes.
func (net *Network) Classes() int {
	return net.Output.OutputSize
}

// Forward runs one forward pass and returns the class probabilities.
func (net *Network) Forward(x Sample) Prediction {
	hidden := make([]float64, net.Hidden.OutputSize)
	net.Hidden.Apply(x[:], hidden)
	for i := range hidden {
		hidden[i] = ReLU(hidden[i])
	}

	logits := make([]float64, net.Output.OutputSize)
	net.Output.Apply(hidden, logits)
	softmaxInto(logits, logits)

	return Prediction(logits)
}

// Predict runs a forward pass and reduces it to a class index.
func (net *Network) Predict(x Sample) (int, Prediction) {
	pred := net.Forward(x)
	return ArgMax(pred), pred
}

// ArgMax returns the index of the largest entry.  Ties go to the lowest
// index.
func ArgMax(p []float64) int {
	if len(p) == 0 {
		panic("ArgMax of empty slice")
	}
	class := 0
	score := p[0]
	for i := 1; i < len(p); i++ {
		if p[i] > score {
			class = i
			score = p[i]
		}
	}
	return class
}
