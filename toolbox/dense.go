package toolbox

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrShape reports a vector or matrix whose length does not match the shape
// it is declared with.
var ErrShape = errors.New("shape mismatch")

// Layer is a fully-connected layer.  It only computes the linear part
// (W x + b); the activation is chosen by the network that owns it.
type Layer struct {
	W []float64 // Shape (OutputSize, InputSize), row-major
	B []float64 // Shape (OutputSize)

	InputSize  int
	OutputSize int
}

// MakeDense builds a layer from row-major weights and biases.  The slices are
// copied, so the caller may reuse them.
func MakeDense(inputSize, outputSize int, w, b []float64) (*Layer, error) {
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("%w: invalid layer size %dx%d", ErrShape, outputSize, inputSize)
	}
	if len(w)/outputSize != inputSize || len(w)%outputSize != 0 {
		return nil, fmt.Errorf("%w: len(w) = %d, want %d*%d", ErrShape, len(w), outputSize, inputSize)
	}
	if len(b) != outputSize {
		return nil, fmt.Errorf("%w: len(b) = %d, want %d", ErrShape, len(b), outputSize)
	}

	return &Layer{
		W:          append([]float64(nil), w...),
		B:          append([]float64(nil), b...),
		InputSize:  inputSize,
		OutputSize: outputSize,
	}, nil
}

// Neuron returns the weights feeding output neuron i.
func (lay *Layer) Neuron(i int) []float64 {
	return lay.W[i*lay.InputSize : i*lay.InputSize+lay.InputSize]
}

// Activate computes bias + w . x for a single neuron.
func Activate(w []float64, bias float64, x []float64) float64 {
	if len(w) != len(x) {
		panic("mismatched length")
	}
	return bias + floats.Dot(w, x)
}

// Apply writes the linear output of every neuron into z.
//
// x (input) is the layer input.  Shape (lay.InputSize)
// z (output) is the pre-activation output.  Shape (lay.OutputSize)
func (lay *Layer) Apply(x, z []float64) {
	if len(x) != lay.InputSize {
		panic("dimension mismatch")
	}
	if len(z) != lay.OutputSize {
		panic("dimension mismatch")
	}

	for i := 0; i < lay.OutputSize; i++ {
		z[i] = Activate(lay.Neuron(i), lay.B[i], x)
	}
}
