package toolbox

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyInput is returned when an operation that needs at least one element
// is handed an empty vector.
var ErrEmptyInput = errors.New("empty input")

// ErrNonFinite is returned when a NaN or infinite value reaches code that
// needs finite numbers.
var ErrNonFinite = errors.New("non-finite value")

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ReLU returns max(0, x).
func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Softmax returns the probability distribution exp(v_i) / sum_j exp(v_j).
// Every element of v must be finite.
func Softmax(v []float64) ([]float64, error) {
	if len(v) == 0 {
		return nil, ErrEmptyInput
	}
	for i, x := range v {
		if !isFinite(x) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrNonFinite, x, i)
		}
	}
	out := make([]float64, len(v))
	softmaxInto(v, out)
	return out, nil
}

// softmaxInto writes softmax(v) into out.  v and out may alias.  v must be
// finite; an infinite maximum turns every output into NaN.
//
// For stability, use the identity softmax(v) = softmax(v - c), and subtract
// the maximum element of v from every element before exponentiating.
//
// https://stackoverflow.com/questions/42599498/numerically-stable-softmax
func softmaxInto(v, out []float64) {
	if len(v) != len(out) {
		panic("len(v) != len(out)")
	}
	maxv := floats.Max(v)
	for i := range v {
		out[i] = math.Exp(v[i] - maxv)
	}
	sum := floats.Sum(out)
	for i := range out {
		out[i] /= sum
	}
}
