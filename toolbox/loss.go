package toolbox

import (
	"fmt"
	"math"
)

// LossEpsilon is the floor applied to the true-class probability before
// taking its logarithm, so a zero probability yields a large finite loss.
const LossEpsilon = 1e-15

// SparseCategoricalCrossEntropy averages -log(p[label]) over the samples.
//
// labels is the ground truth.  Shape (samples)
// preds are the predicted distributions.  Shape (samples, classes)
func SparseCategoricalCrossEntropy(labels []int, preds []Prediction) (float64, error) {
	if len(labels) != len(preds) {
		return 0, fmt.Errorf("%w: %d labels, %d predictions", ErrShape, len(labels), len(preds))
	}
	if len(labels) == 0 {
		return 0, ErrNoData
	}

	var total float64
	for k, label := range labels {
		if label < 0 || label >= len(preds[k]) {
			return 0, fmt.Errorf("%w: sample %d has label %d, prediction has %d classes", ErrClassRange, k, label, len(preds[k]))
		}
		if !isFinite(preds[k][label]) {
			return 0, fmt.Errorf("%w: sample %d has probability %v", ErrNonFinite, k, preds[k][label])
		}
		p := math.Max(preds[k][label], LossEpsilon)
		total += -math.Log(p)
	}
	return total / float64(len(labels)), nil
}
