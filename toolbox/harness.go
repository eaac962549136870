package toolbox

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// SampleSource produces one Sample per call, e.g. a sensor.
type SampleSource interface {
	Read(ctx context.Context) (Sample, error)
}

// Harness evaluates a Network against labelled data and accumulates the
// results in a confusion matrix it owns.
type Harness struct {
	net     *Network
	workers int
	matrix  *ConfusionMatrix
}

// NewHarness returns a harness with an empty confusion matrix.  workers is the
// number of goroutines used by Evaluate; values below 1 mean 1.
func NewHarness(net *Network, workers int) *Harness {
	if workers < 1 {
		workers = 1
	}
	return &Harness{
		net:     net,
		workers: workers,
		matrix:  NewConfusionMatrix(net.Classes()),
	}
}

func (h *Harness) Network() *Network {
	return h.net
}

// Matrix is the harness's cumulative confusion matrix.
func (h *Harness) Matrix() *ConfusionMatrix {
	return h.matrix
}

func (h *Harness) Reset() {
	h.matrix.Reset()
}

func (h *Harness) Report() Report {
	return h.matrix.Report()
}

// Evaluation is the outcome of running a harness over one dataset.
type Evaluation struct {
	Predictions []Prediction // Shape (samples, classes)
	Predicted   []int        // arg-max of each prediction

	Loss   float64 // sparse categorical cross-entropy over this dataset
	Report Report  // confusion matrix of this dataset alone
}

// Evaluate classifies every record of ds, adds the outcomes to the harness
// matrix and returns the per-dataset results.  On error the harness matrix is
// left untouched.
func (h *Harness) Evaluate(ds *Dataset) (*Evaluation, error) {
	if err := ds.Validate(h.net.Classes()); err != nil {
		return nil, fmt.Errorf("while validating dataset: %w", err)
	}
	n := ds.Len()
	if n == 0 {
		return nil, fmt.Errorf("while evaluating: %w", ErrNoData)
	}

	ev := &Evaluation{
		Predictions: make([]Prediction, n),
		Predicted:   make([]int, n),
	}
	local := NewConfusionMatrix(h.net.Classes())

	chunk := (n + h.workers - 1) / h.workers
	p := pool.New().WithErrors().WithMaxGoroutines(h.workers)
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		p.Go(func() error {
			for k := start; k < end; k++ {
				rec := ds.Records[k]
				ev.Predicted[k], ev.Predictions[k] = h.net.Predict(rec.Features)
				if err := local.Record(rec.Label, ev.Predicted[k]); err != nil {
					return fmt.Errorf("while recording sample %d: %w", k, err)
				}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	loss, err := SparseCategoricalCrossEntropy(ds.Labels(), ev.Predictions)
	if err != nil {
		return nil, fmt.Errorf("while computing loss: %w", err)
	}
	ev.Loss = loss
	ev.Report = local.Report()

	if err := h.matrix.Merge(local); err != nil {
		return nil, fmt.Errorf("while merging results: %w", err)
	}
	return ev, nil
}

// Calibrate takes readings samples from src while the device is held in a
// known direction and records each classification against it.  The readings
// are committed to the harness matrix only if all of them succeed.
func (h *Harness) Calibrate(ctx context.Context, src SampleSource, direction, readings int) (Report, error) {
	classes := h.net.Classes()
	if direction < 0 || direction >= classes {
		return Report{}, fmt.Errorf("%w: direction %d, have %d classes", ErrClassRange, direction, classes)
	}

	local := NewConfusionMatrix(classes)
	for i := 0; i < readings; i++ {
		x, err := src.Read(ctx)
		if err != nil {
			return Report{}, fmt.Errorf("while reading sample %d: %w", i, err)
		}
		if err := x.Validate(); err != nil {
			return Report{}, fmt.Errorf("sample %d: %w", i, err)
		}
		class, _ := h.net.Predict(x)
		if err := local.Record(direction, class); err != nil {
			return Report{}, fmt.Errorf("while recording sample %d: %w", i, err)
		}
	}

	if err := h.matrix.Merge(local); err != nil {
		return Report{}, fmt.Errorf("while merging calibration: %w", err)
	}
	return h.matrix.Report(), nil
}
