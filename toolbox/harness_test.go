package toolbox

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func signDataset() *Dataset {
	return &Dataset{Records: []Record{
		{Label: 1, Features: Sample{1, 0, 0}},
		{Label: 0, Features: Sample{-1, 0, 0}},
		{Label: 1, Features: Sample{2, 0, 0}},
		{Label: 0, Features: Sample{-3, 0, 0}},
	}}
}

func TestHarnessEvaluateEndToEnd(t *testing.T) {
	h := NewHarness(signNetwork(t), 2)

	ev, err := h.Evaluate(signDataset())
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if diff := cmp.Diff(ev.Report.Counts, [][]int{{2, 0}, {0, 2}}); diff != "" {
		t.Errorf("Wrong confusion matrix; diff (-got +want)\n%s", diff)
	}
	if !ev.Report.HasData || ev.Report.Accuracy != 1.0 {
		t.Errorf("Accuracy = %v (HasData=%v), want 1.0", ev.Report.Accuracy, ev.Report.HasData)
	}
	if diff := cmp.Diff(ev.Predicted, []int{1, 0, 1, 0}); diff != "" {
		t.Errorf("Wrong predictions; diff (-got +want)\n%s", diff)
	}
	if ev.Loss <= 0 || ev.Loss > 1 {
		t.Errorf("Loss = %v, want a small positive value", ev.Loss)
	}

	acc, err := h.Matrix().Accuracy()
	if err != nil || acc != 1.0 {
		t.Errorf("harness Accuracy() = %v, %v; want 1.0, nil", acc, err)
	}
}

func TestHarnessEvaluateAccumulates(t *testing.T) {
	h := NewHarness(signNetwork(t), 1)
	for i := 0; i < 2; i++ {
		if _, err := h.Evaluate(signDataset()); err != nil {
			t.Fatalf("Evaluate error: %v", err)
		}
	}
	if diff := cmp.Diff(h.Report().Counts, [][]int{{4, 0}, {0, 4}}); diff != "" {
		t.Errorf("Wrong cumulative matrix; diff (-got +want)\n%s", diff)
	}

	h.Reset()
	if _, err := h.Matrix().Accuracy(); !errors.Is(err, ErrNoData) {
		t.Errorf("Accuracy after Reset error = %v, want ErrNoData", err)
	}
}

func TestHarnessEvaluateWorkerCountDoesNotMatter(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 37; i++ {
		ds.Records = append(ds.Records, Record{
			Label:    i % 6,
			Features: Sample{float64(i)/10 - 2, float64(i%5) - 2, float64(i%7) / 3},
		})
	}

	want, err := NewHarness(DefaultNetwork(), 1).Evaluate(ds)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	for _, workers := range []int{0, 2, 5, 64} {
		got, err := NewHarness(DefaultNetwork(), workers).Evaluate(ds)
		if err != nil {
			t.Fatalf("Evaluate(workers=%d) error: %v", workers, err)
		}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("workers=%d differs from workers=1; diff (-got +want)\n%s", workers, diff)
		}
	}
}

func TestHarnessEvaluateRejectsBadLabels(t *testing.T) {
	h := NewHarness(signNetwork(t), 2)
	ds := signDataset()
	ds.Records = append(ds.Records, Record{Label: 2})

	if _, err := h.Evaluate(ds); !errors.Is(err, ErrClassRange) {
		t.Errorf("Evaluate error = %v, want ErrClassRange", err)
	}
	if total := h.Matrix().Total(); total != 0 {
		t.Errorf("failed evaluation recorded %d predictions, want 0", total)
	}
}

func TestHarnessEvaluateRejectsNonFiniteFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_data.txt")
	if err := os.WriteFile(path, []byte("1 1 0 0\n0 nan 0 0\n1 inf 0 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if _, err := LoadDataset(path); !errors.Is(err, ErrNonFinite) {
		t.Errorf("LoadDataset error = %v, want ErrNonFinite", err)
	}

	h := NewHarness(signNetwork(t), 2)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		ds := signDataset()
		ds.Records[2].Features[0] = v
		ev, err := h.Evaluate(ds)
		if !errors.Is(err, ErrNonFinite) {
			t.Errorf("Evaluate with feature %v = %+v, %v; want ErrNonFinite", v, ev, err)
		}
	}
	if total := h.Matrix().Total(); total != 0 {
		t.Errorf("failed evaluations recorded %d predictions, want 0", total)
	}
}

func TestHarnessEvaluateEmpty(t *testing.T) {
	h := NewHarness(signNetwork(t), 2)
	if _, err := h.Evaluate(&Dataset{}); !errors.Is(err, ErrNoData) {
		t.Errorf("Evaluate error = %v, want ErrNoData", err)
	}
}

type fakeSource struct {
	samples []Sample
	next    int
	failAt  int
}

func (s *fakeSource) Read(ctx context.Context) (Sample, error) {
	if s.failAt > 0 && s.next == s.failAt {
		return Sample{}, errors.New("sensor unplugged")
	}
	x := s.samples[s.next%len(s.samples)]
	s.next++
	return x, nil
}

func TestHarnessCalibrate(t *testing.T) {
	h := NewHarness(signNetwork(t), 1)

	src := &fakeSource{samples: []Sample{{1, 0, 0}, {1, 0, 0}, {-1, 0, 0}}}
	report, err := h.Calibrate(context.Background(), src, 1, 6)
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if diff := cmp.Diff(report.Counts, [][]int{{0, 0}, {2, 4}}); diff != "" {
		t.Errorf("Wrong confusion matrix; diff (-got +want)\n%s", diff)
	}
	if report.Correct != 4 || report.Total != 6 {
		t.Errorf("Correct/Total = %d/%d, want 4/6", report.Correct, report.Total)
	}
}

func TestHarnessCalibrateRejectsNonFiniteReading(t *testing.T) {
	h := NewHarness(signNetwork(t), 1)

	src := &fakeSource{samples: []Sample{{1, 0, 0}, {math.Inf(1), 0, 0}}}
	if _, err := h.Calibrate(context.Background(), src, 1, 4); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Calibrate error = %v, want ErrNonFinite", err)
	}
	if total := h.Matrix().Total(); total != 0 {
		t.Errorf("failed calibration recorded %d predictions, want 0", total)
	}
}

func TestHarnessCalibrateFailureLeavesMatrix(t *testing.T) {
	h := NewHarness(signNetwork(t), 1)

	src := &fakeSource{samples: []Sample{{1, 0, 0}}, failAt: 3}
	if _, err := h.Calibrate(context.Background(), src, 1, 10); err == nil {
		t.Fatalf("Calibrate succeeded, want error")
	}
	if total := h.Matrix().Total(); total != 0 {
		t.Errorf("failed calibration recorded %d predictions, want 0", total)
	}

	if _, err := h.Calibrate(context.Background(), src, 2, 1); !errors.Is(err, ErrClassRange) {
		t.Errorf("Calibrate(direction=2) error = %v, want ErrClassRange", err)
	}
}
