package toolbox

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrNoData is returned by statistics computed over zero samples.
	ErrNoData = errors.New("no data")

	// ErrClassRange reports a class index outside [0, classes).
	ErrClassRange = errors.New("class index out of range")
)

// ConfusionMatrix counts (true class, predicted class) pairs.  It is safe for
// concurrent use; Record calls are serialized.
type ConfusionMatrix struct {
	mu      sync.Mutex
	classes int
	counts  []int // Shape (classes, classes), row = true class
}

func NewConfusionMatrix(classes int) *ConfusionMatrix {
	if classes <= 0 {
		panic(fmt.Sprintf("invalid class count: %d", classes))
	}
	return &ConfusionMatrix{
		classes: classes,
		counts:  make([]int, classes*classes),
	}
}

func (m *ConfusionMatrix) Classes() int {
	return m.classes
}

// Record counts one prediction.  Out-of-range indices are rejected and leave
// the matrix unchanged.
func (m *ConfusionMatrix) Record(trueClass, predicted int) error {
	if trueClass < 0 || trueClass >= m.classes {
		return fmt.Errorf("%w: true class %d, have %d classes", ErrClassRange, trueClass, m.classes)
	}
	if predicted < 0 || predicted >= m.classes {
		return fmt.Errorf("%w: predicted class %d, have %d classes", ErrClassRange, predicted, m.classes)
	}

	m.mu.Lock()
	m.counts[trueClass*m.classes+predicted]++
	m.mu.Unlock()
	return nil
}

// Reset zeroes every entry.
func (m *ConfusionMatrix) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.counts)
}

func (m *ConfusionMatrix) At(trueClass, predicted int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[trueClass*m.classes+predicted]
}

// Counts returns a copy of the matrix as rows indexed by true class.
func (m *ConfusionMatrix) Counts() [][]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rowsLocked()
}

func (m *ConfusionMatrix) rowsLocked() [][]int {
	rows := make([][]int, m.classes)
	for i := range rows {
		rows[i] = append([]int(nil), m.counts[i*m.classes:(i+1)*m.classes]...)
	}
	return rows
}

func (m *ConfusionMatrix) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, _ := m.sumsLocked()
	return total
}

func (m *ConfusionMatrix) Correct() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, correct := m.sumsLocked()
	return correct
}

func (m *ConfusionMatrix) sumsLocked() (total, correct int) {
	for i := 0; i < m.classes; i++ {
		for j := 0; j < m.classes; j++ {
			if i == j {
				correct += m.counts[i*m.classes+j]
			}
			total += m.counts[i*m.classes+j]
		}
	}
	return total, correct
}

// Accuracy is the fraction of predictions on the diagonal.  It returns
// ErrNoData when nothing has been recorded.
func (m *ConfusionMatrix) Accuracy() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, correct := m.sumsLocked()
	if total == 0 {
		return 0, ErrNoData
	}
	return float64(correct) / float64(total), nil
}

// Report takes a consistent snapshot of the matrix.
func (m *ConfusionMatrix) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	total, correct := m.sumsLocked()
	r := Report{
		Counts:  m.rowsLocked(),
		Total:   total,
		Correct: correct,
	}
	if total > 0 {
		r.Accuracy = float64(correct) / float64(total)
		r.HasData = true
	}
	return r
}

// Report is a read-only summary of a ConfusionMatrix.
type Report struct {
	Counts  [][]int // rows = true class, columns = predicted class
	Total   int
	Correct int

	// Accuracy is only meaningful when HasData is set.
	Accuracy float64
	HasData  bool
}

func (r Report) String() string {
	var b strings.Builder

	b.WriteString("Confusion matrix (rows: true class, columns: predicted class)\n")
	fmt.Fprintf(&b, "%-4s", "")
	for j := range r.Counts {
		fmt.Fprintf(&b, "%6s", fmt.Sprintf("c%d", j))
	}
	b.WriteString("\n")
	for i, row := range r.Counts {
		fmt.Fprintf(&b, "%-4s", fmt.Sprintf("c%d", i))
		for _, v := range row {
			fmt.Fprintf(&b, "%6d", v)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total predictions: %d, Correct predictions: %d\n", r.Total, r.Correct)
	if r.HasData {
		fmt.Fprintf(&b, "Accuracy: %f\n", r.Accuracy)
	} else {
		b.WriteString("Accuracy: n/a (no data)\n")
	}
	return b.String()
}

// Merge adds every count of other into m.  Both matrices must have the same
// number of classes.
func (m *ConfusionMatrix) Merge(other *ConfusionMatrix) error {
	if other.classes != m.classes {
		return fmt.Errorf("%w: merging %d classes into %d", ErrShape, other.classes, m.classes)
	}
	if other == m {
		return errors.New("cannot merge a matrix into itself")
	}

	other.mu.Lock()
	counts := append([]int(nil), other.counts...)
	other.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range counts {
		m.counts[i] += c
	}
	return nil
}
