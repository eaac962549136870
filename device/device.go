// Package device holds the host-side stand-ins for the board's hardware: the
// accelerometer that produces samples and the BLE characteristic that
// carries notifications.
package device

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ahmedtd/orientnet/toolbox"
)

// Sensor produces one 3-axis sample per call.
type Sensor interface {
	Read(ctx context.Context) (toolbox.Sample, error)
}

// Notifier transmits one value per call.
type Notifier interface {
	Notify(v uint32) error
}

// WriterNotifier writes each value on its own line.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(v uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.w, "%d\n", v); err != nil {
		return fmt.Errorf("while writing notification: %w", err)
	}
	return nil
}

// ToUint32 converts a sample component to the unsigned value carried by a
// notification, rounding to the nearest count and clamping at the ends of
// the range.
func ToUint32(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(math.Round(v))
	}
}
