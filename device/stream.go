package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmedtd/orientnet/toolbox"
)

// Reading is one tick of a Streamer.
type Reading struct {
	Time   time.Time
	Sample toolbox.Sample
	Class  int
}

// Streamer reads a sample, classifies it and notifies x, y, z and the class,
// in that order, once per tick.
type Streamer struct {
	Sensor   Sensor
	Notifier Notifier
	Network  *toolbox.Network
	Clock    Clock
	Interval time.Duration
}

// Tick performs one read-classify-notify round.
func (s *Streamer) Tick(ctx context.Context) (Reading, error) {
	x, err := s.Sensor.Read(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("while reading sensor: %w", err)
	}

	clock := s.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	class, _ := s.Network.Predict(x)
	rd := Reading{Time: clock.Now(), Sample: x, Class: class}

	values := []uint32{ToUint32(x[0]), ToUint32(x[1]), ToUint32(x[2]), uint32(class)}
	for _, v := range values {
		if err := s.Notifier.Notify(v); err != nil {
			return Reading{}, fmt.Errorf("while notifying: %w", err)
		}
	}
	return rd, nil
}

// Run ticks every Interval until ctx is done or, if count > 0, count ticks
// have been made.  onTick, if set, sees every reading.  Cancellation is not
// an error.
func (s *Streamer) Run(ctx context.Context, count int, onTick func(Reading)) error {
	if s.Interval <= 0 {
		return errors.New("interval must be > 0")
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for n := 0; count <= 0 || n < count; n++ {
		rd, err := s.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if onTick != nil {
			onTick(rd)
		}

		if count > 0 && n+1 == count {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
