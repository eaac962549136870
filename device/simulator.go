package device

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/ahmedtd/orientnet/toolbox"
)

// DefaultPrototypes are the mean ADC readings recorded with the board held
// in each of the six directions.
var DefaultPrototypes = []toolbox.Sample{
	{1320.444444, 1630.296296, 1629.148148},
	{1969.857143, 1602.607143, 1620.428571},
	{1623.035714, 1282.500000, 1609.678571},
	{1664.851852, 1948.481481, 1642.592593},
	{1640.785714, 1633.642857, 1312.321429},
	{1644.892857, 1620.178571, 1956.250000},
}

// SimulatorConfig configures a Simulator.
type SimulatorConfig struct {
	// Prototypes is the mean reading for each direction.
	Prototypes []toolbox.Sample
	// Noise is the standard deviation, in ADC counts, added to each axis.
	Noise float64
	Seed  int64
}

// Validate verifies the config is usable.
func (c *SimulatorConfig) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Prototypes) == 0 {
		return errors.New("at least one prototype must be set")
	}
	if c.Noise < 0 || math.IsNaN(c.Noise) {
		return fmt.Errorf("noise must be >= 0 (got %v)", c.Noise)
	}
	return nil
}

// Simulator is a Sensor that reads ADC-like integer counts scattered around
// the prototype of the direction it is currently held in.
type Simulator struct {
	mu        sync.Mutex
	cfg       SimulatorConfig
	r         *rand.Rand
	direction int
}

func NewSimulator(cfg SimulatorConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulator config: %w", err)
	}
	return &Simulator{
		cfg: cfg,
		r:   rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Directions is the number of directions the simulator can be held in.
func (s *Simulator) Directions() int {
	return len(s.cfg.Prototypes)
}

// SetDirection changes the direction subsequent reads come from.
func (s *Simulator) SetDirection(d int) error {
	if d < 0 || d >= len(s.cfg.Prototypes) {
		return fmt.Errorf("direction %d out of range [0, %d)", d, len(s.cfg.Prototypes))
	}
	s.mu.Lock()
	s.direction = d
	s.mu.Unlock()
	return nil
}

func (s *Simulator) Direction() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direction
}

func (s *Simulator) Read(ctx context.Context) (toolbox.Sample, error) {
	if err := ctx.Err(); err != nil {
		return toolbox.Sample{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var x toolbox.Sample
	proto := s.cfg.Prototypes[s.direction]
	for i := range x {
		v := proto[i] + s.r.NormFloat64()*s.cfg.Noise
		x[i] = math.Max(0, math.Round(v))
	}
	return x, nil
}
