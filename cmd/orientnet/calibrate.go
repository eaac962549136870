package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/ahmedtd/orientnet/device"
	"github.com/ahmedtd/orientnet/toolbox"
	"github.com/google/subcommands"
)

type CalibrateCommand struct {
	weightsFile string
	direction   int
	rounds      int
	readings    int
	noise       float64
	seed        int64
}

var _ subcommands.Command = (*CalibrateCommand)(nil)

func (*CalibrateCommand) Name() string {
	return "calibrate"
}

func (*CalibrateCommand) Synopsis() string {
	return "Fill the confusion matrix from simulated readings in known directions"
}

func (*CalibrateCommand) Usage() string {
	return ``
}

func (c *CalibrateCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsFile, "weights", "", "Path to a .safetensors or .npz weight file (default: built-in weights)")
	f.IntVar(&c.direction, "direction", -1, "Direction the board is held in; -1 picks a random direction every round")
	f.IntVar(&c.rounds, "rounds", 1, "Number of calibration rounds")
	f.IntVar(&c.readings, "readings", 100, "Readings per round")
	f.Float64Var(&c.noise, "noise", 40, "Standard deviation of the simulated sensor noise, in ADC counts")
	f.Int64Var(&c.seed, "seed", 12345, "PRNG seed")
}

func (c *CalibrateCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *CalibrateCommand) executeErr(ctx context.Context) error {
	net, err := loadNetwork(c.weightsFile)
	if err != nil {
		return err
	}

	sim, err := device.NewSimulator(device.SimulatorConfig{
		Prototypes: device.DefaultPrototypes,
		Noise:      c.noise,
		Seed:       c.seed,
	})
	if err != nil {
		return err
	}
	if sim.Directions() != net.Classes() {
		return fmt.Errorf("%w: simulator has %d directions, network has %d classes", toolbox.ErrShape, sim.Directions(), net.Classes())
	}

	r := rand.New(rand.NewSource(c.seed))
	h := toolbox.NewHarness(net, 1)

	for round := 0; round < c.rounds; round++ {
		direction := c.direction
		if direction < 0 {
			direction = r.Intn(sim.Directions())
		}
		if err := sim.SetDirection(direction); err != nil {
			return err
		}

		report, err := h.Calibrate(ctx, sim, direction, c.readings)
		if err != nil {
			return fmt.Errorf("while calibrating round %d: %w", round, err)
		}
		log.Printf("round %d direction=%d total=%d correct=%d", round, direction, report.Total, report.Correct)
	}

	fmt.Print(h.Report().String())
	return nil
}
