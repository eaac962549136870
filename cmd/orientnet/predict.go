package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/ahmedtd/orientnet/toolbox"
	"github.com/google/subcommands"
)

type PredictCommand struct {
	weightsFile string
}

var _ subcommands.Command = (*PredictCommand)(nil)

func (*PredictCommand) Name() string {
	return "predict"
}

func (*PredictCommand) Synopsis() string {
	return "Classify one x y z reading"
}

func (*PredictCommand) Usage() string {
	return `predict [-weights=FILE] X Y Z
`
}

func (c *PredictCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsFile, "weights", "", "Path to a .safetensors or .npz weight file (default: built-in weights)")
}

func (c *PredictCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != toolbox.InputSize {
		log.Printf("Error: want %d values, got %d", toolbox.InputSize, f.NArg())
		return subcommands.ExitUsageError
	}
	if err := c.executeErr(ctx, f.Args()); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *PredictCommand) executeErr(ctx context.Context, args []string) error {
	x, err := parseSample(args)
	if err != nil {
		return fmt.Errorf("while parsing sample: %w", err)
	}

	net, err := loadNetwork(c.weightsFile)
	if err != nil {
		return err
	}

	class, pred := net.Predict(x)
	log.Printf("Probabilities: %v", []float64(pred))
	log.Printf("Prediction: %d", class)
	return nil
}

func parseSample(args []string) (toolbox.Sample, error) {
	var x toolbox.Sample
	if len(args) != len(x) {
		return x, fmt.Errorf("%w: got %d values, want %d", toolbox.ErrShape, len(args), len(x))
	}
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return x, fmt.Errorf("value %d: %w", i, err)
		}
		x[i] = v
	}
	if err := x.Validate(); err != nil {
		return x, err
	}
	return x, nil
}
