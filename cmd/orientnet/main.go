// Command orientnet classifies the board's orientation from 3-axis readings
// and evaluates the classifier.
//
// To classify one reading: `go run ./cmd/orientnet predict 1320 1630 1629`
//
// To evaluate: `go run ./cmd/orientnet evaluate --data-file=output_data.txt`
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ahmedtd/orientnet/toolbox"
	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&PredictCommand{}, "")
	subcommands.Register(&EvaluateCommand{}, "")
	subcommands.Register(&CalibrateCommand{}, "")
	subcommands.Register(&StreamCommand{}, "")
	subcommands.Register(&ExportCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// loadNetwork returns the built-in network when path is empty.
func loadNetwork(path string) (*toolbox.Network, error) {
	if path == "" {
		return toolbox.DefaultNetwork(), nil
	}
	net, err := toolbox.LoadWeights(path)
	if err != nil {
		return nil, fmt.Errorf("while loading weights from %s: %w", path, err)
	}
	return net, nil
}
