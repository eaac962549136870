package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmedtd/orientnet/toolbox"
	"github.com/google/subcommands"
)

type ExportCommand struct {
	weightsFile string
	outputFile  string
}

var _ subcommands.Command = (*ExportCommand)(nil)

func (*ExportCommand) Name() string {
	return "export-weights"
}

func (*ExportCommand) Synopsis() string {
	return "Write the network weights to a .safetensors or .npz file"
}

func (*ExportCommand) Usage() string {
	return ``
}

func (c *ExportCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsFile, "weights", "", "Path to a .safetensors or .npz weight file to convert (default: built-in weights)")
	f.StringVar(&c.outputFile, "output-weight-file", "orientnet.safetensors", "Path to write; the extension picks the format")
}

func (c *ExportCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *ExportCommand) executeErr(ctx context.Context) error {
	net, err := loadNetwork(c.weightsFile)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(c.outputFile), ".npz") {
		return toolbox.WriteNPZWeights(c.outputFile, net)
	}

	f, err := os.Create(c.outputFile)
	if err != nil {
		return fmt.Errorf("while creating weights file: %w", err)
	}
	defer f.Close()

	tensors := map[string]*toolbox.Tensor{}
	net.DumpTensors(tensors)
	if err := toolbox.WriteSafeTensors(f, tensors); err != nil {
		return fmt.Errorf("while writing weight tensors: %w", err)
	}

	log.Printf("Wrote %s", c.outputFile)
	return f.Close()
}
