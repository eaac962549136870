package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ahmedtd/orientnet/results"
	"github.com/ahmedtd/orientnet/toolbox"
	"github.com/google/subcommands"
)

type EvaluateCommand struct {
	dataFile    string
	weightsFile string
	workers     int
	verbose     bool

	mysqlDSN   string
	mysqlTable string
}

var _ subcommands.Command = (*EvaluateCommand)(nil)

func (*EvaluateCommand) Name() string {
	return "evaluate"
}

func (*EvaluateCommand) Synopsis() string {
	return "Report loss, accuracy and the confusion matrix over a labelled dataset"
}

func (*EvaluateCommand) Usage() string {
	return ``
}

func (c *EvaluateCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataFile, "data-file", "output_data.txt", "Path to the dataset (text records \"label x y z\", or .npz with x and y)")
	f.StringVar(&c.weightsFile, "weights", "", "Path to a .safetensors or .npz weight file (default: built-in weights)")
	f.IntVar(&c.workers, "workers", 4, "Number of evaluation goroutines")
	f.BoolVar(&c.verbose, "v", false, "Log the prediction for every sample")

	f.StringVar(&c.mysqlDSN, "mysql-dsn", "", "If set, store the summary in this MySQL database")
	f.StringVar(&c.mysqlTable, "mysql-table", "evaluations", "Table to store summaries in")
}

func (c *EvaluateCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *EvaluateCommand) executeErr(ctx context.Context) error {
	start := time.Now()

	net, err := loadNetwork(c.weightsFile)
	if err != nil {
		return err
	}

	ds, err := toolbox.LoadDataset(c.dataFile)
	if err != nil {
		return fmt.Errorf("while loading dataset: %w", err)
	}
	log.Printf("Loaded %d samples", ds.Len())

	h := toolbox.NewHarness(net, c.workers)
	ev, err := h.Evaluate(ds)
	if err != nil {
		return fmt.Errorf("while evaluating: %w", err)
	}

	if c.verbose {
		for k, pred := range ev.Predictions {
			log.Printf("Sample %d - Predictions: %v, Predicted: %d, True Label: %d", k, []float64(pred), ev.Predicted[k], ds.Records[k].Label)
		}
	}

	fmt.Print(ev.Report.String())
	log.Printf("Total loss: %f", ev.Loss)

	if c.mysqlDSN != "" {
		if err := c.save(ctx, results.Summary{
			WeightsSource: c.weightsSource(),
			DatasetSource: c.dataFile,
			Loss:          ev.Loss,
			Report:        ev.Report,
			StartTime:     start,
			EndTime:       time.Now(),
		}); err != nil {
			return fmt.Errorf("while saving summary: %w", err)
		}
	}

	return nil
}

func (c *EvaluateCommand) weightsSource() string {
	if c.weightsFile == "" {
		return "built-in"
	}
	return c.weightsFile
}

func (c *EvaluateCommand) save(ctx context.Context, sum results.Summary) error {
	store, err := results.Open(ctx, c.mysqlDSN, c.mysqlTable)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveEvaluation(ctx, sum)
}
