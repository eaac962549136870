package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmedtd/orientnet/device"
	"github.com/google/subcommands"
)

type StreamCommand struct {
	weightsFile string
	direction   int
	interval    time.Duration
	count       int
	noise       float64
	seed        int64
	ntpServer   string
}

var _ subcommands.Command = (*StreamCommand)(nil)

func (*StreamCommand) Name() string {
	return "stream"
}

func (*StreamCommand) Synopsis() string {
	return "Classify simulated readings on an interval and emit x, y, z, class notifications"
}

func (*StreamCommand) Usage() string {
	return ``
}

func (c *StreamCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsFile, "weights", "", "Path to a .safetensors or .npz weight file (default: built-in weights)")
	f.IntVar(&c.direction, "direction", 0, "Direction the simulated board is held in")
	f.DurationVar(&c.interval, "interval", 500*time.Millisecond, "Time between readings")
	f.IntVar(&c.count, "count", 0, "Stop after this many readings; 0 runs until interrupted")
	f.Float64Var(&c.noise, "noise", 40, "Standard deviation of the simulated sensor noise, in ADC counts")
	f.Int64Var(&c.seed, "seed", 12345, "PRNG seed")
	f.StringVar(&c.ntpServer, "ntp-server", "", "If set, timestamp readings with the clock offset measured against this NTP server")
}

func (c *StreamCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *StreamCommand) executeErr(ctx context.Context) error {
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
	if err := sim.SetDirection(c.direction); err != nil {
		return err
	}

	var clock device.Clock = device.SystemClock{}
	if c.ntpServer != "" {
		ntpClock, err := device.NewNTPClock(c.ntpServer)
		if err != nil {
			log.Printf("Falling back to the system clock: %v", err)
		} else {
			log.Printf("Clock offset from %s: %v", c.ntpServer, ntpClock.Offset)
			clock = ntpClock
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &device.Streamer{
		Sensor:   sim,
		Notifier: device.NewWriterNotifier(os.Stdout),
		Network:  net,
		Clock:    clock,
		Interval: c.interval,
	}
	return s.Run(ctx, c.count, func(rd device.Reading) {
		log.Printf("%s x=%v y=%v z=%v class=%d", rd.Time.Format(time.RFC3339Nano), rd.Sample[0], rd.Sample[1], rd.Sample[2], rd.Class)
	})
}
