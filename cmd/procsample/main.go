package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/benchkit/procsample/pkg/sampler"
	"github.com/benchkit/procsample/pkg/system/introspect"
)

type opts struct {
	pid       int
	samplePID int
	mode      string
	match     string
	out       string
	interval  float64
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "procsample",
		Short: "Per-PID resource sampler for benchmark runs",
		Long: `procsample monitors CPU and memory of a target process (or a family of
short-lived worker processes sharing a name prefix) at a fixed interval
and appends one CSV row per tick (ts_ms,rss_kb,cpu_pct) to the output
file. CPU is the fraction of one core used over the interval, as in top.
The session runs until the liveness pid dies; interrupts flush and exit
cleanly.

Examples:
  procsample --pid $(pidof gateway) --out results/gateway.csv
  procsample --pid $! --mode family --match workerproc --out workers.csv --interval 0.5`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}

	root.Flags().IntVar(&o.pid, "pid", 0, "liveness PID — the sampler exits when this process dies")
	root.Flags().IntVar(&o.samplePID, "sample-pid", 0, "PID to sample for RSS/CPU (defaults to --pid)")
	root.Flags().StringVar(&o.mode, "mode", "single", "sampling mode: single or family")
	root.Flags().StringVar(&o.match, "match", "", "process name prefix to aggregate in family mode")
	root.Flags().StringVar(&o.out, "out", "", "output CSV path")
	root.Flags().Float64Var(&o.interval, "interval", 0.2, "seconds between samples")
	_ = root.MarkFlagRequired("pid")
	_ = root.MarkFlagRequired("out")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	mode, err := sampler.ParseMode(o.mode)
	if err != nil {
		return err
	}

	sess, err := sampler.New(sampler.Config{
		LivenessPID: o.pid,
		TargetPID:   o.samplePID,
		NamePrefix:  o.match,
		Mode:        mode,
		OutPath:     o.out,
		Interval:    time.Duration(o.interval * float64(time.Second)),
	}, introspect.New(), slog.Default())
	if err != nil {
		return err
	}

	// Operator interrupts become context cancellation, observed at the
	// loop's only suspension point, so the sink is always flushed.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Run(ctx); err != nil {
		return err
	}
	slog.Info("session complete",
		"out", o.out,
		"samples", sess.Samples(),
		"peak_rss", sess.PeakRSS().Humanized())
	return nil
}
