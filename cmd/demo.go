package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pkalnins/buildbar/internal/config"
	"github.com/pkalnins/buildbar/internal/logging"
	"github.com/pkalnins/buildbar/internal/reporter"
	"github.com/pkalnins/buildbar/internal/sinks"
	"github.com/pkalnins/buildbar/internal/state"
)

// Raw module requests replayed by the simulator; shapes match what a real
// bundler reports per compiled module.
var demoRequests = []string{
	"babel-loader!src/index.js",
	"babel-loader!eslint-loader!src/components/app.js",
	"css-loader!style-loader!src/styles/site.css?inline",
	"babel-loader!node_modules/left-pad/index.js",
	"ts-loader!src/api/client.ts",
	"sass-loader!css-loader!src/styles/theme.scss",
	"url-loader!assets/logo.png?size=512",
}

var demoPhases = []string{"building modules", "sealing", "optimizing", "emitting"}

// newDemoCmd creates the 'demo' subcommand, which replays simulated builds
// for every configured bundle through the full reporting pipeline.
func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Simulate multi-bundle builds with live progress",
		Long: `Replays staggered progress events for each configured bundle so the
live frame, profiling, and completion handling can be observed without a
real build pipeline.`,
		RunE: runDemoCommand,
	}
	return cmd
}

func runDemoCommand(*cobra.Command, []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := state.NewRegistry()
	interval := time.Duration(cfg.Render.IntervalMs) * time.Millisecond
	display := reporter.NewDisplay(reg, os.Stderr, interval)
	defer display.Close()

	done := func(r *state.Registry, _ *reporter.Reporter) {
		logger.Info("all bundles finished", zap.Int("bundles", len(r.Names())))
	}

	reporters := make([]*reporter.Reporter, 0, len(cfg.Bundles))
	for _, b := range cfg.Bundles {
		rep := reporter.New(reg, display, reporter.Options{
			Name:       b.Name,
			Color:      b.Color,
			Profile:    b.Profile,
			CompiledIn: b.CompiledIn,
			Minimal:    b.Minimal,
			Done:       done,
			Sinks:      []sinks.Sink{sinks.NewLogSink(logger.Named(b.Name))},
			Logger:     logger,
		})
		reporters = append(reporters, rep)
	}

	stepDelay := time.Duration(cfg.Demo.StepDelayMs) * time.Millisecond
	var wg sync.WaitGroup
	for i, rep := range reporters {
		wg.Add(1)
		go func(rep *reporter.Reporter, stagger time.Duration) {
			defer wg.Done()
			simulateBuild(rep, cfg.Demo.Steps, stepDelay, stagger)
		}(rep, time.Duration(i)*stepDelay/2)
	}
	wg.Wait()

	for _, rep := range reporters {
		if err := rep.Close(context.Background()); err != nil {
			logger.Warn("close reporter", zap.Error(err))
		}
	}
	return nil
}

// simulateBuild walks one bundle from 0% to 100% and reports completion.
func simulateBuild(rep *reporter.Reporter, steps int, stepDelay, stagger time.Duration) {
	time.Sleep(stagger)
	start := time.Now()

	for step := 0; step <= steps; step++ {
		percent := float64(step) / float64(steps)
		phase := demoPhases[min(step*len(demoPhases)/(steps+1), len(demoPhases)-1)]
		raw := demoRequests[rand.Intn(len(demoRequests))]
		counter := fmt.Sprintf("%d/%d modules", step, steps)
		rep.Handle(percent, phase, counter, "", raw)
		time.Sleep(stepDelay)
	}

	rep.BuildFinished(state.BuildStats{
		Hash:     fmt.Sprintf("%08x", rand.Uint32()),
		Duration: time.Since(start),
	})
}
