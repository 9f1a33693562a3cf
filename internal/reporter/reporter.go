// Package reporter is the orchestrator of the progress overlay: it receives
// per-bundle progress events, maintains the shared registry, feeds profiling,
// fans lifecycle notices out to sinks, and drives throttled rendering and
// completion handling.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/pkalnins/buildbar/internal/profile"
	"github.com/pkalnins/buildbar/internal/render"
	"github.com/pkalnins/buildbar/internal/request"
	"github.com/pkalnins/buildbar/internal/sinks"
	"github.com/pkalnins/buildbar/internal/state"
)

const defaultSinkTimeout = 5 * time.Second

// Options configures one bundle's reporter.
//   - Name: display key and shared-registry slot (default "build").
//   - Color: bar/label color, a name or #hex (default green).
//   - Profile: enable per-loader/per-file time attribution.
//   - CompiledIn: print a "compiled in X ms" line on finish.
//   - Done: completion callback, fired once per cycle when every bundle in
//     the registry has finished.
//   - Minimal: suppress the live frame in favor of single-line start/finish
//     entries. Forced on when Stream is a file that is not a terminal.
//   - Stream: output stream (default standard error).
//   - Sinks: optional lifecycle notice consumers.
//   - SinkTimeout: per-sink timeout while notifying (default 5s).
//   - Logger: optional structured logger used for warnings.
type Options struct {
	Name        string
	Color       string
	Profile     bool
	CompiledIn  bool
	Done        func(*state.Registry, *Reporter)
	Minimal     bool
	Stream      io.Writer
	Sinks       []sinks.Sink
	SinkTimeout time.Duration
	Logger      *zap.Logger
}

// Reporter handles progress events for one named bundle. Several reporters
// share a registry (and usually a display) so concurrently building bundles
// render together.
type Reporter struct {
	reg     *state.Registry
	display *Display
	opts    Options
	color   render.Color
	logger  *zap.Logger
}

// New registers the bundle's slot and returns its reporter. display may be
// nil for minimal-only operation.
func New(reg *state.Registry, display *Display, opts Options) *Reporter {
	if opts.Name == "" {
		opts.Name = "build"
	}
	if opts.Stream == nil {
		opts.Stream = os.Stderr
	}
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = defaultSinkTimeout
	}
	if f, ok := opts.Stream.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		opts.Minimal = true
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	color := render.ParseColor(opts.Color)
	reg.Register(opts.Name, color, opts.Profile)
	return &Reporter{
		reg:     reg,
		display: display,
		opts:    opts,
		color:   color,
		logger:  logger,
	}
}

// Name returns the bundle name this reporter owns.
func (rep *Reporter) Name() string {
	return rep.opts.Name
}

// Handle processes one progress event. percent is the bundler's 0..1
// fraction; by convention details[2] carries the raw module-request string.
// Handle never fails: malformed payloads degrade to empty fields.
func (rep *Reporter) Handle(percent float64, msg string, details ...string) {
	now := time.Now()
	name := rep.opts.Name

	var raw string
	if len(details) > 2 {
		raw = details[2]
	}
	req := request.Parse(raw)

	if percent < 1.0 {
		if cycle, started := rep.reg.StartRun(name, now); started {
			if acc := rep.reg.Profile(name); acc != nil {
				acc.StartRun()
			}
			rep.notify(sinks.Notice{CycleID: cycle, TS: now, Kind: sinks.KindStarted, Bundle: name})
			if rep.opts.Minimal {
				rep.writeLine(fmt.Sprintf("%s: build started", rep.label()))
			}
		}
	}

	running := rep.reg.IsRunning(name)
	progress := flooredPercent(percent)
	rep.reg.Update(name, func(b *state.Bundle) {
		b.Progress = progress
		b.Msg = msg
		b.Details = append([]string(nil), details...)
		b.Request = req
	})

	if running {
		if acc := rep.reg.Profile(name); acc != nil {
			acc.Observe(attributions(req)...)
		}
	}

	if percent >= 1.0 {
		if cycle, elapsed, finished, _ := rep.reg.FinishRun(name, now); finished {
			rep.notify(sinks.Notice{
				CycleID: cycle,
				TS:      now,
				Kind:    sinks.KindFinished,
				Bundle:  name,
				Elapsed: elapsed,
			})
			if rep.display != nil {
				rep.display.Clear()
			}
			rep.writeFinishLine(elapsed)
		}
	}

	if rep.display != nil && !rep.opts.Minimal {
		rep.display.MarkDirty()
	}
}

// BuildFinished records the completion statistics for this bundle and runs
// the global completion check. The completion hook (profile reports plus the
// Done callback) fires exactly once per cycle, from whichever reporter takes
// the registry to all-idle last.
func (rep *Reporter) BuildFinished(stats state.BuildStats) {
	rep.reg.SetStats(rep.opts.Name, &stats)
	if !rep.reg.CompleteCycle() {
		return
	}
	if rep.display != nil {
		rep.display.Clear()
	}
	rep.writeProfileReports()
	if rep.opts.Done != nil {
		rep.opts.Done(rep.reg, rep)
	}
}

// Close releases the reporter's sinks. The display is owned by the caller
// and closed separately.
func (rep *Reporter) Close(ctx context.Context) error {
	var errs []error
	for _, sink := range rep.opts.Sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (rep *Reporter) notify(n sinks.Notice) {
	if err := n.Validate(); err != nil {
		rep.logger.Debug("discarding invalid notice", zap.Error(err))
		return
	}
	for _, sink := range rep.opts.Sinks {
		if sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), rep.opts.SinkTimeout)
		if err := sink.Notify(ctx, n); err != nil {
			rep.logger.Warn("status sink notify failed", zap.Error(err))
		}
		cancel()
	}
}

func (rep *Reporter) writeFinishLine(elapsed time.Duration) {
	switch {
	case rep.opts.CompiledIn:
		rep.writeLine(fmt.Sprintf("%s: compiled in %d ms", rep.label(), elapsed.Milliseconds()))
	case rep.opts.Minimal:
		rep.writeLine(fmt.Sprintf("%s: build finished in %d ms", rep.label(), elapsed.Milliseconds()))
	}
}

// writeProfileReports prints the accumulated tables for every profiled slot,
// in registration order.
func (rep *Reporter) writeProfileReports() {
	for _, name := range rep.reg.Names() {
		acc := rep.reg.Profile(name)
		if acc == nil {
			continue
		}
		fmt.Fprintf(rep.opts.Stream, "\nprofile: %s\n", name)
		profile.WriteReport(rep.opts.Stream, acc)
	}
}

func (rep *Reporter) writeLine(line string) {
	if rep.display != nil {
		rep.display.WriteLine(line)
		return
	}
	fmt.Fprintln(rep.opts.Stream, line)
}

func (rep *Reporter) label() string {
	return rep.color.Style().Bold(true).Render(rep.opts.Name)
}

// flooredPercent converts the bundler's 0..1 fraction to a clamped integer
// percentage.
func flooredPercent(fraction float64) int {
	percent := int(fraction * 100)
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// attributions maps a parsed request to profile charges: each loader under
// "loaders" and the file's extension bucket under "files".
func attributions(req request.ParsedRequest) []profile.Attribution {
	atts := make([]profile.Attribution, 0, 2)
	if len(req.Loaders) > 0 {
		atts = append(atts, profile.Attribution{Category: "loaders", Items: req.Loaders})
	}
	if req.File != "" {
		atts = append(atts, profile.Attribution{Category: "files", Items: []string{fileBucket(req.File)}})
	}
	return atts
}

func fileBucket(file string) string {
	ext := strings.TrimPrefix(filepath.Ext(file), ".")
	if ext == "" {
		return "other"
	}
	return ext
}
