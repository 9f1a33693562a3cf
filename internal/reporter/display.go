package reporter

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkalnins/buildbar/internal/render"
	"github.com/pkalnins/buildbar/internal/request"
	"github.com/pkalnins/buildbar/internal/state"
)

const defaultRenderInterval = 100 * time.Millisecond

// Display owns the terminal frame and the render schedule for one registry.
// Reporters mark it dirty on every event; a fixed-interval ticker turns the
// latest registry snapshot into at most one frame per interval, so bursts of
// progress events collapse to a single redraw with trailing-edge semantics.
type Display struct {
	reg      *state.Registry
	fw       *render.FrameWriter
	interval time.Duration

	dirty    atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDisplay starts the render loop on stream. interval <= 0 selects the
// 100ms default.
func NewDisplay(reg *state.Registry, stream io.Writer, interval time.Duration) *Display {
	if interval <= 0 {
		interval = defaultRenderInterval
	}
	d := &Display{
		reg:      reg,
		fw:       render.NewFrameWriter(stream),
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go d.run()
	return d
}

// MarkDirty requests a redraw on the next tick.
func (d *Display) MarkDirty() {
	d.dirty.Store(true)
}

// Clear erases the live frame and drops any pending redraw.
func (d *Display) Clear() {
	d.dirty.Store(false)
	d.fw.Clear()
}

// WriteLine erases the live frame and prints line as durable scrollback.
func (d *Display) WriteLine(line string) {
	d.fw.WriteLine(line)
}

// Close stops the render loop and blocks until it exits. Safe to call more
// than once.
func (d *Display) Close() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
	<-d.doneCh
}

func (d *Display) run() {
	defer close(d.doneCh)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.renderPass()
		}
	}
}

// renderPass draws one frame if anything changed since the last tick. When
// no bundle is running the frame is skipped entirely: completion handling
// clears the output explicitly, and a redundant final frame would resurrect
// it.
func (d *Display) renderPass() {
	if !d.dirty.Swap(false) {
		return
	}
	snaps := d.reg.Snapshot()
	if !anyRunning(snaps) {
		return
	}
	d.fw.WriteFrame(render.Frame(frameLines(snaps)))
}

func anyRunning(snaps []state.Snapshot) bool {
	for _, s := range snaps {
		if s.Running {
			return true
		}
	}
	return false
}

// frameLines maps registry snapshots to renderable rows, one per bundle.
func frameLines(snaps []state.Snapshot) []render.Line {
	lines := make([]render.Line, 0, len(snaps))
	for _, s := range snaps {
		tail := request.Format(s.Request)
		if tail == "" && len(s.Details) > 0 {
			tail = s.Details[0]
		}
		lines = append(lines, render.Line{
			Name:     s.Name,
			Color:    s.Color,
			Progress: s.Progress,
			Msg:      s.Msg,
			Tail:     tail,
		})
	}
	return lines
}
