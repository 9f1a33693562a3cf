package profile

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock steps a fixed amount per reading so elapsed deltas are exact.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) tick() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func newAccumulatorWithClock(step time.Duration) (*Accumulator, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0), step: step}
	acc := New()
	acc.now = clock.tick
	return acc, clock
}

// TestObserveAccumulates verifies count increments once per tick and time
// sums the inter-tick deltas.
func TestObserveAccumulates(t *testing.T) {
	t.Parallel()

	acc, _ := newAccumulatorWithClock(10 * time.Millisecond)
	acc.StartRun()
	for i := 0; i < 5; i++ {
		acc.Observe(Attribution{Category: "loaders", Items: []string{"babel-loader"}})
	}

	rec := acc.Stats()["loaders"]["babel-loader"]
	require.Equal(t, 5, rec.Count)
	require.Equal(t, 50*time.Millisecond, rec.Total)
}

// TestObserveSharedDelta asserts every attribution of one call is charged the
// same elapsed delta.
func TestObserveSharedDelta(t *testing.T) {
	t.Parallel()

	acc, _ := newAccumulatorWithClock(7 * time.Millisecond)
	acc.StartRun()
	acc.Observe(
		Attribution{Category: "loaders", Items: []string{"css-loader", "style-loader"}},
		Attribution{Category: "files", Items: []string{"css"}},
	)

	stats := acc.Stats()
	require.Equal(t, 7*time.Millisecond, stats["loaders"]["css-loader"].Total)
	require.Equal(t, 7*time.Millisecond, stats["loaders"]["style-loader"].Total)
	require.Equal(t, 7*time.Millisecond, stats["files"]["css"].Total)
}

// TestObserveZeroDelta covers sub-tick-resolution events: count still grows.
func TestObserveZeroDelta(t *testing.T) {
	t.Parallel()

	acc, _ := newAccumulatorWithClock(0)
	acc.StartRun()
	acc.Observe(Attribution{Category: "loaders", Items: []string{"ts-loader"}})

	rec := acc.Stats()["loaders"]["ts-loader"]
	require.Equal(t, 1, rec.Count)
	require.Zero(t, rec.Total)
}

func TestOrderIsFirstObserved(t *testing.T) {
	t.Parallel()

	acc, _ := newAccumulatorWithClock(time.Millisecond)
	acc.StartRun()
	acc.Observe(Attribution{Category: "loaders", Items: []string{"b-loader", "a-loader"}})
	acc.Observe(Attribution{Category: "files", Items: []string{"js"}})

	require.Equal(t, []string{"loaders", "files"}, acc.Categories())
	require.Equal(t, []string{"b-loader", "a-loader"}, acc.Items("loaders"))
}

func TestStatsIsNonDestructive(t *testing.T) {
	t.Parallel()

	acc, _ := newAccumulatorWithClock(time.Millisecond)
	acc.StartRun()
	acc.Observe(Attribution{Category: "loaders", Items: []string{"sass-loader"}})

	first := acc.Stats()
	first["loaders"]["sass-loader"] = Record{}

	acc.Observe(Attribution{Category: "loaders", Items: []string{"sass-loader"}})
	require.Equal(t, 2, acc.Stats()["loaders"]["sass-loader"].Count)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	acc, _ := newAccumulatorWithClock(20 * time.Millisecond)
	acc.StartRun()
	acc.Observe(Attribution{Category: "loaders", Items: []string{"babel-loader"}})
	acc.Observe(Attribution{Category: "loaders", Items: []string{"babel-loader", "css-loader"}})

	var buf bytes.Buffer
	WriteReport(&buf, acc)

	out := buf.String()
	require.Contains(t, out, "loaders")
	require.Contains(t, out, "babel-loader")
	require.Contains(t, out, "css-loader")
	require.Contains(t, out, "total")
}

func TestFormatAverageZeroCount(t *testing.T) {
	t.Parallel()

	require.Equal(t, "-", formatAverage(Record{}))
}
