package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkalnins/buildbar/internal/render"
)

func newTestRegistry(names ...string) *Registry {
	r := NewRegistry()
	for _, name := range names {
		r.Register(name, render.DefaultColor, false)
	}
	return r
}

func TestStartFinishEdges(t *testing.T) {
	t.Parallel()

	r := newTestRegistry("client")
	start := time.Unix(2000, 0)

	cycle, started := r.StartRun("client", start)
	require.True(t, started)
	require.NotEqual(t, [16]byte{}, [16]byte(cycle))
	require.True(t, r.IsRunning("client"))

	// A second start while running must not reset the cycle.
	_, started = r.StartRun("client", start.Add(time.Second))
	require.False(t, started)

	_, elapsed, finished, allIdle := r.FinishRun("client", start.Add(3*time.Second))
	require.True(t, finished)
	require.True(t, allIdle)
	require.Equal(t, 3*time.Second, elapsed)
	require.False(t, r.IsRunning("client"))

	// Duplicate 100% events are idempotent for transition side effects.
	_, _, finished, _ = r.FinishRun("client", start.Add(4*time.Second))
	require.False(t, finished)
}

func TestStartClearsPriorStats(t *testing.T) {
	t.Parallel()

	r := newTestRegistry("client")
	now := time.Now()

	_, _ = r.StartRun("client", now)
	_, _, _, _ = r.FinishRun("client", now.Add(time.Second))
	r.SetStats("client", &BuildStats{Hash: "abc"})
	require.NotNil(t, r.Snapshot()[0].Stats)

	_, started := r.StartRun("client", now.Add(2*time.Second))
	require.True(t, started)
	require.Nil(t, r.Snapshot()[0].Stats)
}

// TestAllIdleEdge covers the cross-instance completion condition: the edge
// fires only when the last running slot finishes.
func TestAllIdleEdge(t *testing.T) {
	t.Parallel()

	r := newTestRegistry("client", "server")
	now := time.Now()

	_, _ = r.StartRun("client", now)
	_, _ = r.StartRun("server", now)

	_, _, finished, allIdle := r.FinishRun("client", now.Add(time.Second))
	require.True(t, finished)
	require.False(t, allIdle)
	require.True(t, r.AnyRunning())

	_, _, finished, allIdle = r.FinishRun("server", now.Add(2*time.Second))
	require.True(t, finished)
	require.True(t, allIdle)
	require.False(t, r.AnyRunning())
}

// TestCompleteCycleExactlyOnce asserts the completion hook gate opens once
// per cycle even when checked repeatedly.
func TestCompleteCycleExactlyOnce(t *testing.T) {
	t.Parallel()

	r := newTestRegistry("client", "server")
	now := time.Now()

	// Nothing has run yet: no completion to report.
	require.False(t, r.CompleteCycle())

	_, _ = r.StartRun("client", now)
	_, _ = r.StartRun("server", now)
	_, _, _, _ = r.FinishRun("client", now.Add(time.Second))

	// server still running.
	require.False(t, r.CompleteCycle())

	_, _, _, _ = r.FinishRun("server", now.Add(2*time.Second))
	require.True(t, r.CompleteCycle())
	require.False(t, r.CompleteCycle())

	// A new watch cycle re-arms the gate.
	_, _ = r.StartRun("client", now.Add(3*time.Second))
	_, _, _, _ = r.FinishRun("client", now.Add(4*time.Second))
	require.True(t, r.CompleteCycle())
}

func TestSnapshotOrderAndIsolation(t *testing.T) {
	t.Parallel()

	r := newTestRegistry("server", "client")
	r.Update("server", func(b *Bundle) {
		b.Progress = 40
		b.Details = []string{"building", "modules"}
	})

	snaps := r.Snapshot()
	require.Len(t, snaps, 2)
	assert.Equal(t, "server", snaps[0].Name)
	assert.Equal(t, "client", snaps[1].Name)

	// Mutating the snapshot must not leak back into the slot.
	snaps[0].Details[0] = "mutated"
	assert.Equal(t, "building", r.Snapshot()[0].Details[0])
}

func TestRegisterIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("client", render.ParseColor("red"), true)
	r.Register("client", render.ParseColor("blue"), false)

	require.Equal(t, []string{"client"}, r.Names())
	require.NotNil(t, r.Profile("client"))
}
