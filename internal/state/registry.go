// Package state holds the shared progress registry: one mutable slot per
// named bundle, read as a whole by the renderer. The registry is an explicit
// dependency injected into every reporter, never a package singleton, so
// tests and embedders can run isolated instances side by side.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkalnins/buildbar/internal/profile"
	"github.com/pkalnins/buildbar/internal/render"
	"github.com/pkalnins/buildbar/internal/request"
)

// BuildStats is the opaque completion summary attached to a bundle slot when
// its build finishes.
type BuildStats struct {
	Hash     string
	Errors   int
	Warnings int
	Duration time.Duration
}

// Bundle is one named build target's run state. Slots are created once per
// distinct name and live for the process lifetime; watch-mode cycles reuse
// them.
type Bundle struct {
	Name     string
	Color    render.Color
	Running  bool
	Progress int
	Msg      string
	Details  []string
	Request  request.ParsedRequest
	CycleID  uuid.UUID
	Start    time.Time // zero while not running
	Stats    *BuildStats
	Profile  *profile.Accumulator // nil unless profiling is enabled
}

// Snapshot is a read-only copy of a slot, safe to hold across renders.
type Snapshot struct {
	Name     string
	Color    render.Color
	Running  bool
	Progress int
	Msg      string
	Details  []string
	Request  request.ParsedRequest
	Start    time.Time
	Stats    *BuildStats
}

// Registry maps bundle names to their run state and owns the running-count
// edge that decides when the whole system is done. All access is serialized
// by its mutex: single writer per slot, whole-map reads for rendering.
type Registry struct {
	mu        sync.Mutex
	slots     map[string]*Bundle
	order     []string
	running   int
	cycleDone bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]*Bundle), cycleDone: true}
}

// Register creates the slot for name if it does not exist yet and records
// its display color and profiling choice. Registering the same name again is
// a no-op so watch-mode restarts keep the existing slot.
func (r *Registry) Register(name string, color render.Color, profiled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[name]; ok {
		return
	}
	b := &Bundle{Name: name, Color: color}
	if profiled {
		b.Profile = profile.New()
	}
	r.slots[name] = b
	r.order = append(r.order, name)
}

// Update mutates the slot for name under the registry lock. Unknown names
// are ignored.
func (r *Registry) Update(name string, fn func(*Bundle)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.slots[name]; ok {
		fn(b)
	}
}

// StartRun flips the slot into the running state, clears any stats from the
// previous cycle, and assigns a fresh cycle ID. It reports false when the
// slot was already running (or unknown), in which case nothing changes.
func (r *Registry) StartRun(name string, at time.Time) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.slots[name]
	if !ok || b.Running {
		return uuid.UUID{}, false
	}
	b.Running = true
	b.Start = at
	b.Stats = nil
	b.CycleID = uuid.New()
	r.running++
	r.cycleDone = false
	return b.CycleID, true
}

// FinishRun flips the slot back to idle and returns the cycle ID and elapsed
// run time. Duplicate finishes are no-ops. allIdle is true only for the call
// that took the last running slot to idle.
func (r *Registry) FinishRun(name string, at time.Time) (cycle uuid.UUID, elapsed time.Duration, finished, allIdle bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.slots[name]
	if !ok || !b.Running {
		return uuid.UUID{}, 0, false, false
	}
	elapsed = at.Sub(b.Start)
	b.Running = false
	b.Start = time.Time{}
	b.Msg = ""
	r.running--
	return b.CycleID, elapsed, true, r.running == 0
}

// CompleteCycle reports whether the caller should run the global completion
// hook. It returns true exactly once per build cycle, and only while no slot
// is running, so near-simultaneous completion checks from several reporters
// cannot fire the hook twice.
func (r *Registry) CompleteCycle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running > 0 || r.cycleDone {
		return false
	}
	r.cycleDone = true
	return true
}

// SetStats attaches the build statistics reported on completion.
func (r *Registry) SetStats(name string, stats *BuildStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.slots[name]; ok {
		b.Stats = stats
	}
}

// IsRunning reports whether the named slot is currently running.
func (r *Registry) IsRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.slots[name]
	return ok && b.Running
}

// AnyRunning reports whether any slot is currently running.
func (r *Registry) AnyRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running > 0
}

// Names lists registered bundles in first-registered order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Profile returns the slot's accumulator, or nil when profiling is off. The
// accumulator itself is safe for concurrent use.
func (r *Registry) Profile(name string) *profile.Accumulator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.slots[name]; ok {
		return b.Profile
	}
	return nil
}

// Snapshot copies every slot in first-registered order for a render pass.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snapshot, 0, len(r.order))
	for _, name := range r.order {
		b := r.slots[name]
		out = append(out, Snapshot{
			Name:     b.Name,
			Color:    b.Color,
			Running:  b.Running,
			Progress: b.Progress,
			Msg:      b.Msg,
			Details:  append([]string(nil), b.Details...),
			Request:  b.Request,
			Start:    b.Start,
			Stats:    b.Stats,
		})
	}
	return out
}
