// Package profile attributes build time to (category, item) pairs as module
// requests stream through, and renders the accumulated statistics.
package profile

import (
	"sync"
	"time"
)

// Record accumulates attribution for one item within a category. Count grows
// by exactly one per attributed tick and Total never decreases.
type Record struct {
	Count int
	Total time.Duration
}

// Attribution names the items one tick's elapsed time is charged to within a
// single category. Zero-elapsed ticks still increment counts.
type Attribution struct {
	Category string
	Items    []string
}

// Accumulator records time-and-count statistics per category and item. It is
// safe for concurrent use; snapshots returned by Stats are copies.
type Accumulator struct {
	mu       sync.Mutex
	now      func() time.Time
	lastTick time.Time

	records   map[string]map[string]*Record
	itemOrder map[string][]string
	catOrder  []string
}

// New returns an empty Accumulator. Statistics keep accumulating across build
// cycles until Reset is called.
func New() *Accumulator {
	return &Accumulator{
		now:       time.Now,
		records:   make(map[string]map[string]*Record),
		itemOrder: make(map[string][]string),
	}
}

// StartRun marks the beginning of a build cycle so the first observation is
// measured from run start rather than from the previous cycle's last tick.
func (a *Accumulator) StartRun() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastTick = a.now()
}

// Observe charges the time elapsed since the previous observation (or since
// StartRun, for the first) to every item named by the attributions. All
// attributions of one call share the same elapsed delta.
func (a *Accumulator) Observe(attributions ...Attribution) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tick := a.now()
	var elapsed time.Duration
	if !a.lastTick.IsZero() {
		elapsed = tick.Sub(a.lastTick)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	a.lastTick = tick

	for _, attribution := range attributions {
		for _, item := range attribution.Items {
			rec := a.record(attribution.Category, item)
			rec.Count++
			rec.Total += elapsed
		}
	}
}

// Stats returns the accumulated category → item → Record mapping. The result
// is a copy; reading it never disturbs ongoing accumulation.
func (a *Accumulator) Stats() map[string]map[string]Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]map[string]Record, len(a.records))
	for category, items := range a.records {
		copied := make(map[string]Record, len(items))
		for item, rec := range items {
			copied[item] = *rec
		}
		out[category] = copied
	}
	return out
}

// Categories lists observed categories in first-observed order.
func (a *Accumulator) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.catOrder...)
}

// Items lists a category's items in first-observed order.
func (a *Accumulator) Items(category string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.itemOrder[category]...)
}

// Reset discards all accumulated statistics and the tick baseline.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastTick = time.Time{}
	a.records = make(map[string]map[string]*Record)
	a.itemOrder = make(map[string][]string)
	a.catOrder = nil
}

func (a *Accumulator) record(category, item string) *Record {
	items, ok := a.records[category]
	if !ok {
		items = make(map[string]*Record)
		a.records[category] = items
		a.catOrder = append(a.catOrder, category)
	}
	rec, ok := items[item]
	if !ok {
		rec = &Record{}
		items[item] = rec
		a.itemOrder[category] = append(a.itemOrder[category], item)
	}
	return rec
}
