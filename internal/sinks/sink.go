// Package sinks implements consumers for bundle lifecycle notices, such as
// structured logging and Prometheus collectors. Each sink satisfies the Sink
// interface and tolerates repeated Notify/Close cycles.
package sinks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind denotes the lifecycle transition a Notice represents.
type Kind string

// Supported notice kinds.
const (
	KindStarted  Kind = "STARTED"
	KindFinished Kind = "FINISHED"
)

// Notice describes one bundle lifecycle transition.
type Notice struct {
	// CycleID identifies the build cycle; watch-mode runs of the same
	// bundle get distinct IDs.
	CycleID uuid.UUID
	// TS is the transition timestamp recorded by the reporter.
	TS time.Time
	// Kind is the transition type.
	Kind Kind
	// Bundle is the bundle name owning the transition.
	Bundle string
	// Elapsed carries the run duration; set on KindFinished only.
	Elapsed time.Duration
}

// Validate performs coarse validation on Notice payloads.
func (n Notice) Validate() error {
	if n.Bundle == "" {
		return errors.New("bundle name is required")
	}
	if n.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch n.Kind {
	case KindStarted:
	case KindFinished:
		if n.Elapsed < 0 {
			return errors.New("elapsed must be >= 0")
		}
	default:
		return fmt.Errorf("unknown notice kind %q", n.Kind)
	}
	return nil
}

// Sink consumes lifecycle notices. Implementations must be safe for
// concurrent calls and honor ctx deadlines.
type Sink interface {
	Notify(ctx context.Context, n Notice) error
	Close(ctx context.Context) error
}
