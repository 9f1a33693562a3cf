package sinks

import (
	"context"

	"go.uber.org/zap"
)

// LogSink emits one structured log line per lifecycle notice. It backs the
// minimal output mode and is handy while debugging event streams.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Notify logs the notice with structured fields.
func (s *LogSink) Notify(_ context.Context, n Notice) error {
	fields := []zap.Field{
		zap.String("cycle_id", n.CycleID.String()),
		zap.String("bundle", n.Bundle),
	}
	switch n.Kind {
	case KindStarted:
		s.logger.Info("bundle build started", fields...)
	case KindFinished:
		s.logger.Info("bundle build finished", append(fields, zap.Duration("elapsed", n.Elapsed))...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
