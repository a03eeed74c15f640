package delivery

import (
	"log/slog"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/session"
)

// Engine fans out events to session handles.
//
// Delivery is best-effort, fire-and-forget, no retry: each target gets one
// health-check-then-send attempt, unreachable recipients are silently
// skipped, and the undelivered set is aggregated into a single log line.
// Sending never fails because a peer is unreachable.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a delivery engine
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger.With(slog.String("component", "delivery")),
	}
}

// Deliver attempts one delivery of the event to each target session.
// It returns the usernames that could not be reached; callers may ignore
// the result, it is logged here either way.
func (e *Engine) Deliver(ev model.Event, targets []*session.Session) (failed []string) {
	sent := 0
	for _, target := range targets {
		if !target.Handle.Alive() {
			failed = append(failed, target.Username)
			continue
		}
		if err := target.Handle.Push(ev); err != nil {
			e.logger.Debug("event push failed",
				slog.String("username", target.Username),
				slog.String("error", err.Error()))
			failed = append(failed, target.Username)
			continue
		}
		sent++
	}

	if len(failed) > 0 {
		e.logger.Warn("delivery partial failure",
			slog.String("event_type", string(ev.Type)),
			slog.String("room", ev.Room),
			slog.Int("sent", sent),
			slog.Any("undelivered", failed))
	}
	return failed
}
