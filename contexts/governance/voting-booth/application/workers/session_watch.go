package workers

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/domain/entities"
	"agora/contexts/governance/voting-booth/ports"
)

const DefaultSessionPollInterval = 60 * time.Second

// SessionObserver is the client state holder the watch loop feeds.
type SessionObserver interface {
	ElectionID() string
	Phase() entities.Phase
	Enter(ctx context.Context) error
	Observe(ctx context.Context, observed *entities.ElectionSession)
	ObserveFailure(ctx context.Context, err error)
}

// SessionWatchLoop polls the active session on a fixed interval and reports
// each outcome to the observer. Lookup failures are surfaced and retried on
// the next tick; they never stop the loop.
type SessionWatchLoop struct {
	Sessions ports.ActiveSessionFinder
	Observer SessionObserver
	Interval time.Duration
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled. The ticker is stopped on return.
func (w SessionWatchLoop) Run(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultSessionPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("session watch loop started",
		"event", "booth_watch_loop_started",
		"module", application.LogModule,
		"layer", "worker",
		"election_id", w.Observer.ElectionID(),
		"poll_interval", interval.String(),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("session watch loop stopped",
				"event", "booth_watch_loop_stopped",
				"module", application.LogModule,
				"layer", "worker",
				"election_id", w.Observer.ElectionID(),
			)
			return nil
		case <-ticker.C:
			_ = w.RunOnce(ctx)
		}
	}
}

// RunOnce performs one poll. A booth that never finished entering retries
// its entry instead.
func (w SessionWatchLoop) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	electionID := w.Observer.ElectionID()

	if w.Observer.Phase() == entities.PhaseUninitialized {
		if err := w.Observer.Enter(ctx); err != nil {
			logger.Warn("booth entry retry failed",
				"event", "booth_watch_enter_retry_failed",
				"module", application.LogModule,
				"layer", "worker",
				"election_id", electionID,
				"error", err.Error(),
			)
			w.Observer.ObserveFailure(ctx, err)
			return err
		}
		return nil
	}

	session, found, err := w.Sessions.FindActiveSession(ctx, electionID)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("session poll failed; keeping current session",
			"event", "booth_watch_poll_failed",
			"module", application.LogModule,
			"layer", "worker",
			"election_id", electionID,
			"error", err.Error(),
		)
		w.Observer.ObserveFailure(ctx, err)
		return err
	}

	var observed *entities.ElectionSession
	if found {
		observed = &session
	}
	logger.Debug("session poll completed",
		"event", "booth_watch_poll_completed",
		"module", application.LogModule,
		"layer", "worker",
		"election_id", electionID,
		"found", found,
		"session_id", session.SessionID,
	)
	w.Observer.Observe(ctx, observed)
	return nil
}
