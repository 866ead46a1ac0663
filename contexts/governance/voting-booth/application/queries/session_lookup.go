package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
)

// SessionLookup resolves the single ongoing session of an election.
type SessionLookup struct {
	Registry ports.SessionRegistry
	Timeout  time.Duration
	Metrics  ports.Metrics
	Logger   *slog.Logger
}

// FindActiveSession returns the ongoing session, or found=false when there is
// none. Should the registry report several ongoing sessions, the one with the
// lowest id wins and the anomaly is logged. Registry faults come back as
// ErrTransportFailure, never as "not found".
func (q SessionLookup) FindActiveSession(ctx context.Context, electionID string) (entities.ElectionSession, bool, error) {
	logger := application.ResolveLogger(q.Logger)
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return entities.ElectionSession{}, false, domainerrors.ErrInvalidInput
	}

	callCtx, cancel := application.WithCallTimeout(ctx, q.Timeout)
	defer cancel()

	sessions, err := q.Registry.ListSessionsByStatus(callCtx, electionID, entities.StatusOngoing)
	if err != nil {
		err = application.ClassifyRegistryError("list ongoing sessions", err)
		logger.Error("active session lookup failed",
			"event", "booth_session_lookup_failed",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		return entities.ElectionSession{}, false, err
	}
	if len(sessions) == 0 {
		logger.Debug("no ongoing session",
			"event", "booth_session_lookup_none",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
		)
		return entities.ElectionSession{}, false, nil
	}
	if len(sessions) > 1 {
		sorted := append([]entities.ElectionSession(nil), sessions...)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].SessionID < sorted[j].SessionID
		})
		ids := make([]string, 0, len(sorted))
		for _, session := range sorted {
			ids = append(ids, session.SessionID)
		}
		logger.Warn("registry reports more than one ongoing session",
			"event", "booth_session_lookup_multiple_ongoing",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
			"ongoing_count", len(sorted),
			"session_ids", ids,
			"chosen_session_id", sorted[0].SessionID,
		)
		q.metrics().MultipleOngoingSessions(electionID)
		return sorted[0], true, nil
	}
	return sessions[0], true, nil
}

func (q SessionLookup) metrics() ports.Metrics {
	if q.Metrics == nil {
		return ports.NopMetrics{}
	}
	return q.Metrics
}
