package commands

import (
	"encoding/json"
	"errors"
	"time"

	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
)

// Vote record events are partitioned by session so tally consumers see one
// session's records in write order.
func newBoothEnvelope(
	eventID string,
	eventType string,
	sessionID string,
	occurredAt time.Time,
	data any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "voting-booth",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "session_id",
		PartitionKey:     sessionID,
		Data:             payload,
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrNotRegisteredVoter):
		return "not_registered"
	case errors.Is(err, domainerrors.ErrSessionNotOngoing):
		return "session_not_ongoing"
	case errors.Is(err, domainerrors.ErrSessionNotFound),
		errors.Is(err, domainerrors.ErrItemNotFound),
		errors.Is(err, domainerrors.ErrOptionNotFound):
		return "unknown_target"
	case errors.Is(err, domainerrors.ErrDuplicateVote):
		return "duplicate"
	case errors.Is(err, domainerrors.ErrTransportFailure):
		return "transport"
	default:
		return "other"
	}
}
