package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/application/queries"
	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
	contractsv1 "agora/contracts/gen/events/v1"
)

// CastVoteCommand is the server-side write for one selected option.
type CastVoteCommand struct {
	ElectionID string
	SessionID  string
	ItemID     string
	OptionID   string
	Identity   string
}

// CastVoteUseCase is the authoritative write path. It never trusts a voter
// id supplied by the client: the voter is re-derived from the identity.
type CastVoteUseCase struct {
	Registry ports.SessionRegistry
	Voters   queries.VoterEligibility
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Timeout  time.Duration
	Metrics  ports.Metrics
	Logger   *slog.Logger
}

func (uc CastVoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd = normalizeCastVote(cmd)
	logger.Info("vote cast processing started",
		"event", "booth_vote_cast_started",
		"module", application.LogModule,
		"layer", "application",
		"election_id", cmd.ElectionID,
		"session_id", cmd.SessionID,
		"item_id", cmd.ItemID,
	)
	if cmd.ElectionID == "" || cmd.SessionID == "" || cmd.ItemID == "" ||
		cmd.OptionID == "" || cmd.Identity == "" || cmd.OptionID == entities.Abstain {
		logger.Warn("vote cast validation failed",
			"event", "booth_vote_cast_validation_failed",
			"module", application.LogModule,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"session_id", cmd.SessionID,
			"item_id", cmd.ItemID,
		)
		uc.metrics().VoteCastRejected("invalid_input")
		return entities.VoteRecord{}, domainerrors.ErrInvalidInput
	}

	voter, err := uc.Voters.ResolveVoter(ctx, cmd.ElectionID, cmd.Identity)
	if err != nil {
		uc.metrics().VoteCastRejected(rejectReason(err))
		return entities.VoteRecord{}, err
	}

	if err := uc.validateTarget(ctx, cmd); err != nil {
		logger.Warn("vote cast target rejected",
			"event", "booth_vote_cast_target_rejected",
			"module", application.LogModule,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"session_id", cmd.SessionID,
			"item_id", cmd.ItemID,
			"option_id", cmd.OptionID,
			"error", err.Error(),
		)
		uc.metrics().VoteCastRejected(rejectReason(err))
		return entities.VoteRecord{}, err
	}

	recordID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	record := entities.VoteRecord{
		RecordID:   recordID,
		VoterID:    voter.VoterID,
		ElectionID: cmd.ElectionID,
		SessionID:  cmd.SessionID,
		ItemID:     cmd.ItemID,
		OptionID:   cmd.OptionID,
		Weight:     voter.Weight,
		CastAt:     uc.now(),
	}

	callCtx, cancel := application.WithCallTimeout(ctx, uc.Timeout)
	defer cancel()
	if err := uc.Registry.CreateVoteRecord(callCtx, record, entities.VoteRecordPermissions(voter.VoterID, cmd.ElectionID)); err != nil {
		err = application.ClassifyRegistryError("create vote record", err)
		logger.Error("vote record create failed",
			"event", "booth_vote_cast_persist_failed",
			"module", application.LogModule,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"session_id", cmd.SessionID,
			"item_id", cmd.ItemID,
			"voter_id", voter.VoterID,
			"error", err.Error(),
		)
		uc.metrics().VoteCastRejected(rejectReason(err))
		return entities.VoteRecord{}, err
	}
	// The record is already committed and is the source of truth, so an
	// outbox failure is logged rather than reported as a failed cast.
	if err := uc.appendRecordEvent(ctx, record); err != nil {
		logger.Error("vote record event append failed",
			"event", "booth_vote_cast_outbox_failed",
			"module", application.LogModule,
			"layer", "application",
			"record_id", record.RecordID,
			"error", err.Error(),
		)
	}

	uc.metrics().VoteRecordCast(cmd.ElectionID)
	logger.Info("vote record created",
		"event", "booth_vote_cast_completed",
		"module", application.LogModule,
		"layer", "application",
		"record_id", record.RecordID,
		"election_id", record.ElectionID,
		"session_id", record.SessionID,
		"item_id", record.ItemID,
		"voter_id", record.VoterID,
		"weight", record.Weight,
	)
	return record, nil
}

func (uc CastVoteUseCase) validateTarget(ctx context.Context, cmd CastVoteCommand) error {
	callCtx, cancel := application.WithCallTimeout(ctx, uc.Timeout)
	defer cancel()

	session, err := uc.Registry.GetSession(callCtx, cmd.SessionID)
	if err != nil {
		return application.ClassifyRegistryError("get session", err)
	}
	if session.ElectionID != cmd.ElectionID {
		return domainerrors.ErrSessionNotFound
	}
	if session.Status != entities.StatusOngoing {
		return domainerrors.ErrSessionNotOngoing
	}
	item, ok := session.Item(cmd.ItemID)
	if !ok {
		return domainerrors.ErrItemNotFound
	}
	if !item.HasOption(cmd.OptionID) {
		return domainerrors.ErrOptionNotFound
	}
	return nil
}

func (uc CastVoteUseCase) appendRecordEvent(ctx context.Context, record entities.VoteRecord) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newBoothEnvelope(eventID, contractsv1.TopicVoteRecordCreated, record.SessionID, record.CastAt, contractsv1.VoteRecordCreated{
		RecordID:   record.RecordID,
		ElectionID: record.ElectionID,
		SessionID:  record.SessionID,
		ItemID:     record.ItemID,
		OptionID:   record.OptionID,
		VoterID:    record.VoterID,
		Weight:     record.Weight,
		CastAt:     record.CastAt,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc CastVoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc CastVoteUseCase) metrics() ports.Metrics {
	if uc.Metrics == nil {
		return ports.NopMetrics{}
	}
	return uc.Metrics
}

func normalizeCastVote(cmd CastVoteCommand) CastVoteCommand {
	return CastVoteCommand{
		ElectionID: strings.TrimSpace(cmd.ElectionID),
		SessionID:  strings.TrimSpace(cmd.SessionID),
		ItemID:     strings.TrimSpace(cmd.ItemID),
		OptionID:   strings.TrimSpace(cmd.OptionID),
		Identity:   strings.TrimSpace(cmd.Identity),
	}
}
