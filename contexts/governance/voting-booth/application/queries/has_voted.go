package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/domain/entities"
	"agora/contexts/governance/voting-booth/ports"
)

// HasVotedUseCase derives whether the voter already cast a vote in the
// currently ongoing session: resolve voter, resolve active session, count.
type HasVotedUseCase struct {
	Registry ports.SessionRegistry
	Voters   VoterEligibility
	Sessions SessionLookup
	Timeout  time.Duration
	Logger   *slog.Logger
}

func (q HasVotedUseCase) HasVoted(ctx context.Context, electionID string, identity string) (bool, error) {
	voter, err := q.Voters.ResolveVoter(ctx, electionID, identity)
	if err != nil {
		return false, err
	}
	session, found, err := q.Sessions.FindActiveSession(ctx, electionID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	callCtx, cancel := application.WithCallTimeout(ctx, q.Timeout)
	defer cancel()

	count, err := q.Registry.CountVoteRecords(callCtx, voter.VoterID, session.SessionID)
	if err != nil {
		err = application.ClassifyRegistryError("count vote records", err)
		application.ResolveLogger(q.Logger).Error("vote record count failed",
			"event", "booth_has_voted_count_failed",
			"module", application.LogModule,
			"layer", "application",
			"election_id", strings.TrimSpace(electionID),
			"session_id", session.SessionID,
			"error", err.Error(),
		)
		return false, err
	}
	return count > 0, nil
}

// ListMyVotesUseCase returns the caller's own vote records. Only records the
// voter principal holds a read grant for are visible.
type ListMyVotesUseCase struct {
	Registry ports.SessionRegistry
	Voters   VoterEligibility
	Timeout  time.Duration
}

func (q ListMyVotesUseCase) ListMyVotes(ctx context.Context, electionID string, identity string) ([]entities.VoteRecord, error) {
	voter, err := q.Voters.ResolveVoter(ctx, electionID, identity)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := application.WithCallTimeout(ctx, q.Timeout)
	defer cancel()

	records, err := q.Registry.ListVoteRecordsReadableBy(callCtx, voter.ElectionID, entities.VoterPrincipal(voter.VoterID))
	if err != nil {
		return nil, application.ClassifyRegistryError("list vote records", err)
	}
	return records, nil
}
