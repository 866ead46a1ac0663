package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
)

// VoterEligibility resolves the voter record for an authenticated identity.
type VoterEligibility struct {
	Registry ports.SessionRegistry
	Timeout  time.Duration
	Logger   *slog.Logger
}

func (q VoterEligibility) ResolveVoter(ctx context.Context, electionID string, identity string) (entities.Voter, error) {
	logger := application.ResolveLogger(q.Logger)
	electionID = strings.TrimSpace(electionID)
	identity = strings.TrimSpace(identity)
	if electionID == "" || identity == "" {
		return entities.Voter{}, domainerrors.ErrInvalidInput
	}

	callCtx, cancel := application.WithCallTimeout(ctx, q.Timeout)
	defer cancel()

	voter, found, err := q.Registry.GetVoterByIdentity(callCtx, electionID, identity)
	if err != nil {
		err = application.ClassifyRegistryError("get voter", err)
		logger.Error("voter lookup failed",
			"event", "booth_voter_lookup_failed",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		return entities.Voter{}, err
	}
	if !found {
		logger.Warn("identity is not a registered voter",
			"event", "booth_voter_not_registered",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
			"identity", identity,
		)
		return entities.Voter{}, domainerrors.ErrNotRegisteredVoter
	}
	return voter, nil
}

// GetElectionUseCase reads election metadata.
type GetElectionUseCase struct {
	Registry ports.SessionRegistry
	Timeout  time.Duration
}

func (q GetElectionUseCase) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return entities.Election{}, domainerrors.ErrInvalidInput
	}
	callCtx, cancel := application.WithCallTimeout(ctx, q.Timeout)
	defer cancel()

	election, err := q.Registry.GetElection(callCtx, electionID)
	if err != nil {
		return entities.Election{}, application.ClassifyRegistryError("get election", err)
	}
	return election, nil
}
