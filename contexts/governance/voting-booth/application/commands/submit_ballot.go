package commands

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
)

type SubmitBallotCommand struct {
	ElectionID string
	Identity   string
	Session    entities.ElectionSession
	Ballot     *entities.Ballot
}

type SubmitResult struct {
	Voter     entities.Voter
	Committed int
	Records   []entities.VoteRecord
}

// SubmissionCoordinator turns a complete ballot into one castVote call per
// selected option. Writes are sequential in session item order, there is no
// enclosing transaction, and records written before a failure are kept.
type SubmissionCoordinator struct {
	Gateway ports.VotingGateway
	Metrics ports.Metrics
	Logger  *slog.Logger
}

func (c SubmissionCoordinator) Submit(ctx context.Context, cmd SubmitBallotCommand) (SubmitResult, error) {
	logger := application.ResolveLogger(c.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	identity := strings.TrimSpace(cmd.Identity)
	if cmd.Ballot == nil || electionID == "" || identity == "" ||
		cmd.Ballot.SessionID() != cmd.Session.SessionID {
		return SubmitResult{}, domainerrors.ErrInvalidInput
	}

	if incomplete := cmd.Ballot.IncompleteItems(); len(incomplete) > 0 {
		logger.Info("ballot submission rejected as incomplete",
			"event", "booth_submission_incomplete",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
			"session_id", cmd.Session.SessionID,
			"incomplete_items", incomplete,
		)
		c.metrics().SubmissionFinished("incomplete")
		return SubmitResult{}, &domainerrors.IncompleteBallotError{ItemIDs: incomplete}
	}

	voter, err := c.Gateway.ResolveVoter(ctx, electionID, identity)
	if err != nil {
		logger.Warn("ballot submission voter re-resolution failed",
			"event", "booth_submission_voter_failed",
			"module", application.LogModule,
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		c.metrics().SubmissionFinished("ineligible")
		return SubmitResult{}, err
	}

	writes := cmd.Ballot.SelectedOptions()
	result := SubmitResult{Voter: voter, Records: make([]entities.VoteRecord, 0, len(writes))}
	for index, write := range writes {
		record, err := c.Gateway.CastVote(ctx, ports.CastVoteRequest{
			ElectionID: electionID,
			SessionID:  cmd.Session.SessionID,
			ItemID:     write.ItemID,
			OptionID:   write.OptionID,
			Identity:   identity,
		})
		if err != nil {
			logger.Error("ballot submission stopped at failed write",
				"event", "booth_submission_partial_failure",
				"module", application.LogModule,
				"layer", "application",
				"election_id", electionID,
				"session_id", cmd.Session.SessionID,
				"voter_id", voter.VoterID,
				"failed_write", index+1,
				"committed", result.Committed,
				"intended", len(writes),
				"error", err.Error(),
			)
			c.metrics().SubmissionFinished("partial_failure")
			return result, &domainerrors.PartialSubmissionError{
				Committed: result.Committed,
				Intended:  len(writes),
				Err:       err,
			}
		}
		result.Records = append(result.Records, record)
		result.Committed++
	}

	logger.Info("ballot submitted",
		"event", "booth_submission_completed",
		"module", application.LogModule,
		"layer", "application",
		"election_id", electionID,
		"session_id", cmd.Session.SessionID,
		"voter_id", voter.VoterID,
		"committed", result.Committed,
	)
	c.metrics().SubmissionFinished("success")
	return result, nil
}

func (c SubmissionCoordinator) metrics() ports.Metrics {
	if c.Metrics == nil {
		return ports.NopMetrics{}
	}
	return c.Metrics
}
