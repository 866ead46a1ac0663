package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance/voting-booth/application/commands"
	"agora/contexts/governance/voting-booth/application/queries"
	httptransport "agora/contexts/governance/voting-booth/transport/http"
)

type Handler struct {
	Elections queries.GetElectionUseCase
	Sessions  queries.SessionLookup
	Voters    queries.VoterEligibility
	HasVoted  queries.HasVotedUseCase
	MyVotes   queries.ListMyVotesUseCase
	CastVote  commands.CastVoteUseCase
	Logger    *slog.Logger
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return httptransport.ElectionFromEntity(election), nil
}

func (h Handler) ActiveSessionHandler(ctx context.Context, electionID string) (httptransport.ActiveSessionResponse, error) {
	session, found, err := h.Sessions.FindActiveSession(ctx, electionID)
	if err != nil {
		return httptransport.ActiveSessionResponse{}, err
	}
	if !found {
		return httptransport.ActiveSessionResponse{}, nil
	}
	dto := httptransport.SessionFromEntity(session)
	return httptransport.ActiveSessionResponse{Session: &dto}, nil
}

func (h Handler) VoterHandler(ctx context.Context, electionID string, identity string) (httptransport.VoterResponse, error) {
	voter, err := h.Voters.ResolveVoter(ctx, electionID, identity)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{
		VoterID:    voter.VoterID,
		ElectionID: voter.ElectionID,
		Weight:     voter.Weight,
	}, nil
}

func (h Handler) HasVotedHandler(ctx context.Context, electionID string, identity string) (httptransport.HasVotedResponse, error) {
	voted, err := h.HasVoted.HasVoted(ctx, electionID, identity)
	if err != nil {
		return httptransport.HasVotedResponse{}, err
	}
	return httptransport.HasVotedResponse{HasVoted: voted}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	electionID string,
	identity string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteRecordResponse, error) {
	record, err := h.CastVote.CastVote(ctx, commands.CastVoteCommand{
		ElectionID: electionID,
		SessionID:  req.SessionID,
		ItemID:     req.ItemID,
		OptionID:   req.OptionID,
		Identity:   identity,
	})
	if err != nil {
		return httptransport.VoteRecordResponse{}, err
	}
	return httptransport.VoteRecordFromEntity(record), nil
}

func (h Handler) MyVotesHandler(ctx context.Context, electionID string, identity string) (httptransport.VoteRecordListResponse, error) {
	records, err := h.MyVotes.ListMyVotes(ctx, electionID, identity)
	if err != nil {
		return httptransport.VoteRecordListResponse{}, err
	}
	items := make([]httptransport.VoteRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, httptransport.VoteRecordFromEntity(record))
	}
	return httptransport.VoteRecordListResponse{Items: items}, nil
}
