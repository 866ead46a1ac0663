package commands

import (
	"context"
	"fmt"
	"sync"

	"agora/contexts/governance/voting-booth/adapters/memory"
	"agora/contexts/governance/voting-booth/domain/entities"
	"agora/contexts/governance/voting-booth/ports"
)

func boardSession() entities.ElectionSession {
	return entities.ElectionSession{
		SessionID:  "session-1",
		ElectionID: "election-1",
		Status:     entities.StatusOngoing,
		Items: []entities.VotingItem{
			{
				ItemID:  "chair",
				Kind:    entities.ItemKindPosition,
				Options: []entities.VotingOption{{OptionID: "alice"}, {OptionID: "bob"}},
			},
			{
				ItemID:        "board",
				Kind:          entities.ItemKindMulti,
				MaxSelections: 2,
				Options:       []entities.VotingOption{{OptionID: "carol"}, {OptionID: "dave"}, {OptionID: "erin"}},
			},
			{
				ItemID:        "auditors",
				Kind:          entities.ItemKindMulti,
				MaxSelections: 2,
				Options:       []entities.VotingOption{{OptionID: "frank"}, {OptionID: "grace"}},
			},
		},
	}
}

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.PutElection(entities.Election{ElectionID: "election-1", Status: entities.StatusOngoing})
	store.PutSession(boardSession())
	store.PutVoter(entities.Voter{VoterID: "voter-1", ElectionID: "election-1", Identity: "user-1", Weight: 3})
	return store
}

// scriptedGateway records castVote calls and fails the call numbered failAt
// (1-based). Zero never fails.
type scriptedGateway struct {
	mu       sync.Mutex
	voter    entities.Voter
	voterErr error
	failAt   int
	failErr  error
	calls    []ports.CastVoteRequest
	resolved int
}

func (g *scriptedGateway) GetElection(context.Context, string) (entities.Election, error) {
	return entities.Election{ElectionID: "election-1"}, nil
}

func (g *scriptedGateway) FindActiveSession(context.Context, string) (entities.ElectionSession, bool, error) {
	return boardSession(), true, nil
}

func (g *scriptedGateway) ResolveVoter(context.Context, string, string) (entities.Voter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved++
	return g.voter, g.voterErr
}

func (g *scriptedGateway) HasVoted(context.Context, string, string) (bool, error) {
	return false, nil
}

func (g *scriptedGateway) CastVote(_ context.Context, request ports.CastVoteRequest) (entities.VoteRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, request)
	if g.failAt > 0 && len(g.calls) == g.failAt {
		return entities.VoteRecord{}, g.failErr
	}
	return entities.VoteRecord{
		RecordID:  fmt.Sprintf("record-%d", len(g.calls)),
		VoterID:   g.voter.VoterID,
		SessionID: request.SessionID,
		ItemID:    request.ItemID,
		OptionID:  request.OptionID,
		Weight:    g.voter.Weight,
	}, nil
}

type failingOutbox struct{}

func (failingOutbox) AppendOutbox(context.Context, ports.EventEnvelope) error {
	return fmt.Errorf("outbox unavailable")
}
