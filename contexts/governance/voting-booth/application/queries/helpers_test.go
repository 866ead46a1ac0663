package queries

import (
	"context"
	"sync"

	"agora/contexts/governance/voting-booth/adapters/memory"
	"agora/contexts/governance/voting-booth/domain/entities"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.PutElection(entities.Election{ElectionID: "election-1", Name: "Annual", Status: entities.StatusOngoing})
	store.PutSession(entities.ElectionSession{
		SessionID:  "session-b",
		ElectionID: "election-1",
		Status:     entities.StatusOngoing,
		Items: []entities.VotingItem{{
			ItemID:  "chair",
			Kind:    entities.ItemKindPosition,
			Options: []entities.VotingOption{{OptionID: "alice"}},
		}},
	})
	store.PutVoter(entities.Voter{VoterID: "voter-1", ElectionID: "election-1", Identity: "user-1", Weight: 2})
	return store
}

// faultyRegistry fails or stalls the ongoing-session listing.
type faultyRegistry struct {
	*memory.Store
	listErr error
	block   bool
}

func (r faultyRegistry) ListSessionsByStatus(ctx context.Context, electionID string, status entities.Status) ([]entities.ElectionSession, error) {
	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.Store.ListSessionsByStatus(ctx, electionID, status)
}

type countingMetrics struct {
	mu       sync.Mutex
	multiple int
}

func (m *countingMetrics) VoteRecordCast(string)     {}
func (m *countingMetrics) VoteCastRejected(string)   {}
func (m *countingMetrics) SubmissionFinished(string) {}
func (m *countingMetrics) SessionPolled(string)      {}
func (m *countingMetrics) SessionChanged()           {}
func (m *countingMetrics) MultipleOngoingSessions(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multiple++
}
