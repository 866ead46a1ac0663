package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type voteKey struct {
	voterID   string
	sessionID string
	itemID    string
	optionID  string
}

// Store is an in-memory session registry used by tests and local runs.
type Store struct {
	mu sync.RWMutex

	elections map[string]entities.Election
	sessions  map[string]entities.ElectionSession
	voters    map[string]entities.Voter
	records   map[string]entities.VoteRecord
	recordKey map[voteKey]string
	grants    map[string][]entities.Permission
	outbox    map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		elections: make(map[string]entities.Election),
		sessions:  make(map[string]entities.ElectionSession),
		voters:    make(map[string]entities.Voter),
		records:   make(map[string]entities.VoteRecord),
		recordKey: make(map[voteKey]string),
		grants:    make(map[string][]entities.Permission),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) PutElection(election entities.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) PutSession(session entities.ElectionSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[strings.TrimSpace(session.SessionID)] = session
}

// SetSessionStatus stands in for the external committee advancing a session.
func (s *Store) SetSessionStatus(sessionID string, status entities.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	session.Status = status
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) PutVoter(voter entities.Voter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[voterIndex(voter.ElectionID, voter.Identity)] = voter
}

func (s *Store) RemoveVoter(electionID string, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voters, voterIndex(electionID, identity))
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ListSessionsByStatus(_ context.Context, electionID string, status entities.Status) ([]entities.ElectionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	electionID = strings.TrimSpace(electionID)
	if _, ok := s.elections[electionID]; !ok {
		return nil, domainerrors.ErrElectionNotFound
	}
	var out []entities.ElectionSession
	for _, session := range s.sessions {
		if session.ElectionID == electionID && session.Status == status {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionID < out[j].SessionID
	})
	return out, nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.ElectionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.ElectionSession{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) GetVoterByIdentity(_ context.Context, electionID string, identity string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[voterIndex(electionID, identity)]
	return voter, ok, nil
}

func (s *Store) CreateVoteRecord(_ context.Context, record entities.VoteRecord, grants []entities.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey{
		voterID:   record.VoterID,
		sessionID: record.SessionID,
		itemID:    record.ItemID,
		optionID:  record.OptionID,
	}
	if _, exists := s.recordKey[key]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.records[record.RecordID] = record
	s.recordKey[key] = record.RecordID
	s.grants[record.RecordID] = append([]entities.Permission(nil), grants...)
	return nil
}

func (s *Store) CountVoteRecords(_ context.Context, voterID string, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.records {
		if record.VoterID == voterID && record.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListVoteRecordsReadableBy(_ context.Context, electionID string, principal string) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.VoteRecord
	for recordID, record := range s.records {
		if record.ElectionID != strings.TrimSpace(electionID) {
			continue
		}
		if hasGrant(s.grants[recordID], principal, entities.PermissionRead) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CastAt.Equal(out[j].CastAt) {
			return out[i].RecordID < out[j].RecordID
		}
		return out[i].CastAt.Before(out[j].CastAt)
	})
	return out, nil
}

// Grants exposes the permission grants stored with a record.
func (s *Store) Grants(recordID string) []entities.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Permission(nil), s.grants[recordID]...)
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrIdempotencyConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func voterIndex(electionID string, identity string) string {
	return strings.TrimSpace(electionID) + "\x00" + strings.TrimSpace(identity)
}

func hasGrant(grants []entities.Permission, principal string, action entities.PermissionAction) bool {
	for _, grant := range grants {
		if grant.Principal == principal && grant.Action == action {
			return true
		}
	}
	return false
}

var (
	_ ports.SessionRegistry  = (*Store)(nil)
	_ ports.OutboxWriter     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
