package ports

import (
	"context"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	contractsv1 "agora/contracts/gen/events/v1"
)

// SessionRegistry is the authoritative store of elections, sessions, voters
// and vote records. This module only queries it and inserts vote records.
type SessionRegistry interface {
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListSessionsByStatus(ctx context.Context, electionID string, status entities.Status) ([]entities.ElectionSession, error)
	GetSession(ctx context.Context, sessionID string) (entities.ElectionSession, error)
	GetVoterByIdentity(ctx context.Context, electionID string, identity string) (entities.Voter, bool, error)
	CreateVoteRecord(ctx context.Context, record entities.VoteRecord, grants []entities.Permission) error
	CountVoteRecords(ctx context.Context, voterID string, sessionID string) (int, error)
	ListVoteRecordsReadableBy(ctx context.Context, electionID string, principal string) ([]entities.VoteRecord, error)
}

// CastVoteRequest carries the castVote call shape. The voter is identified
// by identity only; the server derives the voter record itself.
type CastVoteRequest struct {
	ElectionID string
	SessionID  string
	ItemID     string
	OptionID   string
	Identity   string
}

// VotingGateway is the request/response surface a booth client talks to.
type VotingGateway interface {
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	FindActiveSession(ctx context.Context, electionID string) (entities.ElectionSession, bool, error)
	ResolveVoter(ctx context.Context, electionID string, identity string) (entities.Voter, error)
	HasVoted(ctx context.Context, electionID string, identity string) (bool, error)
	CastVote(ctx context.Context, request CastVoteRequest) (entities.VoteRecord, error)
}

// ActiveSessionFinder is the lookup the watch loop polls.
type ActiveSessionFinder interface {
	FindActiveSession(ctx context.Context, electionID string) (entities.ElectionSession, bool, error)
}

type NotificationKind string

const (
	NotificationEntered          NotificationKind = "entered"
	NotificationSessionChanged   NotificationKind = "session_changed"
	NotificationSessionDeferred  NotificationKind = "session_change_deferred"
	NotificationLookupFailed     NotificationKind = "lookup_failed"
	NotificationSubmitted        NotificationKind = "submitted"
	NotificationSubmissionFailed NotificationKind = "submission_failed"
)

// Notification is delivered to the presentation layer after a state
// transition or a non-fatal failure.
type Notification struct {
	Kind  NotificationKind
	State entities.ClientState
	Err   error
	At    time.Time
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification)
}

// Metrics records operational counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	VoteRecordCast(electionID string)
	VoteCastRejected(reason string)
	SubmissionFinished(outcome string)
	SessionPolled(result string)
	SessionChanged()
	MultipleOngoingSessions(electionID string)
}

type NopMetrics struct{}

func (NopMetrics) VoteRecordCast(string)          {}
func (NopMetrics) VoteCastRejected(string)        {}
func (NopMetrics) SubmissionFinished(string)      {}
func (NopMetrics) SessionPolled(string)           {}
func (NopMetrics) SessionChanged()                {}
func (NopMetrics) MultipleOngoingSessions(string) {}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
