package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
	"agora/internal/platform/db"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	repo := NewRepository(database.DB, nil)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	if err := repo.SaveElection(ctx, entities.Election{
		ElectionID: "election-1",
		OwnerID:    "owner-1",
		Name:       "Annual meeting",
		Status:     entities.StatusOngoing,
		Date:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("save election: %v", err)
	}
	if err := repo.SaveSession(ctx, entities.ElectionSession{
		SessionID:  "session-1",
		ElectionID: "election-1",
		Name:       "Morning",
		Status:     entities.StatusOngoing,
		Items: []entities.VotingItem{
			{
				ItemID:        "chair",
				Title:         "Chair",
				Kind:          entities.ItemKindPosition,
				MaxSelections: 1,
				Options: []entities.VotingOption{
					{OptionID: "chair-bob", Value: "Bob"},
					{OptionID: "chair-alice", Value: "Alice"},
				},
			},
			{
				ItemID:        "board",
				Title:         "Board",
				Kind:          entities.ItemKindMulti,
				MaxSelections: 2,
				Options: []entities.VotingOption{
					{OptionID: "board-carol", Value: "Carol"},
					{OptionID: "board-dave", Value: "Dave"},
				},
			},
		},
	}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if err := repo.SaveVoter(ctx, entities.Voter{VoterID: "voter-1", ElectionID: "election-1", Identity: "user-1", Weight: 2.5}); err != nil {
		t.Fatalf("save voter: %v", err)
	}
	return repo
}

func TestRepositorySessionRoundTripKeepsOrder(t *testing.T) {
	repo := newTestRepository(t)
	sessions, err := repo.ListSessionsByStatus(context.Background(), "election-1", entities.StatusOngoing)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one ongoing session, got %d", len(sessions))
	}
	session := sessions[0]
	if len(session.Items) != 2 || session.Items[0].ItemID != "chair" || session.Items[1].ItemID != "board" {
		t.Fatalf("items must keep display order, got %+v", session.Items)
	}
	if session.Items[0].Options[0].OptionID != "chair-bob" {
		t.Fatalf("options must keep display order, got %+v", session.Items[0].Options)
	}
	if session.Items[1].MaxSelections != 2 || session.Items[1].Kind != entities.ItemKindMulti {
		t.Fatalf("unexpected multi item %+v", session.Items[1])
	}

	if _, err := repo.ListSessionsByStatus(context.Background(), "missing", entities.StatusOngoing); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected election not found, got %v", err)
	}
	if _, err := repo.GetSession(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}

	if err := repo.SetSessionStatus(context.Background(), "session-1", entities.StatusPast); err != nil {
		t.Fatalf("set status: %v", err)
	}
	sessions, err = repo.ListSessionsByStatus(context.Background(), "election-1", entities.StatusOngoing)
	if err != nil || len(sessions) != 0 {
		t.Fatalf("expected no ongoing session, got %d err=%v", len(sessions), err)
	}
}

func TestRepositoryVoterLookup(t *testing.T) {
	repo := newTestRepository(t)
	voter, found, err := repo.GetVoterByIdentity(context.Background(), "election-1", "user-1")
	if err != nil || !found {
		t.Fatalf("expected voter, found=%v err=%v", found, err)
	}
	if voter.VoterID != "voter-1" || voter.Weight != 2.5 {
		t.Fatalf("unexpected voter %+v", voter)
	}
	if _, found, err := repo.GetVoterByIdentity(context.Background(), "election-1", "stranger"); err != nil || found {
		t.Fatalf("unknown identity must be not found without error, found=%v err=%v", found, err)
	}
}

func TestRepositoryVoteRecordsAndPermissions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	record := entities.VoteRecord{
		RecordID:   "record-1",
		VoterID:    "voter-1",
		ElectionID: "election-1",
		SessionID:  "session-1",
		ItemID:     "chair",
		OptionID:   "chair-alice",
		Weight:     2.5,
		CastAt:     time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateVoteRecord(ctx, record, entities.VoteRecordPermissions("voter-1", "election-1")); err != nil {
		t.Fatalf("create record: %v", err)
	}

	duplicate := record
	duplicate.RecordID = "record-2"
	if err := repo.CreateVoteRecord(ctx, duplicate, entities.VoteRecordPermissions("voter-1", "election-1")); !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote, got %v", err)
	}

	count, err := repo.CountVoteRecords(ctx, "voter-1", "session-1")
	if err != nil || count != 1 {
		t.Fatalf("expected one record, got %d err=%v", count, err)
	}

	mine, err := repo.ListVoteRecordsReadableBy(ctx, "election-1", entities.VoterPrincipal("voter-1"))
	if err != nil {
		t.Fatalf("list readable: %v", err)
	}
	if len(mine) != 1 || mine[0].RecordID != "record-1" || mine[0].Weight != 2.5 {
		t.Fatalf("voter must read own record, got %+v", mine)
	}
	owner, err := repo.ListVoteRecordsReadableBy(ctx, "election-1", entities.ElectionOwnerPrincipal("election-1"))
	if err != nil || len(owner) != 1 {
		t.Fatalf("election owner must read the record, got %d err=%v", len(owner), err)
	}
	other, err := repo.ListVoteRecordsReadableBy(ctx, "election-1", entities.VoterPrincipal("voter-2"))
	if err != nil || len(other) != 0 {
		t.Fatalf("other voters must not read the record, got %d err=%v", len(other), err)
	}
}

func TestRepositoryOutboxLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	envelope := ports.EventEnvelope{
		EventID:      "event-1",
		EventType:    "vote_record.created",
		OccurredAt:   time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		PartitionKey: "session-1",
		Data:         []byte(`{"record_id":"record-1"}`),
	}
	if err := repo.AppendOutbox(ctx, envelope); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.AppendOutbox(ctx, envelope); err != nil {
		t.Fatalf("identical append must be idempotent: %v", err)
	}
	changed := envelope
	changed.Data = []byte(`{"record_id":"record-9"}`)
	if err := repo.AppendOutbox(ctx, changed); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}

	pending, err := repo.ListPendingOutbox(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending row, got %d err=%v", len(pending), err)
	}
	if err := repo.MarkOutboxPublished(ctx, "event-1", time.Now().UTC()); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	pending, err = repo.ListPendingOutbox(ctx, 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d err=%v", len(pending), err)
	}
	if err := repo.MarkOutboxPublished(ctx, "missing", time.Now().UTC()); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected conflict for unknown row, got %v", err)
	}
}
