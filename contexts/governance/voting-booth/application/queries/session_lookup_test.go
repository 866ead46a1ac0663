package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
)

func TestFindActiveSessionReturnsOngoing(t *testing.T) {
	lookup := SessionLookup{Registry: seededStore()}
	session, found, err := lookup.FindActiveSession(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !found || session.SessionID != "session-b" {
		t.Fatalf("expected session-b, got found=%v %+v", found, session)
	}
}

func TestFindActiveSessionNoneIsNotAnError(t *testing.T) {
	store := seededStore()
	if err := store.SetSessionStatus("session-b", entities.StatusPast); err != nil {
		t.Fatalf("close session: %v", err)
	}
	_, found, err := SessionLookup{Registry: store}.FindActiveSession(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if found {
		t.Fatalf("expected no active session")
	}
}

func TestFindActiveSessionMultipleOngoingPicksLowestID(t *testing.T) {
	store := seededStore()
	store.PutSession(entities.ElectionSession{SessionID: "session-a", ElectionID: "election-1", Status: entities.StatusOngoing})
	store.PutSession(entities.ElectionSession{SessionID: "session-c", ElectionID: "election-1", Status: entities.StatusOngoing})
	metrics := &countingMetrics{}

	session, found, err := SessionLookup{Registry: store, Metrics: metrics}.FindActiveSession(context.Background(), "election-1")
	if err != nil || !found {
		t.Fatalf("lookup failed: found=%v err=%v", found, err)
	}
	if session.SessionID != "session-a" {
		t.Fatalf("expected lowest id session-a, got %s", session.SessionID)
	}
	if metrics.multiple != 1 {
		t.Fatalf("expected anomaly to be counted once, got %d", metrics.multiple)
	}
}

func TestFindActiveSessionTransportFaultIsDistinctFromNone(t *testing.T) {
	registry := faultyRegistry{Store: seededStore(), listErr: errors.New("connection refused")}
	_, found, err := SessionLookup{Registry: registry}.FindActiveSession(context.Background(), "election-1")
	if !errors.Is(err, domainerrors.ErrTransportFailure) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if found {
		t.Fatalf("a failed lookup must not report a session")
	}
}

func TestFindActiveSessionTimesOut(t *testing.T) {
	registry := faultyRegistry{Store: seededStore(), block: true}
	started := time.Now()
	_, _, err := SessionLookup{Registry: registry, Timeout: 20 * time.Millisecond}.FindActiveSession(context.Background(), "election-1")
	if !errors.Is(err, domainerrors.ErrTransportFailure) {
		t.Fatalf("expected transport failure on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("lookup was not bounded by its timeout: %s", elapsed)
	}
}

func TestFindActiveSessionUnknownElection(t *testing.T) {
	_, _, err := SessionLookup{Registry: seededStore()}.FindActiveSession(context.Background(), "election-x")
	if !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected election not found, got %v", err)
	}
}
