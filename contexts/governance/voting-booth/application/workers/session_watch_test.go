package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"

	"go.uber.org/goleak"
)

type fakeFinder struct {
	mu      sync.Mutex
	session *entities.ElectionSession
	err     error
	calls   int
}

func (f *fakeFinder) FindActiveSession(context.Context, string) (entities.ElectionSession, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return entities.ElectionSession{}, false, f.err
	}
	if f.session == nil {
		return entities.ElectionSession{}, false, nil
	}
	return *f.session, true, nil
}

func (f *fakeFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeObserver struct {
	mu       sync.Mutex
	phase    entities.Phase
	enterErr error
	entered  int
	observed []*entities.ElectionSession
	failures []error
}

func (o *fakeObserver) ElectionID() string { return "election-1" }

func (o *fakeObserver) Phase() entities.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *fakeObserver) Enter(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entered++
	if o.enterErr != nil {
		return o.enterErr
	}
	o.phase = entities.PhaseWaiting
	return nil
}

func (o *fakeObserver) Observe(_ context.Context, observed *entities.ElectionSession) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, observed)
}

func (o *fakeObserver) ObserveFailure(_ context.Context, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func TestRunOnceReportsObservedSession(t *testing.T) {
	session := entities.ElectionSession{SessionID: "session-1"}
	finder := &fakeFinder{session: &session}
	observer := &fakeObserver{phase: entities.PhaseVoting}
	loop := SessionWatchLoop{Sessions: finder, Observer: observer}

	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	finder.session = nil
	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(observer.observed) != 2 {
		t.Fatalf("expected two observations, got %d", len(observer.observed))
	}
	if observer.observed[0] == nil || observer.observed[0].SessionID != "session-1" {
		t.Fatalf("expected session-1 first, got %+v", observer.observed[0])
	}
	if observer.observed[1] != nil {
		t.Fatalf("no ongoing session must be observed as nil")
	}
}

func TestRunOnceLookupFailureIsNotAnObservation(t *testing.T) {
	finder := &fakeFinder{err: domainerrors.ErrTransportFailure}
	observer := &fakeObserver{phase: entities.PhaseVoting}
	err := SessionWatchLoop{Sessions: finder, Observer: observer}.RunOnce(context.Background())
	if !errors.Is(err, domainerrors.ErrTransportFailure) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if len(observer.observed) != 0 {
		t.Fatalf("a failed poll must never be treated as no session")
	}
	if len(observer.failures) != 1 {
		t.Fatalf("expected the failure to be surfaced once, got %d", len(observer.failures))
	}
}

func TestRunOnceRetriesEntry(t *testing.T) {
	finder := &fakeFinder{}
	observer := &fakeObserver{phase: entities.PhaseUninitialized, enterErr: domainerrors.ErrTransportFailure}
	loop := SessionWatchLoop{Sessions: finder, Observer: observer}

	if err := loop.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected entry failure")
	}
	observer.enterErr = nil
	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("entry retry: %v", err)
	}
	if observer.entered != 2 || observer.Phase() != entities.PhaseWaiting {
		t.Fatalf("expected two entry attempts ending in waiting, got %d %s", observer.entered, observer.Phase())
	}
	if finder.callCount() != 0 {
		t.Fatalf("no session poll may run before entry succeeds")
	}
}

func TestRunStopsOnCancelWithoutLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	session := entities.ElectionSession{SessionID: "session-1"}
	finder := &fakeFinder{session: &session}
	observer := &fakeObserver{phase: entities.PhaseVoting}
	loop := SessionWatchLoop{Sessions: finder, Observer: observer, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for finder.callCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("loop did not poll, calls=%d", finder.callCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop after cancel")
	}
}
