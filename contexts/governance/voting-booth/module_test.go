package votingbooth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	votingbooth "agora/contexts/governance/voting-booth"
	"agora/contexts/governance/voting-booth/domain/entities"
	"agora/contexts/governance/voting-booth/ports"

	"go.uber.org/goleak"
)

type notificationLog struct {
	mu    sync.Mutex
	kinds []ports.NotificationKind
}

func (n *notificationLog) Notify(_ context.Context, notification ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, notification.Kind)
}

func officersSession(id string, status entities.Status) entities.ElectionSession {
	return entities.ElectionSession{
		SessionID:  id,
		ElectionID: "agm",
		Status:     status,
		Items: []entities.VotingItem{
			{
				ItemID:  id + "-chair",
				Kind:    entities.ItemKindPosition,
				Options: []entities.VotingOption{{OptionID: "okafor"}, {OptionID: "lindqvist"}},
			},
			{
				ItemID:        id + "-board",
				Kind:          entities.ItemKindMulti,
				MaxSelections: 2,
				Options:       []entities.VotingOption{{OptionID: "tanaka"}, {OptionID: "moreau"}, {OptionID: "silva"}},
			},
		},
	}
}

func TestBoothLifecycleAcrossSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	module := votingbooth.NewInMemoryModule(nil)
	module.Store.PutElection(entities.Election{ElectionID: "agm", Status: entities.StatusOngoing})
	module.Store.PutSession(officersSession("s1", entities.StatusOngoing))
	module.Store.PutSession(officersSession("s2", entities.StatusUpcoming))
	module.Store.PutVoter(entities.Voter{VoterID: "voter-7", ElectionID: "agm", Identity: "member-7", Weight: 2})

	notes := &notificationLog{}
	booth := module.NewBooth("agm", "member-7", module.Gateway, notes)
	ctx := context.Background()
	if err := booth.Enter(ctx); err != nil {
		t.Fatalf("enter: %v", err)
	}

	if err := booth.SelectSingle("s1-chair", "okafor"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := booth.ToggleMulti("s1-board", entities.Abstain); err != nil {
		t.Fatalf("abstain: %v", err)
	}
	result, err := booth.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Committed != 1 || result.Records[0].Weight != 2 {
		t.Fatalf("abstain must not be written and weight must follow the voter: %+v", result)
	}

	if err := module.Store.SetSessionStatus("s1", entities.StatusPast); err != nil {
		t.Fatalf("close s1: %v", err)
	}
	if err := module.Store.SetSessionStatus("s2", entities.StatusOngoing); err != nil {
		t.Fatalf("open s2: %v", err)
	}

	loop := module.NewWatchLoop(booth, module.Gateway, 5*time.Millisecond)
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- loop.Run(loopCtx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		state := booth.State()
		if state.Session != nil && state.Session.SessionID == "s2" {
			if state.Phase != entities.PhaseVoting || state.HasVoted {
				t.Fatalf("s2 must open a fresh ballot, got %+v", state)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watch loop never switched to s2, phase=%s", state.Phase)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch loop: %v", err)
	}

	voted, err := module.Gateway.HasVoted(ctx, "agm", "member-7")
	if err != nil || voted {
		t.Fatalf("has voted must be false in s2, got %v err=%v", voted, err)
	}
	records, err := module.Handler.MyVotes.ListMyVotes(ctx, "agm", "member-7")
	if err != nil || len(records) != 1 || records[0].SessionID != "s1" {
		t.Fatalf("s1 record must stay readable, got %+v err=%v", records, err)
	}
}
