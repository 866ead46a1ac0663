package entities

import (
	"errors"
	"reflect"
	"testing"

	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
)

func testSession() ElectionSession {
	return ElectionSession{
		SessionID:  "session-1",
		ElectionID: "election-1",
		Name:       "Board",
		Status:     StatusOngoing,
		Items: []VotingItem{
			{
				ItemID:        "chair",
				Title:         "Chair",
				Kind:          ItemKindPosition,
				MaxSelections: 1,
				Options: []VotingOption{
					{OptionID: "alice", Value: "Alice"},
					{OptionID: "bob", Value: "Bob"},
				},
			},
			{
				ItemID:        "board",
				Title:         "Board seats",
				Kind:          ItemKindMulti,
				MaxSelections: 2,
				Options: []VotingOption{
					{OptionID: "carol", Value: "Carol"},
					{OptionID: "dave", Value: "Dave"},
					{OptionID: "erin", Value: "Erin"},
				},
			},
		},
	}
}

func TestBallotSelectSingleReplacesSelection(t *testing.T) {
	ballot := NewBallot(testSession())
	if err := ballot.SelectSingle("chair", "alice"); err != nil {
		t.Fatalf("select alice: %v", err)
	}
	if err := ballot.SelectSingle("chair", "bob"); err != nil {
		t.Fatalf("select bob: %v", err)
	}
	if got := ballot.Selections("chair"); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Fatalf("expected [bob], got %v", got)
	}
	if !ballot.IsComplete("chair") {
		t.Fatalf("expected chair to be complete")
	}
}

func TestBallotSelectSingleRejections(t *testing.T) {
	ballot := NewBallot(testSession())
	cases := []struct {
		name   string
		item   string
		option string
		want   error
	}{
		{name: "unknown item", item: "treasurer", option: "alice", want: domainerrors.ErrItemNotFound},
		{name: "multi item", item: "board", option: "carol", want: domainerrors.ErrItemKindMismatch},
		{name: "abstain on position", item: "chair", option: Abstain, want: domainerrors.ErrAbstainNotAllowed},
		{name: "unknown option", item: "chair", option: "zed", want: domainerrors.ErrOptionNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ballot.SelectSingle(tc.item, tc.option); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if got := ballot.Selections("chair"); got != nil {
		t.Fatalf("rejected selections must not change the ballot, got %v", got)
	}
}

func TestBallotToggleMultiRespectsMaximum(t *testing.T) {
	ballot := NewBallot(testSession())
	for _, option := range []string{"carol", "dave"} {
		if err := ballot.ToggleMulti("board", option); err != nil {
			t.Fatalf("toggle %s: %v", option, err)
		}
	}
	if err := ballot.ToggleMulti("board", "erin"); !errors.Is(err, domainerrors.ErrMaxSelectionsExceeded) {
		t.Fatalf("expected max selections error, got %v", err)
	}
	if got := ballot.Selections("board"); !reflect.DeepEqual(got, []string{"carol", "dave"}) {
		t.Fatalf("over-limit toggle must leave selection unchanged, got %v", got)
	}
	if !ballot.IsComplete("board") {
		t.Fatalf("expected board complete with two selections")
	}

	if err := ballot.ToggleMulti("board", "carol"); err != nil {
		t.Fatalf("toggle carol off: %v", err)
	}
	if got := ballot.Selections("board"); !reflect.DeepEqual(got, []string{"dave"}) {
		t.Fatalf("expected [dave], got %v", got)
	}
	if ballot.IsComplete("board") {
		t.Fatalf("one of two selections must not be complete")
	}
}

func TestBallotAbstainIsExclusive(t *testing.T) {
	ballot := NewBallot(testSession())
	if err := ballot.ToggleMulti("board", "carol"); err != nil {
		t.Fatalf("toggle carol: %v", err)
	}
	if err := ballot.ToggleMulti("board", Abstain); err != nil {
		t.Fatalf("toggle abstain: %v", err)
	}
	if got := ballot.Selections("board"); !reflect.DeepEqual(got, []string{Abstain}) {
		t.Fatalf("abstain must replace real options, got %v", got)
	}
	if !ballot.IsComplete("board") {
		t.Fatalf("abstain completes an item")
	}

	if err := ballot.ToggleMulti("board", "dave"); err != nil {
		t.Fatalf("toggle dave: %v", err)
	}
	if got := ballot.Selections("board"); !reflect.DeepEqual(got, []string{"dave"}) {
		t.Fatalf("a real option must clear abstain, got %v", got)
	}

	if err := ballot.ToggleMulti("board", Abstain); err != nil {
		t.Fatalf("toggle abstain: %v", err)
	}
	if err := ballot.ToggleMulti("board", Abstain); err != nil {
		t.Fatalf("toggle abstain off: %v", err)
	}
	if got := ballot.Selections("board"); got != nil {
		t.Fatalf("second abstain toggle must clear the item, got %v", got)
	}
}

func TestBallotCompletenessAndWrites(t *testing.T) {
	ballot := NewBallot(testSession())
	if got := ballot.IncompleteItems(); !reflect.DeepEqual(got, []string{"chair", "board"}) {
		t.Fatalf("expected both items incomplete in session order, got %v", got)
	}
	if err := ballot.SelectSingle("chair", "alice"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if ballot.IsBallotComplete() {
		t.Fatalf("ballot with an open multi item must be incomplete")
	}
	if err := ballot.ToggleMulti("board", Abstain); err != nil {
		t.Fatalf("abstain: %v", err)
	}
	if !ballot.IsBallotComplete() {
		t.Fatalf("expected complete ballot, missing %v", ballot.IncompleteItems())
	}

	want := []Selection{{ItemID: "chair", OptionID: "alice"}}
	if got := ballot.SelectedOptions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("abstain must not produce writes: got %v want %v", got, want)
	}
}

func TestBallotCloneIsIndependent(t *testing.T) {
	ballot := NewBallot(testSession())
	if err := ballot.SelectSingle("chair", "alice"); err != nil {
		t.Fatalf("select: %v", err)
	}
	cloned := ballot.Clone()
	if err := ballot.SelectSingle("chair", "bob"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := cloned.Selections("chair"); !reflect.DeepEqual(got, []string{"alice"}) {
		t.Fatalf("clone changed with original: %v", got)
	}
	var nilBallot *Ballot
	if nilBallot.Clone() != nil {
		t.Fatalf("clone of nil ballot must be nil")
	}
}
