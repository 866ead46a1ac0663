package entities

import (
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
)

// Ballot holds a voter's unsubmitted selections for one session. It lives
// only in memory and is discarded when the active session changes.
type Ballot struct {
	session    ElectionSession
	selections map[string][]string
}

// Selection is one non-abstain option chosen for an item.
type Selection struct {
	ItemID   string
	OptionID string
}

func NewBallot(session ElectionSession) *Ballot {
	return &Ballot{
		session:    session,
		selections: make(map[string][]string, len(session.Items)),
	}
}

func (b *Ballot) SessionID() string {
	return b.session.SessionID
}

func (b *Ballot) Session() ElectionSession {
	return b.session
}

// SelectSingle replaces the selection of a position item with exactly optionID.
func (b *Ballot) SelectSingle(itemID string, optionID string) error {
	item, ok := b.session.Item(itemID)
	if !ok {
		return domainerrors.ErrItemNotFound
	}
	if item.Kind != ItemKindPosition {
		return domainerrors.ErrItemKindMismatch
	}
	if optionID == Abstain {
		return domainerrors.ErrAbstainNotAllowed
	}
	if !item.HasOption(optionID) {
		return domainerrors.ErrOptionNotFound
	}
	b.selections[itemID] = []string{optionID}
	return nil
}

// ToggleMulti flips optionID on a multi item. Abstain is exclusive with real
// options. A toggle that would exceed the item's maximum is rejected and the
// selection is left unchanged.
func (b *Ballot) ToggleMulti(itemID string, optionID string) error {
	item, ok := b.session.Item(itemID)
	if !ok {
		return domainerrors.ErrItemNotFound
	}
	if item.Kind != ItemKindMulti {
		return domainerrors.ErrItemKindMismatch
	}

	current := b.selections[itemID]
	if optionID == Abstain {
		if isAbstain(current) {
			delete(b.selections, itemID)
			return nil
		}
		b.selections[itemID] = []string{Abstain}
		return nil
	}
	if !item.HasOption(optionID) {
		return domainerrors.ErrOptionNotFound
	}

	next := make([]string, 0, len(current)+1)
	removed := false
	for _, selected := range current {
		if selected == Abstain {
			continue
		}
		if selected == optionID {
			removed = true
			continue
		}
		next = append(next, selected)
	}
	if !removed {
		next = append(next, optionID)
	}
	if len(next) > item.RequiredSelections() {
		return domainerrors.ErrMaxSelectionsExceeded
	}
	if len(next) == 0 {
		delete(b.selections, itemID)
		return nil
	}
	b.selections[itemID] = next
	return nil
}

// Selections returns a copy of the current selection list for itemID.
func (b *Ballot) Selections(itemID string) []string {
	current := b.selections[itemID]
	if len(current) == 0 {
		return nil
	}
	return append([]string(nil), current...)
}

func (b *Ballot) IsComplete(itemID string) bool {
	item, ok := b.session.Item(itemID)
	if !ok {
		return false
	}
	current := b.selections[itemID]
	if isAbstain(current) {
		return true
	}
	return len(current) == item.RequiredSelections()
}

func (b *Ballot) IsBallotComplete() bool {
	return len(b.IncompleteItems()) == 0
}

// IncompleteItems lists item ids that are not complete, in session order.
func (b *Ballot) IncompleteItems() []string {
	var incomplete []string
	for _, item := range b.session.Items {
		if !b.IsComplete(item.ItemID) {
			incomplete = append(incomplete, item.ItemID)
		}
	}
	return incomplete
}

// SelectedOptions flattens the ballot into the writes a submission performs:
// items in session order, options in selection order, abstain excluded.
func (b *Ballot) SelectedOptions() []Selection {
	var out []Selection
	for _, item := range b.session.Items {
		for _, optionID := range b.selections[item.ItemID] {
			if optionID == Abstain {
				continue
			}
			out = append(out, Selection{ItemID: item.ItemID, OptionID: optionID})
		}
	}
	return out
}

func (b *Ballot) Clone() *Ballot {
	if b == nil {
		return nil
	}
	cloned := NewBallot(b.session)
	for itemID, selected := range b.selections {
		cloned.selections[itemID] = append([]string(nil), selected...)
	}
	return cloned
}

func isAbstain(selected []string) bool {
	return len(selected) == 1 && selected[0] == Abstain
}
