package entities

import "time"

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusPast     Status = "past"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusPast:
		return true
	default:
		return false
	}
}

type ItemKind string

const (
	ItemKindPosition ItemKind = "position"
	ItemKindMulti    ItemKind = "multi"
)

// Abstain is the selection sentinel meaning "decline to choose". It is never
// a real option id and is never persisted as a vote record.
const Abstain = "abstain"

type Election struct {
	ElectionID  string
	OwnerID     string
	Name        string
	Description string
	Status      Status
	Date        time.Time
}

type ElectionSession struct {
	SessionID   string
	ElectionID  string
	Name        string
	Description string
	Status      Status
	Items       []VotingItem
}

// SameIdentity reports whether two sessions denote the same registry entity.
func (s ElectionSession) SameIdentity(other ElectionSession) bool {
	return s.SessionID == other.SessionID
}

func (s ElectionSession) Item(itemID string) (VotingItem, bool) {
	for _, item := range s.Items {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return VotingItem{}, false
}

type VotingItem struct {
	ItemID        string
	Title         string
	Kind          ItemKind
	MaxSelections int
	Options       []VotingOption
}

// RequiredSelections is the number of real options that complete the item.
func (i VotingItem) RequiredSelections() int {
	if i.Kind == ItemKindPosition || i.MaxSelections < 1 {
		return 1
	}
	return i.MaxSelections
}

func (i VotingItem) HasOption(optionID string) bool {
	for _, option := range i.Options {
		if option.OptionID == optionID {
			return true
		}
	}
	return false
}

type VotingOption struct {
	OptionID    string
	Value       string
	Description string
}

type Voter struct {
	VoterID    string
	ElectionID string
	Identity   string
	Weight     float64
}

type VoteRecord struct {
	RecordID   string
	VoterID    string
	ElectionID string
	SessionID  string
	ItemID     string
	OptionID   string
	Weight     float64
	CastAt     time.Time
}

type PermissionAction string

const (
	PermissionRead   PermissionAction = "read"
	PermissionDelete PermissionAction = "delete"
)

type Permission struct {
	Principal string
	Action    PermissionAction
}

func VoterPrincipal(voterID string) string {
	return "voter:" + voterID
}

func ElectionOwnerPrincipal(electionID string) string {
	return "election-owner:" + electionID
}

// VoteRecordPermissions grants read and delete to the casting voter and read
// to the election's owning authority. No other principal is granted access.
func VoteRecordPermissions(voterID string, electionID string) []Permission {
	voter := VoterPrincipal(voterID)
	return []Permission{
		{Principal: voter, Action: PermissionRead},
		{Principal: voter, Action: PermissionDelete},
		{Principal: ElectionOwnerPrincipal(electionID), Action: PermissionRead},
	}
}
