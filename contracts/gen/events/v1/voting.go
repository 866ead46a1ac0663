package v1

import "time"

const (
	TopicVoteRecordCreated = "vote_record.created"
)

// VoteRecordCreated is published once per persisted vote record. It carries
// identifiers and weight for downstream tallying and nothing about other
// selections of the same voter.
type VoteRecordCreated struct {
	RecordID   string    `json:"record_id"`
	ElectionID string    `json:"election_id"`
	SessionID  string    `json:"session_id"`
	ItemID     string    `json:"item_id"`
	OptionID   string    `json:"option_id"`
	VoterID    string    `json:"voter_id"`
	Weight     float64   `json:"weight"`
	CastAt     time.Time `json:"cast_at"`
}
