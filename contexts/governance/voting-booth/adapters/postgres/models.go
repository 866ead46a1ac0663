package postgresadapter

import (
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
)

type electionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	OwnerID     string    `gorm:"column:owner_id"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	Date        time.Time `gorm:"column:election_date"`
}

func (electionModel) TableName() string {
	return "elections"
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:  m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Status:      entities.Status(m.Status),
		Date:        m.Date.UTC(),
	}
}

type sessionModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	ElectionID  string `gorm:"column:election_id;index:idx_election_sessions_status"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	Status      string `gorm:"column:status;index:idx_election_sessions_status"`
}

func (sessionModel) TableName() string {
	return "election_sessions"
}

type itemModel struct {
	ID            string `gorm:"column:id;primaryKey"`
	SessionID     string `gorm:"column:session_id;index"`
	Position      int    `gorm:"column:position"`
	Title         string `gorm:"column:title"`
	Kind          string `gorm:"column:kind"`
	MaxSelections int    `gorm:"column:max_selections"`
}

func (itemModel) TableName() string {
	return "voting_items"
}

type optionModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	ItemID      string `gorm:"column:item_id;index"`
	Position    int    `gorm:"column:position"`
	Value       string `gorm:"column:value"`
	Description string `gorm:"column:description"`
}

func (optionModel) TableName() string {
	return "voting_options"
}

type voterModel struct {
	ID         string  `gorm:"column:id;primaryKey"`
	ElectionID string  `gorm:"column:election_id;uniqueIndex:uq_voters_election_identity"`
	Identity   string  `gorm:"column:identity;uniqueIndex:uq_voters_election_identity"`
	Weight     float64 `gorm:"column:vote_weight"`
}

func (voterModel) TableName() string {
	return "voters"
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		VoterID:    m.ID,
		ElectionID: m.ElectionID,
		Identity:   m.Identity,
		Weight:     m.Weight,
	}
}

type voteRecordModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	VoterID    string    `gorm:"column:voter_id;uniqueIndex:uq_vote_records_selection"`
	ElectionID string    `gorm:"column:election_id;index"`
	SessionID  string    `gorm:"column:session_id;uniqueIndex:uq_vote_records_selection"`
	ItemID     string    `gorm:"column:item_id;uniqueIndex:uq_vote_records_selection"`
	OptionID   string    `gorm:"column:option_id;uniqueIndex:uq_vote_records_selection"`
	Weight     float64   `gorm:"column:weight"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (voteRecordModel) TableName() string {
	return "vote_records"
}

func voteRecordModelFromEntity(record entities.VoteRecord) voteRecordModel {
	return voteRecordModel{
		ID:         record.RecordID,
		VoterID:    record.VoterID,
		ElectionID: record.ElectionID,
		SessionID:  record.SessionID,
		ItemID:     record.ItemID,
		OptionID:   record.OptionID,
		Weight:     record.Weight,
		CastAt:     record.CastAt.UTC(),
	}
}

func (m voteRecordModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		RecordID:   m.ID,
		VoterID:    m.VoterID,
		ElectionID: m.ElectionID,
		SessionID:  m.SessionID,
		ItemID:     m.ItemID,
		OptionID:   m.OptionID,
		Weight:     m.Weight,
		CastAt:     m.CastAt.UTC(),
	}
}

type permissionModel struct {
	RecordID  string `gorm:"column:record_id;primaryKey"`
	Principal string `gorm:"column:principal;primaryKey;index"`
	Action    string `gorm:"column:action;primaryKey"`
}

func (permissionModel) TableName() string {
	return "vote_record_permissions"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "voting_booth_outbox"
}

// Models lists every table the registry reads or writes, in dependency order.
func Models() []any {
	return []any{
		&electionModel{},
		&sessionModel{},
		&itemModel{},
		&optionModel{},
		&voterModel{},
		&voteRecordModel{},
		&permissionModel{},
		&outboxModel{},
	}
}
