package http

import (
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ElectionResponse struct {
	ElectionID  string    `json:"election_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

type VotingOptionDTO struct {
	OptionID    string `json:"option_id"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

type VotingItemDTO struct {
	ItemID        string            `json:"item_id"`
	Title         string            `json:"title"`
	Kind          string            `json:"kind"`
	MaxSelections int               `json:"max_selections"`
	Options       []VotingOptionDTO `json:"options"`
}

type SessionDTO struct {
	SessionID   string          `json:"session_id"`
	ElectionID  string          `json:"election_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	Items       []VotingItemDTO `json:"items"`
}

// ActiveSessionResponse carries a null session when nothing is ongoing.
type ActiveSessionResponse struct {
	Session *SessionDTO `json:"session"`
}

type VoterResponse struct {
	VoterID    string  `json:"voter_id"`
	ElectionID string  `json:"election_id"`
	Weight     float64 `json:"weight"`
}

type HasVotedResponse struct {
	HasVoted bool `json:"has_voted"`
}

type CastVoteRequest struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
	OptionID  string `json:"option_id"`
}

type VoteRecordResponse struct {
	RecordID   string    `json:"record_id"`
	VoterID    string    `json:"voter_id"`
	ElectionID string    `json:"election_id"`
	SessionID  string    `json:"session_id"`
	ItemID     string    `json:"item_id"`
	OptionID   string    `json:"option_id"`
	Weight     float64   `json:"weight"`
	CastAt     time.Time `json:"cast_at"`
}

type VoteRecordListResponse struct {
	Items []VoteRecordResponse `json:"items"`
}

func ElectionFromEntity(election entities.Election) ElectionResponse {
	return ElectionResponse{
		ElectionID:  election.ElectionID,
		Name:        election.Name,
		Description: election.Description,
		Status:      string(election.Status),
		Date:        election.Date,
	}
}

func (r ElectionResponse) ToEntity() entities.Election {
	return entities.Election{
		ElectionID:  r.ElectionID,
		Name:        r.Name,
		Description: r.Description,
		Status:      entities.Status(r.Status),
		Date:        r.Date,
	}
}

func SessionFromEntity(session entities.ElectionSession) SessionDTO {
	items := make([]VotingItemDTO, 0, len(session.Items))
	for _, item := range session.Items {
		options := make([]VotingOptionDTO, 0, len(item.Options))
		for _, option := range item.Options {
			options = append(options, VotingOptionDTO{
				OptionID:    option.OptionID,
				Value:       option.Value,
				Description: option.Description,
			})
		}
		items = append(items, VotingItemDTO{
			ItemID:        item.ItemID,
			Title:         item.Title,
			Kind:          string(item.Kind),
			MaxSelections: item.MaxSelections,
			Options:       options,
		})
	}
	return SessionDTO{
		SessionID:   session.SessionID,
		ElectionID:  session.ElectionID,
		Name:        session.Name,
		Description: session.Description,
		Status:      string(session.Status),
		Items:       items,
	}
}

func (s SessionDTO) ToEntity() entities.ElectionSession {
	items := make([]entities.VotingItem, 0, len(s.Items))
	for _, item := range s.Items {
		options := make([]entities.VotingOption, 0, len(item.Options))
		for _, option := range item.Options {
			options = append(options, entities.VotingOption{
				OptionID:    option.OptionID,
				Value:       option.Value,
				Description: option.Description,
			})
		}
		items = append(items, entities.VotingItem{
			ItemID:        item.ItemID,
			Title:         item.Title,
			Kind:          entities.ItemKind(item.Kind),
			MaxSelections: item.MaxSelections,
			Options:       options,
		})
	}
	return entities.ElectionSession{
		SessionID:   s.SessionID,
		ElectionID:  s.ElectionID,
		Name:        s.Name,
		Description: s.Description,
		Status:      entities.Status(s.Status),
		Items:       items,
	}
}

func VoteRecordFromEntity(record entities.VoteRecord) VoteRecordResponse {
	return VoteRecordResponse{
		RecordID:   record.RecordID,
		VoterID:    record.VoterID,
		ElectionID: record.ElectionID,
		SessionID:  record.SessionID,
		ItemID:     record.ItemID,
		OptionID:   record.OptionID,
		Weight:     record.Weight,
		CastAt:     record.CastAt,
	}
}

func (r VoteRecordResponse) ToEntity() entities.VoteRecord {
	return entities.VoteRecord{
		RecordID:   r.RecordID,
		VoterID:    r.VoterID,
		ElectionID: r.ElectionID,
		SessionID:  r.SessionID,
		ItemID:     r.ItemID,
		OptionID:   r.OptionID,
		Weight:     r.Weight,
		CastAt:     r.CastAt,
	}
}
