package postgresadapter

import (
	"context"
	"strings"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The registry tables are owned by the administrative side. These upserts
// exist for fixtures and local environments.

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModel{
		ID:          strings.TrimSpace(election.ElectionID),
		OwnerID:     strings.TrimSpace(election.OwnerID),
		Name:        election.Name,
		Description: election.Description,
		Status:      string(election.Status),
		Date:        election.Date.UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return r.logError("booth_repo_save_election_failed", err, "election_id", row.ID)
	}
	return nil
}

// SaveSession replaces a session together with its items and options.
func (r *Repository) SaveSession(ctx context.Context, session entities.ElectionSession) error {
	sessionID := strings.TrimSpace(session.SessionID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := sessionModel{
			ID:          sessionID,
			ElectionID:  strings.TrimSpace(session.ElectionID),
			Name:        session.Name,
			Description: session.Description,
			Status:      string(session.Status),
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}

		var oldItemIDs []string
		if err := tx.Model(&itemModel{}).Where("session_id = ?", sessionID).Pluck("id", &oldItemIDs).Error; err != nil {
			return err
		}
		if len(oldItemIDs) > 0 {
			if err := tx.Where("item_id IN ?", oldItemIDs).Delete(&optionModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("session_id = ?", sessionID).Delete(&itemModel{}).Error; err != nil {
				return err
			}
		}

		for position, item := range session.Items {
			itemRow := itemModel{
				ID:            strings.TrimSpace(item.ItemID),
				SessionID:     sessionID,
				Position:      position,
				Title:         item.Title,
				Kind:          string(item.Kind),
				MaxSelections: item.MaxSelections,
			}
			if err := tx.Create(&itemRow).Error; err != nil {
				return err
			}
			for optionPosition, option := range item.Options {
				optionRow := optionModel{
					ID:          strings.TrimSpace(option.OptionID),
					ItemID:      itemRow.ID,
					Position:    optionPosition,
					Value:       option.Value,
					Description: option.Description,
				}
				if err := tx.Create(&optionRow).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return r.logError("booth_repo_save_session_failed", err, "session_id", sessionID)
	}
	return nil
}

func (r *Repository) SetSessionStatus(ctx context.Context, sessionID string, status entities.Status) error {
	result := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ?", strings.TrimSpace(sessionID)).
		Update("status", string(status))
	if result.Error != nil {
		return r.logError("booth_repo_set_session_status_failed", result.Error, "session_id", strings.TrimSpace(sessionID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSessionNotFound
	}
	return nil
}

func (r *Repository) SaveVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModel{
		ID:         strings.TrimSpace(voter.VoterID),
		ElectionID: strings.TrimSpace(voter.ElectionID),
		Identity:   strings.TrimSpace(voter.Identity),
		Weight:     voter.Weight,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return r.logError("booth_repo_save_voter_failed", err, "voter_id", row.ID)
	}
	return nil
}

// Migrate creates or updates the registry tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return r.logError("booth_repo_migrate_failed", err)
	}
	return nil
}
