package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the gorm-backed session registry. It runs against postgres
// in production and sqlite in local and test setups.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("booth_repo_get_election_failed", err, "election_id", strings.TrimSpace(electionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListSessionsByStatus(
	ctx context.Context,
	electionID string,
	status entities.Status,
) ([]entities.ElectionSession, error) {
	electionID = strings.TrimSpace(electionID)
	var exists int64
	if err := r.db.WithContext(ctx).Model(&electionModel{}).Where("id = ?", electionID).Count(&exists).Error; err != nil {
		return nil, r.logError("booth_repo_election_exists_failed", err, "election_id", electionID)
	}
	if exists == 0 {
		return nil, domainerrors.ErrElectionNotFound
	}

	var rows []sessionModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("status = ?", string(status)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("booth_repo_list_sessions_failed", err,
			"election_id", electionID,
			"status", string(status),
		)
	}
	return r.hydrateSessions(ctx, rows)
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.ElectionSession, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ElectionSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.ElectionSession{}, r.logError("booth_repo_get_session_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	sessions, err := r.hydrateSessions(ctx, []sessionModel{row})
	if err != nil {
		return entities.ElectionSession{}, err
	}
	return sessions[0], nil
}

// hydrateSessions loads items and options for the given sessions with two
// IN queries and assembles them in display order.
func (r *Repository) hydrateSessions(ctx context.Context, rows []sessionModel) ([]entities.ElectionSession, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	sessionIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		sessionIDs = append(sessionIDs, row.ID)
	}

	var items []itemModel
	if err := r.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("position ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, r.logError("booth_repo_list_items_failed", err, "session_count", len(sessionIDs))
	}

	optionsByItem := make(map[string][]entities.VotingOption, len(items))
	if len(items) > 0 {
		itemIDs := make([]string, 0, len(items))
		for _, item := range items {
			itemIDs = append(itemIDs, item.ID)
		}
		var options []optionModel
		if err := r.db.WithContext(ctx).
			Where("item_id IN ?", itemIDs).
			Order("position ASC").
			Order("id ASC").
			Find(&options).Error; err != nil {
			return nil, r.logError("booth_repo_list_options_failed", err, "item_count", len(itemIDs))
		}
		for _, option := range options {
			optionsByItem[option.ItemID] = append(optionsByItem[option.ItemID], entities.VotingOption{
				OptionID:    option.ID,
				Value:       option.Value,
				Description: option.Description,
			})
		}
	}

	itemsBySession := make(map[string][]entities.VotingItem, len(rows))
	for _, item := range items {
		itemsBySession[item.SessionID] = append(itemsBySession[item.SessionID], entities.VotingItem{
			ItemID:        item.ID,
			Title:         item.Title,
			Kind:          entities.ItemKind(item.Kind),
			MaxSelections: item.MaxSelections,
			Options:       optionsByItem[item.ID],
		})
	}

	out := make([]entities.ElectionSession, 0, len(rows))
	for _, row := range rows {
		out = append(out, entities.ElectionSession{
			SessionID:   row.ID,
			ElectionID:  row.ElectionID,
			Name:        row.Name,
			Description: row.Description,
			Status:      entities.Status(row.Status),
			Items:       itemsBySession[row.ID],
		})
	}
	return out, nil
}

func (r *Repository) GetVoterByIdentity(ctx context.Context, electionID string, identity string) (entities.Voter, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("identity = ?", strings.TrimSpace(identity)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, r.logError("booth_repo_get_voter_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), true, nil
}

// CreateVoteRecord inserts one record together with its permission grants.
// The (voter, session, item, option) tuple is unique.
func (r *Repository) CreateVoteRecord(ctx context.Context, record entities.VoteRecord, grants []entities.Permission) error {
	row := voteRecordModelFromEntity(record)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(grants) == 0 {
			return nil
		}
		permissions := make([]permissionModel, 0, len(grants))
		for _, grant := range grants {
			permissions = append(permissions, permissionModel{
				RecordID:  row.ID,
				Principal: grant.Principal,
				Action:    string(grant.Action),
			})
		}
		return tx.Create(&permissions).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("booth_repo_create_vote_record_failed", err,
			"record_id", row.ID,
			"session_id", row.SessionID,
			"item_id", row.ItemID,
		)
	}
	return nil
}

func (r *Repository) CountVoteRecords(ctx context.Context, voterID string, sessionID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voteRecordModel{}).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("booth_repo_count_vote_records_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return int(count), nil
}

func (r *Repository) ListVoteRecordsReadableBy(ctx context.Context, electionID string, principal string) ([]entities.VoteRecord, error) {
	var rows []voteRecordModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN vote_record_permissions p ON p.record_id = vote_records.id").
		Where("vote_records.election_id = ?", strings.TrimSpace(electionID)).
		Where("p.principal = ?", principal).
		Where("p.action = ?", string(entities.PermissionRead)).
		Order("vote_records.cast_at ASC").
		Order("vote_records.id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("booth_repo_list_readable_records_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("booth_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("booth_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("booth_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("booth_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("booth_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	if isUndefinedTable(err) {
		event = "booth_repo_schema_missing"
	}
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/voting-booth",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("voting booth repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite builds without error translation only report the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var _ ports.SessionRegistry = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
