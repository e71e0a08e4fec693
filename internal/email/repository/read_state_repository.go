package repository

import (
	"context"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const trackBatchSize = 100

// readStateRepository implements ReadStateRepository interface
type readStateRepository struct {
	db *gorm.DB
}

// NewReadStateRepository creates a new instance of readStateRepository
func NewReadStateRepository(db *gorm.DB) ReadStateRepository {
	return &readStateRepository{
		db: db,
	}
}

func (r *readStateRepository) Track(ctx context.Context, inboxAddress string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]emaildomain.ReadState, 0, len(messageIDs))
	seen := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, emaildomain.ReadState{
			MessageID:    id,
			InboxAddress: inboxAddress,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"inbox_address", "updated_at"}),
		}).
		CreateInBatches(rows, trackBatchSize).Error
}

func (r *readStateRepository) SetRead(ctx context.Context, messageID string, isRead bool) error {
	now := time.Now()
	row := emaildomain.ReadState{
		MessageID: messageID,
		IsRead:    isRead,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "message_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_read":    isRead,
				"updated_at": now,
			}),
		}).
		Create(&row).Error
}

func (r *readStateRepository) GetReadFlags(ctx context.Context, messageIDs []string) (map[string]bool, error) {
	flags := make(map[string]bool, len(messageIDs))
	if len(messageIDs) == 0 {
		return flags, nil
	}

	var rows []emaildomain.ReadState
	err := r.db.WithContext(ctx).
		Select("message_id", "is_read").
		Where("message_id IN ?", messageIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		flags[row.MessageID] = row.IsRead
	}
	return flags, nil
}

func (r *readStateRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&emaildomain.ReadState{})
	return result.RowsAffected, result.Error
}
