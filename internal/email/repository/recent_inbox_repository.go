package repository

import (
	"context"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type recentInboxRepository struct {
	db *gorm.DB
}

func NewRecentInboxRepository(db *gorm.DB) RecentInboxRepository {
	return &recentInboxRepository{db: db}
}

func (r *recentInboxRepository) Touch(ctx context.Context, userID, address string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := emaildomain.RecentInbox{
			ID:       uuid.New().String(),
			UserID:   userID,
			Address:  address,
			LastUsed: at,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "address"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_used": at}),
		}).Create(&entry).Error
		if err != nil {
			return err
		}

		var ids []string
		err = tx.Model(&emaildomain.RecentInbox{}).
			Where("user_id = ?", userID).
			Order("last_used DESC").
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) <= emaildomain.MaxRecentInboxes {
			return nil
		}
		return tx.Where("id IN ?", ids[emaildomain.MaxRecentInboxes:]).Delete(&emaildomain.RecentInbox{}).Error
	})
}

func (r *recentInboxRepository) List(ctx context.Context, userID string) ([]emaildomain.RecentInbox, error) {
	var entries []emaildomain.RecentInbox
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_used DESC").
		Limit(emaildomain.MaxRecentInboxes).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *recentInboxRepository) Delete(ctx context.Context, userID, address string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND address = ?", userID, address).
		Delete(&emaildomain.RecentInbox{}).Error
}

func (r *recentInboxRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&emaildomain.RecentInbox{}).Error
}
