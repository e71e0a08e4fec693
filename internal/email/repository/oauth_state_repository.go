package repository

import (
	"context"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"

	"gorm.io/gorm"
)

type oauthStateRepository struct {
	db *gorm.DB
}

func NewOAuthStateRepository(db *gorm.DB) OAuthStateRepository {
	return &oauthStateRepository{db: db}
}

func (r *oauthStateRepository) Create(ctx context.Context, state *emaildomain.OAuthState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", state.CreatedAt).Delete(&emaildomain.OAuthState{}).Error; err != nil {
			return err
		}
		return tx.Create(state).Error
	})
}

func (r *oauthStateRepository) Consume(ctx context.Context, state string, now time.Time) (bool, error) {
	if state == "" {
		return false, nil
	}
	result := r.db.WithContext(ctx).
		Where("state = ? AND expires_at > ?", state, now).
		Delete(&emaildomain.OAuthState{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
