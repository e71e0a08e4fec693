package repository

import (
	"context"
	"errors"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gmailConfigRepository struct {
	db *gorm.DB
}

func NewGmailConfigRepository(db *gorm.DB) GmailConfigRepository {
	return &gmailConfigRepository{db: db}
}

func (r *gmailConfigRepository) Get(ctx context.Context) (*emaildomain.GmailConfig, error) {
	var cfg emaildomain.GmailConfig
	err := r.db.WithContext(ctx).Where("id = ?", emaildomain.GmailConfigID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *gmailConfigRepository) Save(ctx context.Context, refreshToken, email string) error {
	now := time.Now()
	cfg := emaildomain.GmailConfig{
		ID:           emaildomain.GmailConfigID,
		RefreshToken: refreshToken,
		Email:        email,
		IsValid:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"refresh_token": refreshToken,
				"email":         email,
				"is_valid":      true,
				"updated_at":    now,
			}),
		}).
		Create(&cfg).Error
}

func (r *gmailConfigRepository) Invalidate(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&emaildomain.GmailConfig{}).
		Where("id = ?", emaildomain.GmailConfigID).
		Updates(map[string]interface{}{
			"is_valid":   false,
			"updated_at": time.Now(),
		}).Error
}

func (r *gmailConfigRepository) Delete(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("id = ?", emaildomain.GmailConfigID).Delete(&emaildomain.GmailConfig{}).Error
}
