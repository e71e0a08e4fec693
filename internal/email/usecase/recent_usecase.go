package usecase

import (
	"context"
	"strings"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
	"tempmail-backend/internal/email/repository"
	"tempmail-backend/pkg/logger"
)

type recentUsecase struct {
	recentRepo repository.RecentInboxRepository
	now        func() time.Time
}

func NewRecentUsecase(recentRepo repository.RecentInboxRepository) RecentUsecase {
	return &recentUsecase{recentRepo: recentRepo, now: time.Now}
}

func (u *recentUsecase) Touch(ctx context.Context, userID, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if err := u.recentRepo.Touch(ctx, userID, address, u.now()); err != nil {
		return err
	}
	logger.UserAction(userID).WithField("address", address).Info("Inbox accessed")
	return nil
}

func (u *recentUsecase) List(ctx context.Context, userID string) ([]*emaildomain.RecentInbox, error) {
	entries, err := u.recentRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*emaildomain.RecentInbox, len(entries))
	for i := range entries {
		out[i] = &entries[i]
	}
	return out, nil
}

func (u *recentUsecase) Remove(ctx context.Context, userID, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if err := u.recentRepo.Delete(ctx, userID, address); err != nil {
		return err
	}
	logger.UserAction(userID).WithField("address", address).Info("Inbox removed from recents")
	return nil
}

func (u *recentUsecase) Clear(ctx context.Context, userID string) error {
	if err := u.recentRepo.Clear(ctx, userID); err != nil {
		return err
	}
	logger.UserAction(userID).Info("All recent inboxes cleared")
	return nil
}
