package usecase

import (
	"context"

	gmailpkg "tempmail-backend/pkg/gmail"
)

type gmailProvider struct {
	svc *gmailpkg.Service
}

// NewGmailProvider exposes a Gmail service as a MailProvider
func NewGmailProvider(svc *gmailpkg.Service) MailProvider {
	return &gmailProvider{svc: svc}
}

func (p *gmailProvider) Connect(ctx context.Context, refreshToken string) (MailClient, error) {
	client, err := p.svc.Connect(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return client, nil
}
