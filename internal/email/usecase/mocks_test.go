package usecase

import (
	"context"
	"encoding/base64"
	"testing"

	emaildomain "tempmail-backend/internal/email/domain"
	"tempmail-backend/internal/email/repository"
	"tempmail-backend/pkg/database"
	gmailpkg "tempmail-backend/pkg/gmail"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockMailProvider struct {
	mock.Mock
}

func (m *mockMailProvider) Connect(ctx context.Context, refreshToken string) (MailClient, error) {
	args := m.Called(ctx, refreshToken)
	client, _ := args.Get(0).(MailClient)
	return client, args.Error(1)
}

type mockMailClient struct {
	mock.Mock
}

func (m *mockMailClient) ListLabels(ctx context.Context) ([]gmailpkg.Label, error) {
	args := m.Called(ctx)
	labels, _ := args.Get(0).([]gmailpkg.Label)
	return labels, args.Error(1)
}

func (m *mockMailClient) ListMessageIDs(ctx context.Context, labelID string, max int) ([]string, error) {
	args := m.Called(ctx, labelID, max)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockMailClient) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*gmail.Message)
	return msg, args.Error(1)
}

type mockGmailConfigRepo struct {
	mock.Mock
}

func (m *mockGmailConfigRepo) Get(ctx context.Context) (*emaildomain.GmailConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*emaildomain.GmailConfig)
	return cfg, args.Error(1)
}

func (m *mockGmailConfigRepo) Save(ctx context.Context, refreshToken, email string) error {
	return m.Called(ctx, refreshToken, email).Error(0)
}

func (m *mockGmailConfigRepo) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockGmailConfigRepo) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockOAuthFlow struct {
	mock.Mock
}

func (m *mockOAuthFlow) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockOAuthFlow) Exchange(ctx context.Context, code string) (string, string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.String(1), args.Error(2)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:", &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&emaildomain.ReadState{}, &emaildomain.RecentInbox{}, &emaildomain.OAuthState{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newStateRepo(t *testing.T) repository.OAuthStateRepository {
	return repository.NewOAuthStateRepository(newTestDB(t))
}

func newReadStateRepo(t *testing.T) repository.ReadStateRepository {
	return repository.NewReadStateRepository(newTestDB(t))
}

func rawMessage(id, to, date string) *gmail.Message {
	headers := []*gmail.MessagePartHeader{
		{Name: "From", Value: "sender@remote.test"},
		{Name: "To", Value: to},
		{Name: "Subject", Value: "Message " + id},
	}
	if date != "" {
		headers = append(headers, &gmail.MessagePartHeader{Name: "Date", Value: date})
	}
	return &gmail.Message{
		Id: id,
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers:  headers,
			Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("body of " + id))},
		},
	}
}
