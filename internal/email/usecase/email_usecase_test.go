package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
	"tempmail-backend/internal/email/repository"
	gmailpkg "tempmail-backend/pkg/gmail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const testInbox = "box@example.com"

type pipelineFixture struct {
	uc        *emailUsecase
	provider  *mockMailProvider
	client    *mockMailClient
	configs   *mockGmailConfigRepo
	readState repository.ReadStateRepository
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	f := &pipelineFixture{
		provider:  new(mockMailProvider),
		client:    new(mockMailClient),
		configs:   new(mockGmailConfigRepo),
		readState: newReadStateRepo(t),
	}

	uc := NewEmailUsecase(f.configs, f.readState, f.provider, PipelineConfig{
		AllowedDomains: []string{"example.com"},
		RetentionHours: 24,
		Concurrency:    4,
		CallTimeout:    time.Second,
		FetchTimeout:   5 * time.Second,
	})
	f.uc = uc.(*emailUsecase)
	f.uc.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	return f
}

// connected stubs a valid credential and a successful connection.
func (f *pipelineFixture) connected() *pipelineFixture {
	f.configs.On("Get", mock.Anything).Return(&emaildomain.GmailConfig{
		ID:           emaildomain.GmailConfigID,
		RefreshToken: "refresh",
		IsValid:      true,
	}, nil)
	f.provider.On("Connect", mock.Anything, "refresh").Return(f.client, nil)
	return f
}

func (f *pipelineFixture) listing(ids ...string) *pipelineFixture {
	f.client.On("ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, mock.Anything).Return(ids, nil)
	return f
}

func TestFetchEmails_SortsNewestFirst(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("older", "newer")
	f.client.On("GetMessage", mock.Anything, "older").Return(rawMessage("older", testInbox, "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "newer").Return(rawMessage("newer", testInbox, "2024-01-01T12:00:00Z"), nil)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "newer", emails[0].ID)
	assert.Equal(t, "older", emails[1].ID)
	f.client.AssertCalled(t, "ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, DefaultMaxResults*candidateFactor)
}

func TestFetchEmails_UndatedSortLast(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("bad", "good")
	f.client.On("GetMessage", mock.Anything, "bad").Return(rawMessage("bad", testInbox, "yesterday-ish"), nil)
	f.client.On("GetMessage", mock.Anything, "good").Return(rawMessage("good", testInbox, "Mon, 1 Jan 2024 09:00:00 +0000"), nil)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "good", emails[0].ID)
	assert.Equal(t, "bad", emails[1].ID)
}

func TestFetchEmails_CapsAtMaxResults(t *testing.T) {
	f := newPipelineFixture(t).connected()

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%02d", i)
		date := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Minute)
		f.client.On("GetMessage", mock.Anything, ids[i]).Return(rawMessage(ids[i], testInbox, date.Format(time.RFC3339)), nil).Maybe()
	}
	f.client.On("ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, 15).Return(ids, nil)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com", MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, emails, 5)
	for i, e := range emails {
		assert.Equal(t, ids[i], e.ID, "first matches in list order are kept")
	}
}

func TestFetchEmails_SkipsOtherInboxes(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("mine", "theirs", "headerless")
	f.client.On("GetMessage", mock.Anything, "mine").Return(rawMessage("mine", "Box <BOX@example.com>", "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "theirs").Return(rawMessage("theirs", "other@example.com", "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "headerless").Return(rawMessage("headerless", "", ""), nil)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "Box", Domain: "Example.com"})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "mine", emails[0].ID)
	assert.Equal(t, "body of mine", emails[0].Body)
	assert.Equal(t, "body of mine", emails[0].Preview)
}

func TestFetchEmails_ExcludeExpired(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("fresh", "stale")
	f.client.On("GetMessage", mock.Anything, "fresh").Return(rawMessage("fresh", testInbox, "2024-01-01T06:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "stale").Return(rawMessage("stale", testInbox, "2023-12-31T06:00:00Z"), nil)

	all, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.NoError(t, err)
	assert.Len(t, all, 2, "expired mail is included by default")

	live, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com", ExcludeExpired: true})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "fresh", live[0].ID)
}

func TestFetchEmails_ReadStateRoundTrip(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("m1", "m2")
	f.client.On("GetMessage", mock.Anything, "m1").Return(rawMessage("m1", testInbox, "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "m2").Return(rawMessage("m2", testInbox, "2024-01-01T11:00:00Z"), nil)
	ctx := context.Background()
	opts := FetchOptions{InboxName: "box", Domain: "example.com"}

	emails, err := f.uc.FetchEmails(ctx, opts)
	require.NoError(t, err)
	for _, e := range emails {
		assert.False(t, e.IsRead)
	}

	require.NoError(t, f.uc.MarkRead(ctx, "m1"))
	emails, err = f.uc.FetchEmails(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"m1": true, "m2": false}, readFlags(emails))

	require.NoError(t, f.uc.MarkUnread(ctx, "m1"))
	emails, err = f.uc.FetchEmails(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"m1": false, "m2": false}, readFlags(emails))
}

func readFlags(emails []*emaildomain.Email) map[string]bool {
	out := make(map[string]bool, len(emails))
	for _, e := range emails {
		out[e.ID] = e.IsRead
	}
	return out
}

func TestFetchEmails_AuthFailureInvalidatesCredential(t *testing.T) {
	f := newPipelineFixture(t).connected()
	f.client.On("ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, mock.Anything).
		Return(nil, errors.New(`oauth2: cannot fetch token: 400 Bad Request Response: {"error": "invalid_grant"}`))
	f.configs.On("Invalidate", mock.Anything).Return(nil).Once()

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	assert.Nil(t, emails)
	require.Error(t, err)
	assert.True(t, emaildomain.NeedsSetup(err))
	assert.ErrorIs(t, err, emaildomain.ErrGmailTokenExpired)
	assert.NotErrorIs(t, err, emaildomain.ErrFetchFailed)
	f.configs.AssertExpectations(t)
}

func TestFetchEmails_AuthFailureOnMessageGet(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("m1", "m2")
	f.client.On("GetMessage", mock.Anything, "m1").Return(rawMessage("m1", testInbox, "2024-01-01T10:00:00Z"), nil).Maybe()
	f.client.On("GetMessage", mock.Anything, "m2").
		Return(nil, errors.New("googleapi: Error 401: Request had invalid authentication credentials."))
	f.configs.On("Invalidate", mock.Anything).Return(nil).Once()

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.Error(t, err)
	assert.True(t, emaildomain.NeedsSetup(err))
	f.configs.AssertExpectations(t)
}

func TestFetchEmails_TransientFailure(t *testing.T) {
	f := newPipelineFixture(t).connected()
	f.client.On("ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, mock.Anything).
		Return(nil, &googleapi.Error{Code: 503, Message: "backend error"})

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, emaildomain.ErrFetchFailed)
	assert.False(t, emaildomain.NeedsSetup(err))
	f.configs.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestFetchEmails_DropsUnreadableMessage(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("ok", "headerless")
	f.client.On("GetMessage", mock.Anything, "ok").Return(rawMessage("ok", testInbox, "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "headerless").Return(&gmail.Message{Id: "headerless", Payload: &gmail.MessagePart{}}, nil)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "ok", emails[0].ID)
}

func TestFetchEmails_MessageGetFailureFailsFetch(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("ok", "broken")
	f.client.On("GetMessage", mock.Anything, "ok").Return(rawMessage("ok", testInbox, "2024-01-01T10:00:00Z"), nil).Maybe()
	f.client.On("GetMessage", mock.Anything, "broken").Return(nil, &googleapi.Error{Code: 500})

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	assert.Nil(t, emails)
	require.Error(t, err)
	assert.ErrorIs(t, err, emaildomain.ErrFetchFailed)
	assert.False(t, emaildomain.NeedsSetup(err))
	f.configs.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestFetchEmails_SlowMessageGetTimesOut(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("slow")
	f.uc.cfg.CallTimeout = 20 * time.Millisecond
	f.client.On("GetMessage", mock.Anything, "slow").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	assert.Nil(t, emails)
	require.Error(t, err)
	assert.ErrorIs(t, err, emaildomain.ErrFetchFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	f.configs.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestFetchEmails_TimeoutIsRetryable(t *testing.T) {
	f := newPipelineFixture(t).connected()
	f.uc.cfg.FetchTimeout = 20 * time.Millisecond
	f.client.On("ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, emaildomain.ErrFetchFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchEmails_NotConfigured(t *testing.T) {
	f := newPipelineFixture(t)
	f.configs.On("Get", mock.Anything).Return(nil, nil)

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	assert.ErrorIs(t, err, emaildomain.ErrGmailNotConfigured)
	assert.True(t, emaildomain.NeedsSetup(err))
	f.provider.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
}

func TestFetchEmails_InvalidatedCredential(t *testing.T) {
	f := newPipelineFixture(t)
	f.configs.On("Get", mock.Anything).Return(&emaildomain.GmailConfig{RefreshToken: "refresh", IsValid: false}, nil)

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	assert.ErrorIs(t, err, emaildomain.ErrGmailTokenExpired)
	f.provider.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
}

func TestFetchEmails_ValidationBeforeNetwork(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "My-Inbox_1", Domain: "example.com"})
	var vErr *emaildomain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "inbox", vErr.Field)

	_, err = f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "evil.test"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "domain", vErr.Field)

	f.configs.AssertNotCalled(t, "Get", mock.Anything)
	f.provider.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything)
}

func TestFetchEmails_ResolvesConfiguredLabel(t *testing.T) {
	f := newPipelineFixture(t).connected()
	f.uc.cfg.LabelName = "temp"
	f.client.On("ListLabels", mock.Anything).Return([]gmailpkg.Label{{ID: "INBOX", Name: "INBOX"}, {ID: "Label_3", Name: "Temp"}}, nil)
	f.client.On("ListMessageIDs", mock.Anything, "Label_3", mock.Anything).Return([]string{}, nil)

	emails, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.NoError(t, err)
	assert.Empty(t, emails)
	f.client.AssertExpectations(t)
}

func TestFetchEmails_LabelLookupFailureFallsBack(t *testing.T) {
	f := newPipelineFixture(t).connected().listing()
	f.uc.cfg.LabelName = "Temp"
	f.client.On("ListLabels", mock.Anything).Return(nil, &googleapi.Error{Code: 500})

	_, err := f.uc.FetchEmails(context.Background(), FetchOptions{InboxName: "box", Domain: "example.com"})
	require.NoError(t, err)
	f.client.AssertCalled(t, "ListMessageIDs", mock.Anything, gmailpkg.DefaultLabelID, mock.Anything)
}

func TestGetEmailByID(t *testing.T) {
	f := newPipelineFixture(t).connected()
	f.client.On("GetMessage", mock.Anything, "m1").Return(rawMessage("m1", testInbox, "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "old").Return(rawMessage("old", testInbox, "2023-06-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "gone").Return(nil, fmt.Errorf("unable to retrieve message gone: %w", &googleapi.Error{Code: 404}))
	ctx := context.Background()

	require.NoError(t, f.uc.MarkRead(ctx, "m1"))

	email, err := f.uc.GetEmailByID(ctx, "m1", "BOX@example.com", false)
	require.NoError(t, err)
	require.NotNil(t, email)
	assert.True(t, email.IsRead)
	assert.Equal(t, "Message m1", email.Subject)

	email, err = f.uc.GetEmailByID(ctx, "m1", "someone-else@example.com", false)
	require.NoError(t, err)
	assert.Nil(t, email, "mail of another inbox is hidden")

	email, err = f.uc.GetEmailByID(ctx, "old", testInbox, true)
	require.NoError(t, err)
	assert.Nil(t, email)

	email, err = f.uc.GetEmailByID(ctx, "old", testInbox, false)
	require.NoError(t, err)
	assert.NotNil(t, email)

	email, err = f.uc.GetEmailByID(ctx, "gone", testInbox, false)
	require.NoError(t, err)
	assert.Nil(t, email)
}

func TestGetEmailByID_AuthFailure(t *testing.T) {
	f := newPipelineFixture(t).connected()
	f.client.On("GetMessage", mock.Anything, "m1").Return(nil, errors.New("googleapi: Error 401: Invalid Credentials, authError"))
	f.configs.On("Invalidate", mock.Anything).Return(nil).Once()

	email, err := f.uc.GetEmailByID(context.Background(), "m1", testInbox, false)
	assert.Nil(t, email)
	assert.True(t, emaildomain.NeedsSetup(err))
	f.configs.AssertExpectations(t)
}

func TestMarkRead_RequiresID(t *testing.T) {
	f := newPipelineFixture(t)
	err := f.uc.MarkRead(context.Background(), "  ")
	assert.True(t, emaildomain.IsValidationError(err))
}

func TestCountEmails(t *testing.T) {
	f := newPipelineFixture(t).connected().listing("m1", "m2")
	f.client.On("GetMessage", mock.Anything, "m1").Return(rawMessage("m1", testInbox, "2024-01-01T10:00:00Z"), nil)
	f.client.On("GetMessage", mock.Anything, "m2").Return(rawMessage("m2", "x@example.com", "2024-01-01T10:00:00Z"), nil)

	n, err := f.uc.CountEmails(context.Background(), "box", "example.com", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewPipelineConfigDefaults(t *testing.T) {
	uc := NewEmailUsecase(nil, nil, nil, PipelineConfig{AllowedDomains: []string{"Example.com "}})
	assert.Equal(t, uint(24), uc.RetentionHours())
	assert.Equal(t, []string{"example.com"}, uc.AllowedDomains())
}
