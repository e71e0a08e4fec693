package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
	"tempmail-backend/internal/email/repository"
	"tempmail-backend/pkg/config"
	gmailpkg "tempmail-backend/pkg/gmail"
	"tempmail-backend/pkg/logger"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
)

const (
	// DefaultMaxResults is used when FetchOptions.MaxResults is not positive
	DefaultMaxResults = 100

	// Many listed messages belong to other inboxes, so more are listed than needed
	candidateFactor = 3

	defaultConcurrency    = 10
	defaultRetentionHours = 24
)

// PipelineConfig carries the catch-all settings into the fetch pipeline
type PipelineConfig struct {
	AllowedDomains []string
	RetentionHours uint
	LabelName      string
	Concurrency    int
	CallTimeout    time.Duration
	FetchTimeout   time.Duration
}

// NewPipelineConfig builds a PipelineConfig from the loaded configuration
func NewPipelineConfig(cfg *config.Config) PipelineConfig {
	return PipelineConfig{
		AllowedDomains: cfg.AllowedDomains,
		RetentionHours: cfg.EmailExpiryHours,
		LabelName:      cfg.GmailLabel,
		Concurrency:    cfg.GmailFetchConcurrency,
		CallTimeout:    cfg.GmailCallTimeout,
		FetchTimeout:   cfg.GmailFetchTimeout,
	}
}

// emailUsecase implements EmailUsecase interface
type emailUsecase struct {
	gmailConfigRepo repository.GmailConfigRepository
	readStateRepo   repository.ReadStateRepository
	provider        MailProvider
	validator       *InboxValidator
	cfg             PipelineConfig
	now             func() time.Time
}

// NewEmailUsecase creates a new instance of emailUsecase
func NewEmailUsecase(
	gmailConfigRepo repository.GmailConfigRepository,
	readStateRepo repository.ReadStateRepository,
	provider MailProvider,
	cfg PipelineConfig,
) EmailUsecase {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.RetentionHours == 0 {
		cfg.RetentionHours = defaultRetentionHours
	}

	return &emailUsecase{
		gmailConfigRepo: gmailConfigRepo,
		readStateRepo:   readStateRepo,
		provider:        provider,
		validator:       NewInboxValidator(cfg.AllowedDomains),
		cfg:             cfg,
		now:             time.Now,
	}
}

func (u *emailUsecase) FetchEmails(ctx context.Context, opts FetchOptions) ([]*emaildomain.Email, error) {
	if err := u.validator.Validate(opts.InboxName, opts.Domain); err != nil {
		return nil, err
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	target := emaildomain.BuildAddress(opts.InboxName, opts.Domain)

	ctx, cancel := withTimeout(ctx, u.cfg.FetchTimeout)
	defer cancel()

	log.WithFields(log.Fields{"address": target, "max_results": maxResults}).Debug("Fetching emails")

	client, err := u.connect(ctx)
	if err != nil {
		return nil, err
	}

	labelID, err := u.resolveLabel(ctx, client)
	if err != nil {
		return nil, u.providerError(ctx, err)
	}

	ids, err := u.listMessageIDs(ctx, client, labelID, maxResults*candidateFactor)
	if err != nil {
		return nil, u.providerError(ctx, err)
	}

	emails, err := u.collect(ctx, client, ids, u.convertOptions(target, opts.ExcludeExpired), maxResults)
	if err != nil {
		return nil, u.providerError(ctx, err)
	}

	sortByReceivedDesc(emails)
	u.mergeReadState(ctx, target, emails)

	log.WithFields(log.Fields{
		"address":    target,
		"candidates": len(ids),
		"count":      len(emails),
	}).Info("Emails fetched")

	return emails, nil
}

func (u *emailUsecase) GetEmailByID(ctx context.Context, id, targetAddress string, excludeExpired bool) (*emaildomain.Email, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &emaildomain.ValidationError{Field: "id", Message: "Email id is required"}
	}
	target := strings.ToLower(strings.TrimSpace(targetAddress))

	ctx, cancel := withTimeout(ctx, u.cfg.FetchTimeout)
	defer cancel()

	client, err := u.connect(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := u.getMessage(ctx, client, id)
	if err != nil {
		if gmailpkg.IsNotFound(err) {
			return nil, nil
		}
		return nil, u.providerError(ctx, err)
	}

	email := gmailpkg.ConvertMessage(msg, u.convertOptions(target, excludeExpired))
	if email == nil {
		return nil, nil
	}

	flags, err := u.readStateRepo.GetReadFlags(ctx, []string{email.ID})
	if err != nil {
		log.WithError(err).WithField("message_id", email.ID).Warn("Failed to load read state")
		return email, nil
	}
	email.IsRead = flags[email.ID]
	return email, nil
}

func (u *emailUsecase) CountEmails(ctx context.Context, inboxName, domain string, excludeExpired bool) (int, error) {
	emails, err := u.FetchEmails(ctx, FetchOptions{
		InboxName:      inboxName,
		Domain:         domain,
		MaxResults:     DefaultMaxResults,
		ExcludeExpired: excludeExpired,
	})
	if err != nil {
		return 0, err
	}
	return len(emails), nil
}

func (u *emailUsecase) MarkRead(ctx context.Context, id string) error {
	return u.setRead(ctx, id, true)
}

func (u *emailUsecase) MarkUnread(ctx context.Context, id string) error {
	return u.setRead(ctx, id, false)
}

func (u *emailUsecase) setRead(ctx context.Context, id string, isRead bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &emaildomain.ValidationError{Field: "id", Message: "Email id is required"}
	}
	if err := u.readStateRepo.SetRead(ctx, id, isRead); err != nil {
		return fmt.Errorf("failed to update read state: %w", err)
	}
	return nil
}

func (u *emailUsecase) GetReadFlags(ctx context.Context, ids []string) (map[string]bool, error) {
	return u.readStateRepo.GetReadFlags(ctx, ids)
}

func (u *emailUsecase) ParseInboxAddress(address string) (emaildomain.Inbox, error) {
	return u.validator.ParseInboxAddress(address)
}

func (u *emailUsecase) AllowedDomains() []string {
	return u.validator.AllowedDomains()
}

func (u *emailUsecase) RetentionHours() uint {
	return u.cfg.RetentionHours
}

// connect loads the stored credential and opens a mail session.
func (u *emailUsecase) connect(ctx context.Context) (MailClient, error) {
	cfg, err := u.gmailConfigRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", emaildomain.ErrFetchFailed, err)
	}
	if cfg == nil || cfg.RefreshToken == "" {
		logger.Gmail().Warn("Gmail not configured - no refresh token found")
		return nil, emaildomain.ErrGmailNotConfigured
	}
	if !cfg.IsValid {
		logger.Gmail().Warn("Gmail token marked as invalid")
		return nil, emaildomain.ErrGmailTokenExpired
	}

	client, err := u.provider.Connect(ctx, cfg.RefreshToken)
	if err != nil {
		return nil, u.providerError(ctx, err)
	}
	return client, nil
}

// providerError classifies a mail provider failure. Authentication failures
// invalidate the stored credential.
func (u *emailUsecase) providerError(ctx context.Context, err error) error {
	if gmailpkg.IsAuthError(err) {
		logger.Gmail().WithError(err).Error("Gmail authentication error - invalidating token")
		if invErr := u.gmailConfigRepo.Invalidate(context.WithoutCancel(ctx)); invErr != nil {
			logger.Gmail().WithError(invErr).Error("Failed to invalidate Gmail token")
		}
		return fmt.Errorf("%w: %w", emaildomain.ErrGmailTokenExpired, err)
	}

	logger.Gmail().WithError(err).Error("Error fetching emails from Gmail")
	return fmt.Errorf("%w: %w", emaildomain.ErrFetchFailed, err)
}

// resolveLabel returns the id of the configured label, or INBOX when the
// label is unset or missing.
func (u *emailUsecase) resolveLabel(ctx context.Context, client MailClient) (string, error) {
	if u.cfg.LabelName == "" {
		return gmailpkg.DefaultLabelID, nil
	}

	callCtx, cancel := withTimeout(ctx, u.cfg.CallTimeout)
	defer cancel()

	labels, err := client.ListLabels(callCtx)
	if err != nil {
		if gmailpkg.IsAuthError(err) || ctx.Err() != nil {
			return "", err
		}
		logger.Gmail().WithError(err).Warn("Unable to list labels, falling back to INBOX")
		return gmailpkg.DefaultLabelID, nil
	}

	if id := gmailpkg.FindLabelID(labels, u.cfg.LabelName); id != "" {
		return id, nil
	}
	logger.Gmail().WithField("label", u.cfg.LabelName).Debug("Label not found, using INBOX")
	return gmailpkg.DefaultLabelID, nil
}

func (u *emailUsecase) listMessageIDs(ctx context.Context, client MailClient, labelID string, max int) ([]string, error) {
	callCtx, cancel := withTimeout(ctx, u.cfg.CallTimeout)
	defer cancel()
	return client.ListMessageIDs(callCtx, labelID, max)
}

func (u *emailUsecase) getMessage(ctx context.Context, client MailClient, id string) (*gmail.Message, error) {
	callCtx, cancel := withTimeout(ctx, u.cfg.CallTimeout)
	defer cancel()
	return client.GetMessage(callCtx, id)
}

func (u *emailUsecase) convertOptions(target string, excludeExpired bool) gmailpkg.ConvertOptions {
	return gmailpkg.ConvertOptions{
		TargetAddress:  target,
		ExcludeExpired: excludeExpired,
		ExpiryWindow:   time.Duration(u.cfg.RetentionHours) * time.Hour,
		Now:            u.now(),
	}
}

// collect fetches candidates in list order, batch by batch, and stops as soon
// as maxResults matching emails are accumulated.
func (u *emailUsecase) collect(ctx context.Context, client MailClient, ids []string, opts gmailpkg.ConvertOptions, maxResults int) ([]*emaildomain.Email, error) {
	emails := make([]*emaildomain.Email, 0, min(maxResults, len(ids)))

	for start := 0; start < len(ids) && len(emails) < maxResults; {
		end := min(start+max(maxResults-len(emails), u.cfg.Concurrency), len(ids))

		batch, err := u.fetchBatch(ctx, client, ids[start:end], opts)
		if err != nil {
			return nil, err
		}

		for _, email := range batch {
			if email == nil {
				continue
			}
			emails = append(emails, email)
			if len(emails) >= maxResults {
				break
			}
		}
		start = end
	}

	return emails, nil
}

// fetchBatch gets and converts ids concurrently. Results keep the order of
// ids; messages rejected by conversion are nil. Any failed get fails the
// whole batch.
func (u *emailUsecase) fetchBatch(ctx context.Context, client MailClient, ids []string, opts gmailpkg.ConvertOptions) ([]*emaildomain.Email, error) {
	results := make([]*emaildomain.Email, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Concurrency)

	for i, id := range ids {
		g.Go(func() error {
			msg, err := u.getMessage(gctx, client, id)
			if err != nil {
				return fmt.Errorf("failed to get message %s: %w", id, err)
			}
			results[i] = gmailpkg.ConvertMessage(msg, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// mergeReadState records the fetched ids and decorates each email with its
// cached read flag. Failures leave emails unread.
func (u *emailUsecase) mergeReadState(ctx context.Context, target string, emails []*emaildomain.Email) {
	if len(emails) == 0 {
		return
	}

	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.ID
	}

	if err := u.readStateRepo.Track(ctx, target, ids); err != nil {
		log.WithError(err).WithField("address", target).Warn("Failed to record read state")
	}

	flags, err := u.readStateRepo.GetReadFlags(ctx, ids)
	if err != nil {
		log.WithError(err).WithField("address", target).Warn("Failed to load read state")
		return
	}
	for _, e := range emails {
		e.IsRead = flags[e.ID]
	}
}

// sortByReceivedDesc orders emails newest first. Emails with an unparseable
// timestamp keep their relative order after all dated ones.
func sortByReceivedDesc(emails []*emaildomain.Email) {
	type keyed struct {
		email *emaildomain.Email
		at    time.Time
		ok    bool
	}

	items := make([]keyed, len(emails))
	for i, e := range emails {
		at, ok := gmailpkg.ParseReceivedAt(e.ReceivedAt)
		items[i] = keyed{email: e, at: at, ok: ok}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].ok && items[i].at.After(items[j].at)
	})

	for i, it := range items {
		emails[i] = it.email
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
