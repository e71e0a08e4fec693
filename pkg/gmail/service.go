package gmail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tempmail-backend/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	user = "me"

	// Gmail API maximum page size for messages.list.
	maxPageSize = 500

	// DefaultLabelID is used when the configured label does not exist.
	DefaultLabelID = "INBOX"
)

// Label is a Gmail label reduced to what the inbox needs.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service builds authenticated Gmail clients for the catch-all account.
type Service struct {
	oauthConfig *oauth2.Config
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailReadonlyScope},
		},
	}
}

// AuthCodeURL returns the consent screen URL for connecting the catch-all
// mailbox. Consent is forced so Google always issues a refresh token.
func (s *Service) AuthCodeURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a refresh token and returns the
// address of the account that granted access.
func (s *Service) Exchange(ctx context.Context, code string) (refreshToken, email string, err error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("unable to exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return "", "", errors.New("no refresh token received, revoke access at https://myaccount.google.com/permissions and try again")
	}

	client, err := s.connectWithToken(ctx, token)
	if err != nil {
		return "", "", err
	}
	email, err = client.Profile(ctx)
	if err != nil {
		// The token is usable even if the profile lookup fails.
		logger.Gmail().WithError(err).Warn("Unable to read Gmail profile after exchange")
		email = ""
	}

	return token.RefreshToken, email, nil
}

// Connect returns a client authorized by the stored refresh token. Access
// tokens are minted on demand by the oauth2 token source.
func (s *Service) Connect(ctx context.Context, refreshToken string) (*Client, error) {
	return s.connectWithToken(ctx, &oauth2.Token{RefreshToken: refreshToken, TokenType: "Bearer"})
}

func (s *Service) connectWithToken(ctx context.Context, token *oauth2.Token) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, s.oauthConfig.TokenSource(ctx, token))

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return &Client{srv: srv}, nil
}

// Client wraps one authorized Gmail API service.
type Client struct {
	srv *gmail.Service
}

// NewClient wraps an existing Gmail service, e.g. one pointed at a test server.
func NewClient(srv *gmail.Service) *Client {
	return &Client{srv: srv}
}

// ListLabels retrieves all labels of the mailbox.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	resp, err := c.srv.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve labels: %w", err)
	}

	labels := make([]Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

// ListMessageIDs lists up to max message ids carrying labelID, newest first
// as ordered by Gmail. Pages are followed until max ids are collected.
func (c *Client) ListMessageIDs(ctx context.Context, labelID string, max int) ([]string, error) {
	ids := make([]string, 0, max)
	pageToken := ""

	for len(ids) < max {
		pageSize := int64(max - len(ids))
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		call := c.srv.Users.Messages.List(user).LabelIds(labelID).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve messages: %w", err)
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" || len(resp.Messages) == 0 {
			break
		}
	}

	if len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

// GetMessage retrieves one message in full format.
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	msg, err := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message %s: %w", id, err)
	}
	return msg, nil
}

// Profile returns the mailbox address.
func (c *Client) Profile(ctx context.Context) (string, error) {
	profile, err := c.srv.Users.GetProfile(user).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// FindLabelID returns the id of the label whose name matches name
// case-insensitively, or "" when there is none.
func FindLabelID(labels []Label, name string) string {
	if name == "" {
		return ""
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			return l.ID
		}
	}
	return ""
}
