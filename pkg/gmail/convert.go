package gmail

import (
	"strings"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
	"tempmail-backend/pkg/sanitizer"

	"google.golang.org/api/gmail/v1"
)

const previewLength = 150

// ConvertOptions controls which messages ConvertMessage accepts.
type ConvertOptions struct {
	// TargetAddress is the lower-cased virtual inbox address.
	TargetAddress string
	// ExcludeExpired drops messages older than ExpiryWindow.
	ExcludeExpired bool
	ExpiryWindow   time.Duration
	Now            time.Time
}

// ConvertMessage turns a full Gmail message into a sanitized Email. It returns
// nil when the message has no headers, is not addressed to the target inbox,
// or is expired and expired messages are excluded.
func ConvertMessage(msg *gmail.Message, opts ConvertOptions) *emaildomain.Email {
	if msg == nil || msg.Payload == nil || len(msg.Payload.Headers) == 0 {
		return nil
	}
	headers := msg.Payload.Headers

	if !MatchesInbox(headers, opts.TargetAddress) {
		return nil
	}

	receivedAt := GetHeader(headers, "date")
	if receivedAt == "" {
		receivedAt = opts.Now.UTC().Format(time.RFC3339)
	}

	if opts.ExcludeExpired && !IsWithinExpiryWindow(receivedAt, opts.ExpiryWindow, opts.Now) {
		return nil
	}

	rawBody, isHTML := ExtractBody(msg.Payload)
	var body, preview string
	if isHTML {
		body = sanitizer.SanitizeHTML(rawBody)
		preview = sanitizer.HTMLToPlainText(body)
	} else {
		body = sanitizer.SanitizePlainText(rawBody)
		preview = strings.Join(strings.Fields(rawBody), " ")
	}

	to := GetHeader(headers, "to")
	if to == "" {
		to = opts.TargetAddress
	}

	subject := GetHeader(headers, "subject")
	if subject == "" {
		subject = emaildomain.NoSubject
	}

	return &emaildomain.Email{
		ID:         msg.Id,
		From:       GetHeader(headers, "from"),
		To:         to,
		Subject:    subject,
		ReceivedAt: receivedAt,
		Body:       body,
		IsHTML:     isHTML,
		Preview:    sanitizer.Truncate(preview, previewLength),
	}
}
