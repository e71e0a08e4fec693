package gmail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-message/charset"
	"google.golang.org/api/gmail/v1"
)

// Recipient headers checked in order by MatchesInbox. Catch-all routing may
// rewrite the recipient into any of them depending on the forwarding path.
var recipientHeaders = []string{"to", "delivered-to", "x-original-to", "x-forwarded-to"}

// GetHeader returns the value of the first header named name, compared
// case-insensitively, or "".
func GetHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// MatchesInbox reports whether any recipient header contains target. The
// comparison is a substring match so "Name" <addr> forms are accepted.
func MatchesInbox(headers []*gmail.MessagePartHeader, target string) bool {
	target = strings.ToLower(target)
	if target == "" {
		return false
	}
	for _, name := range recipientHeaders {
		if strings.Contains(strings.ToLower(GetHeader(headers, name)), target) {
			return true
		}
	}
	return false
}

// ParseReceivedAt parses a Date header or an RFC 3339 timestamp.
func ParseReceivedAt(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(value); err == nil {
		return t, true
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsWithinExpiryWindow reports whether a message received at receivedAt is
// still live at now, given a retention window. Unparseable timestamps count
// as expired.
func IsWithinExpiryWindow(receivedAt string, window time.Duration, now time.Time) bool {
	t, ok := ParseReceivedAt(receivedAt)
	if !ok {
		return false
	}
	return !t.Before(now.Add(-window))
}

// ExtractBody finds the displayable body of a message payload and reports
// whether it is HTML. The returned body is decoded but not sanitized.
//
// A direct body wins. Otherwise the first text/html part, then the first
// text/plain part of this level is used, and finally nested multiparts are
// searched depth-first; the first non-empty result is returned.
func ExtractBody(part *gmail.MessagePart) (string, bool) {
	if part == nil {
		return "", false
	}

	if part.Body != nil && part.Body.Data != "" {
		mimeType := part.MimeType
		if mimeType == "" {
			mimeType = "text/plain"
		}
		return decodePart(part), strings.Contains(mimeType, "html")
	}

	if len(part.Parts) == 0 {
		return "", false
	}

	if html := findPart(part.Parts, "text/html"); html != nil && html.Body != nil && html.Body.Data != "" {
		return decodePart(html), true
	}

	if plain := findPart(part.Parts, "text/plain"); plain != nil && plain.Body != nil && plain.Body.Data != "" {
		return decodePart(plain), false
	}

	for _, p := range part.Parts {
		if p != nil && len(p.Parts) > 0 {
			if body, isHTML := ExtractBody(p); body != "" {
				return body, isHTML
			}
		}
	}

	return "", false
}

func findPart(parts []*gmail.MessagePart, mimeType string) *gmail.MessagePart {
	for _, p := range parts {
		if p != nil && p.MimeType == mimeType {
			return p
		}
	}
	return nil
}

// decodePart decodes a part's body data and converts it to UTF-8 using the
// charset declared in its Content-Type header.
func decodePart(part *gmail.MessagePart) string {
	data := DecodeBase64URL(part.Body.Data)
	if len(data) == 0 {
		return ""
	}

	if cs := partCharset(part); cs != "" {
		if r, err := charset.Reader(cs, bytes.NewReader(data)); err == nil {
			if converted, err := io.ReadAll(r); err == nil {
				data = converted
			}
		}
	}

	return strings.ToValidUTF8(string(data), "\uFFFD")
}

func partCharset(part *gmail.MessagePart) string {
	contentType := GetHeader(part.Headers, "Content-Type")
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	if cs == "utf-8" || cs == "utf8" || cs == "us-ascii" {
		return ""
	}
	return cs
}

// DecodeBase64URL decodes Gmail's base64url body data. Padding and the
// standard alphabet are tolerated; malformed input yields nil.
func DecodeBase64URL(data string) []byte {
	data = strings.TrimRight(strings.TrimSpace(data), "=")
	data = strings.NewReplacer("+", "-", "/", "_", "\r", "", "\n", "").Replace(data)

	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}
	return decoded
}
