package domain

import "strings"

// MaxInboxNameLength is the longest accepted local part.
const MaxInboxNameLength = 64

// NormalizeInboxName lower-cases and trims an inbox name.
func NormalizeInboxName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BuildAddress joins an inbox name and a domain into the lower-cased address
// used to match recipient headers.
func BuildAddress(name, domain string) string {
	return NormalizeInboxName(name) + "@" + strings.ToLower(domain)
}
