package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDomains(t *testing.T) {
	assert.Equal(t, []string{"example.com", "mail.test"}, ParseDomains(" Example.com , ,MAIL.test"))
	assert.Empty(t, ParseDomains(""))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ALLOWED_DOMAINS", "a.io,B.io")
	t.Setenv("EMAIL_EXPIRY_HOURS", "48")
	t.Setenv("GMAIL_CALL_TIMEOUT", "3s")
	t.Setenv("GMAIL_FETCH_CONCURRENCY", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"a.io", "b.io"}, cfg.AllowedDomains)
	assert.Equal(t, uint(48), cfg.EmailExpiryHours)
	assert.Equal(t, 3*time.Second, cfg.GmailCallTimeout)
	assert.Equal(t, 10, cfg.GmailFetchConcurrency)
	assert.Equal(t, "Temp", cfg.GmailLabel)
}
