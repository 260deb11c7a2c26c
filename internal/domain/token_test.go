package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenState(t *testing.T) {
	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	expiry := created.Add(time.Hour)

	fresh := Token{Token: "12345678", IsValid: true, CreatedAt: created, ExpiresAt: expiry}

	assert.Equal(t, TokenStateValid, fresh.State(created.Add(30*time.Minute)))
	assert.True(t, fresh.Usable(created.Add(30*time.Minute)))

	consumed := fresh
	consumed.IsValid = false
	assert.Equal(t, TokenStateConsumed, consumed.State(created.Add(30*time.Minute)))
	assert.False(t, consumed.Usable(created.Add(30*time.Minute)))
}

func TestTokenStateExpiryIsMonotonic(t *testing.T) {
	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	expiry := created.Add(time.Hour)

	token := Token{Token: "12345678", IsValid: true, CreatedAt: created, ExpiresAt: expiry}

	// Expired exactly at the deadline and at every later instant.
	assert.Equal(t, TokenStateExpired, token.State(expiry))
	assert.Equal(t, TokenStateExpired, token.State(expiry.Add(24*time.Hour)))

	// Consumption does not mask expiry.
	token.IsValid = false
	assert.Equal(t, TokenStateExpired, token.State(expiry.Add(time.Minute)))
}
