package domain

import "time"

// TokenLength is the fixed width of a registration token.
const TokenLength = 8

// TokenState classifies the outcome of a token validation.
type TokenState string

const (
	TokenStateValid    TokenState = "VALID"
	TokenStateNotFound TokenState = "NOT_FOUND"
	TokenStateConsumed TokenState = "CONSUMED"
	TokenStateExpired  TokenState = "EXPIRED"
)

// Token is a short-lived, single-use credential gating customer registration.
type Token struct {
	ID        int64
	Token     string
	IsValid   bool
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Usable reports whether the token can still authorize a registration at the
// given instant. Consumption flips IsValid permanently; expiry is evaluated at
// read time and never written back.
func (t *Token) Usable(now time.Time) bool {
	return t.IsValid && now.Before(t.ExpiresAt)
}

// State classifies the token at the given instant. Expiry takes precedence:
// past its deadline a token reports Expired regardless of whether it was also
// consumed.
func (t *Token) State(now time.Time) TokenState {
	if !now.Before(t.ExpiresAt) {
		return TokenStateExpired
	}
	if !t.IsValid {
		return TokenStateConsumed
	}
	return TokenStateValid
}

// TokenStats aggregates counts over all issued tokens.
type TokenStats struct {
	Total   int64 `json:"total"`
	Valid   int64 `json:"valid"`
	Used    int64 `json:"used"`
	Expired int64 `json:"expired"`
}
