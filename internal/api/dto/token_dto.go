package dto

import "time"

// TokenRequest carries a token value for validate/mark-used calls.
type TokenRequest struct {
	Token string `json:"token"`
}

// TokenData is the wire shape of an issued token.
type TokenData struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenConsumedData is the wire shape of a consumed token.
type TokenConsumedData struct {
	ID     int64      `json:"id"`
	Token  string     `json:"token"`
	UsedAt *time.Time `json:"usedAt"`
}
