package domain

import "time"

// ParamEmailSendingEnabled gates whether welcome emails are dispatched at all.
const ParamEmailSendingEnabled = "EMAIL_SENDING_ENABLED"

// Parameter is a persisted configuration flag. The authoritative value lives
// in the store; the cache may serve a value stale by up to its TTL.
type Parameter struct {
	Key         string
	Value       string
	Description string
	UpdatedAt   time.Time
}
