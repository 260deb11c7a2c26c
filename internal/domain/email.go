package domain

import "time"

// EmailStatus represents the persisted outcome of a delivery attempt.
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailJob is the message body placed on the welcome email queue. Delivery is
// at-least-once: a crash between delivery and acknowledgment redelivers the
// job, which may produce a duplicate outcome record.
type EmailJob struct {
	JobID          string            `json:"job_id"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientName  string            `json:"recipient_name"`
	Subject        string            `json:"subject"`
	Message        string            `json:"message"`
	CustomerID     *int64            `json:"customer_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// EmailRecord is a persisted delivery outcome row. Terminal and never deleted.
type EmailRecord struct {
	ID             int64
	RecipientEmail string
	RecipientName  string
	Subject        string
	Message        string
	CustomerID     *int64
	Status         EmailStatus
	Metadata       map[string]string
	CreatedAt      time.Time
}

// EmailStats aggregates outcome counts.
type EmailStats struct {
	Total  int64 `json:"total"`
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}
