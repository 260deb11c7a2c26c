package dto

import (
	"time"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// EmailRecordResponse is the wire shape of a delivery outcome row.
type EmailRecordResponse struct {
	ID             int64             `json:"id"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientName  string            `json:"recipient_name"`
	Subject        string            `json:"subject"`
	Message        string            `json:"message"`
	CustomerID     *int64            `json:"customer_id,omitempty"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FromEmailRecords maps outcome rows onto the response shape.
func FromEmailRecords(records []domain.EmailRecord) []EmailRecordResponse {
	out := make([]EmailRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, EmailRecordResponse{
			ID:             record.ID,
			RecipientEmail: record.RecipientEmail,
			RecipientName:  record.RecipientName,
			Subject:        record.Subject,
			Message:        record.Message,
			CustomerID:     record.CustomerID,
			Status:         string(record.Status),
			Metadata:       record.Metadata,
			CreatedAt:      record.CreatedAt,
		})
	}
	return out
}
