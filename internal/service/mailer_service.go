package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/repository"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// Deliverer performs the actual email delivery for a job.
type Deliverer interface {
	Deliver(ctx context.Context, job *domain.EmailJob) error
}

// LogDeliverer simulates delivery by rendering the email to the log. Stands in
// for a real provider integration.
type LogDeliverer struct {
	logger *zap.Logger
}

// NewLogDeliverer builds the simulated deliverer.
func NewLogDeliverer(logger *zap.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

// Deliver logs the rendered email.
func (d *LogDeliverer) Deliver(_ context.Context, job *domain.EmailJob) error {
	d.logger.Info("simulated email delivery",
		zap.String("to", job.RecipientEmail),
		zap.String("name", job.RecipientName),
		zap.String("subject", job.Subject),
		zap.String("message", job.Message))
	return nil
}

// MailerService processes welcome email jobs pulled off the queue. An error
// returned from ProcessJob propagates to the queue runtime, which redelivers
// the job; a crash mid-attempt has the same effect. Duplicate outcome rows
// after redelivery are the accepted at-least-once trade-off.
type MailerService struct {
	emails    repository.EmailRepository
	deliverer Deliverer
	logger    *zap.Logger
}

// NewMailerService builds the service.
func NewMailerService(emails repository.EmailRepository, deliverer Deliverer, logger *zap.Logger) *MailerService {
	return &MailerService{emails: emails, deliverer: deliverer, logger: logger}
}

// ProcessJob delivers one job and persists its outcome row.
func (s *MailerService) ProcessJob(ctx context.Context, job *domain.EmailJob) error {
	s.logger.Info("processing welcome email job",
		zap.String("job_id", job.JobID),
		zap.String("recipient", job.RecipientEmail))

	if err := s.deliverer.Deliver(ctx, job); err != nil {
		s.logger.Error("email delivery failed", zap.String("job_id", job.JobID), zap.Error(err))
		s.recordFailure(ctx, job, err)
		return err
	}

	record := outcomeRecord(job, domain.EmailStatusSent)
	if err := s.emails.Create(ctx, record); err != nil {
		s.logger.Error("could not persist delivery outcome", zap.String("job_id", job.JobID), zap.Error(err))
		s.recordFailure(ctx, job, err)
		return err
	}

	s.logger.Info("welcome email processed", zap.String("job_id", job.JobID), zap.Int64("record_id", record.ID))
	return nil
}

// recordFailure makes a best-effort attempt to log the failure itself as an
// outcome row before the job is handed back for redelivery.
func (s *MailerService) recordFailure(ctx context.Context, job *domain.EmailJob, cause error) {
	record := outcomeRecord(job, domain.EmailStatusFailed)
	record.Metadata = map[string]string{"error": cause.Error()}
	if err := s.emails.Create(ctx, record); err != nil {
		s.logger.Error("could not persist failure outcome", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

// History returns a page of delivery outcome rows, newest first.
func (s *MailerService) History(ctx context.Context, limit, offset int) ([]domain.EmailRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.emails.List(ctx, limit, offset)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return records, nil
}

// Stats returns aggregate outcome counts.
func (s *MailerService) Stats(ctx context.Context) (*domain.EmailStats, error) {
	stats, err := s.emails.Stats(ctx)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return stats, nil
}

func outcomeRecord(job *domain.EmailJob, status domain.EmailStatus) *domain.EmailRecord {
	return &domain.EmailRecord{
		RecipientEmail: job.RecipientEmail,
		RecipientName:  job.RecipientName,
		Subject:        job.Subject,
		Message:        job.Message,
		CustomerID:     job.CustomerID,
		Status:         status,
		Metadata:       job.Metadata,
	}
}
