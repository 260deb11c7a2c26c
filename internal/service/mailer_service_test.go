package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

type fakeEmailRepo struct {
	records   []domain.EmailRecord
	createErr error
	failAfter int
	creates   int
}

func (f *fakeEmailRepo) Create(_ context.Context, record *domain.EmailRecord) error {
	f.creates++
	if f.createErr != nil && f.creates > f.failAfter {
		return f.createErr
	}
	record.ID = int64(len(f.records) + 1)
	record.CreatedAt = time.Now()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeEmailRepo) List(_ context.Context, limit, offset int) ([]domain.EmailRecord, error) {
	if offset >= len(f.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return append([]domain.EmailRecord(nil), f.records[offset:end]...), nil
}

func (f *fakeEmailRepo) Stats(_ context.Context) (*domain.EmailStats, error) {
	stats := &domain.EmailStats{}
	for _, record := range f.records {
		stats.Total++
		switch record.Status {
		case domain.EmailStatusSent:
			stats.Sent++
		case domain.EmailStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

type fakeDeliverer struct {
	err      error
	attempts int
}

func (f *fakeDeliverer) Deliver(_ context.Context, _ *domain.EmailJob) error {
	f.attempts++
	return f.err
}

func welcomeJob() *domain.EmailJob {
	customerID := int64(7)
	return &domain.EmailJob{
		JobID:          "job-1",
		RecipientEmail: "ana@example.com",
		RecipientName:  "Ana Torres",
		Subject:        "Welcome!",
		Message:        "Hello Ana",
		CustomerID:     &customerID,
	}
}

func TestProcessJobRecordsSentOutcome(t *testing.T) {
	repo := &fakeEmailRepo{}
	deliverer := &fakeDeliverer{}
	svc := NewMailerService(repo, deliverer, zap.NewNop())

	err := svc.ProcessJob(context.Background(), welcomeJob())
	require.NoError(t, err)

	assert.Equal(t, 1, deliverer.attempts)
	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, domain.EmailStatusSent, record.Status)
	assert.Equal(t, "ana@example.com", record.RecipientEmail)
	require.NotNil(t, record.CustomerID)
	assert.Equal(t, int64(7), *record.CustomerID)
}

func TestProcessJobDeliveryFailure(t *testing.T) {
	repo := &fakeEmailRepo{}
	deliverer := &fakeDeliverer{err: errors.New("smtp unavailable")}
	svc := NewMailerService(repo, deliverer, zap.NewNop())

	err := svc.ProcessJob(context.Background(), welcomeJob())
	require.Error(t, err)

	// The error propagates so the queue redelivers, but the failure itself
	// is recorded as an outcome row.
	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, domain.EmailStatusFailed, record.Status)
	assert.Equal(t, "smtp unavailable", record.Metadata["error"])
}

func TestProcessJobPersistenceFailure(t *testing.T) {
	repo := &fakeEmailRepo{createErr: errors.New("disk full")}
	deliverer := &fakeDeliverer{}
	svc := NewMailerService(repo, deliverer, zap.NewNop())

	err := svc.ProcessJob(context.Background(), welcomeJob())
	require.Error(t, err)

	// Delivery happened; the row did not. The job goes back for redelivery
	// and a duplicate send is the accepted trade-off.
	assert.Equal(t, 1, deliverer.attempts)
	assert.Empty(t, repo.records)
}

func TestHistoryAndStats(t *testing.T) {
	repo := &fakeEmailRepo{}
	svc := NewMailerService(repo, &fakeDeliverer{}, zap.NewNop())

	require.NoError(t, svc.ProcessJob(context.Background(), welcomeJob()))
	require.NoError(t, svc.ProcessJob(context.Background(), welcomeJob()))

	records, err := svc.History(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// A non-positive limit falls back to the default page size.
	records, err = svc.History(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(0), stats.Failed)
}
