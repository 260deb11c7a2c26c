// Package worker runs the queue consumer side of welcome email dispatch.
package worker

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/config"
	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
	"github.com/mangoesafterplay/customer-onboarding/internal/observability"
	"github.com/mangoesafterplay/customer-onboarding/internal/service"
)

// MailerWorker consumes welcome email jobs one at a time. Concurrency is
// pinned so at most one job is in flight per worker process; a crash loses at
// most that job back to redelivery. Multiple worker processes may run against
// the same queue.
type MailerWorker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	mailer  *service.MailerService
	metrics *observability.Metrics
	queue   string
	logger  *zap.Logger
}

// NewMailerWorker wires the asynq server against the shared Redis broker.
func NewMailerWorker(redisCfg config.RedisConfig, queueCfg config.QueueConfig, mailer *service.MailerService, metrics *observability.Metrics, logger *zap.Logger) *MailerWorker {
	concurrency := queueCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{queueCfg.WelcomeEmailQueue: 1},
		},
	)

	w := &MailerWorker{
		server:  server,
		mux:     asynq.NewServeMux(),
		mailer:  mailer,
		metrics: metrics,
		queue:   queueCfg.WelcomeEmailQueue,
		logger:  logger,
	}
	w.mux.HandleFunc(queueCfg.WelcomeEmailQueue, w.handleWelcomeEmail)
	return w
}

// Start begins consuming in the background.
func (w *MailerWorker) Start() error {
	w.logger.Info("mailer worker listening", zap.String("queue", w.queue))
	return w.server.Start(w.mux)
}

// Shutdown waits for the in-flight job, if any, then stops.
func (w *MailerWorker) Shutdown() {
	w.server.Shutdown()
}

// handleWelcomeEmail decodes and processes one task. Returning an error hands
// the task back to the broker for redelivery.
func (w *MailerWorker) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var job domain.EmailJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		w.logger.Error("malformed email job payload", zap.Error(err))
		w.metrics.RecordJob(w.queue, "malformed")
		return err
	}

	if err := w.mailer.ProcessJob(ctx, &job); err != nil {
		w.metrics.RecordJob(w.queue, "requeued")
		return err
	}
	w.metrics.RecordJob(w.queue, "processed")
	return nil
}
