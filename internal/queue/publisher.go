// Package queue wraps the durable welcome email queue. Tasks live in Redis
// via asynq and survive broker restarts; delivery to the worker is
// at-least-once.
package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mangoesafterplay/customer-onboarding/internal/config"
	"github.com/mangoesafterplay/customer-onboarding/internal/domain"
)

// Publisher enqueues welcome email jobs for the mailer worker.
type Publisher interface {
	Publish(ctx context.Context, job *domain.EmailJob) error
	Close() error
}

type asynqPublisher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	logger   *zap.Logger
}

// NewPublisher connects a queue producer using the shared Redis instance.
func NewPublisher(redisCfg config.RedisConfig, queueCfg config.QueueConfig, logger *zap.Logger) Publisher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	return &asynqPublisher{
		client:   client,
		queue:    queueCfg.WelcomeEmailQueue,
		maxRetry: queueCfg.MaxRetry,
		logger:   logger,
	}
}

// Publish enqueues one persistent task on the named queue. An error here means
// the broker did not accept the message; the caller decides whether that is
// fatal.
func (p *asynqPublisher) Publish(ctx context.Context, job *domain.EmailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	task := asynq.NewTask(p.queue, payload,
		asynq.Queue(p.queue),
		asynq.TaskID(job.JobID),
		asynq.MaxRetry(p.maxRetry))

	info, err := p.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	p.logger.Info("welcome email job enqueued",
		zap.String("job_id", job.JobID),
		zap.String("queue", info.Queue),
		zap.String("recipient", job.RecipientEmail))
	return nil
}

func (p *asynqPublisher) Close() error {
	return p.client.Close()
}
