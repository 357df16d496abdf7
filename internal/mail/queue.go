package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeSendEmail is the asynq task type carrying a Message.
const TypeSendEmail = "email:send"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueMailer enqueues messages for a Worker to deliver, so HTTP requests do
// not wait on the SMTP relay.
type QueueMailer struct {
	client enqueuer
}

// NewQueueMailer accepts an *asynq.Client.
func NewQueueMailer(client enqueuer) *QueueMailer { return &QueueMailer{client: client} }

func (q *QueueMailer) Send(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeSendEmail, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeSendEmail, err)
	}
	return nil
}

// NewSendEmailHandler returns the asynq handler that delivers queued
// messages through next.  Malformed payloads are not retried.
func NewSendEmailHandler(next Mailer, log *zap.Logger) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var m Message
		if err := json.Unmarshal(t.Payload(), &m); err != nil {
			log.Error("error unmarshal email payload", zap.Error(err))
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := m.validate(); err != nil {
			log.Error("error validate email payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := next.Send(ctx, m); err != nil {
			log.Warn("email delivery failed", zap.String("to", m.To), zap.Error(err))
			return err
		}
		log.Info("email delivered", zap.String("to", m.To), zap.String("subject", m.Subject))
		return nil
	}
}

// Worker runs the asynq server that processes TypeSendEmail tasks.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(opt asynq.RedisConnOpt, next Mailer, log *zap.Logger) *Worker {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 10,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSendEmail, NewSendEmailHandler(next, log))
	return &Worker{srv: srv, mux: mux}
}

// Start begins processing in background goroutines.
func (w *Worker) Start() error { return w.srv.Start(w.mux) }

// Shutdown waits for in-flight tasks and stops the server.
func (w *Worker) Shutdown() { w.srv.Shutdown() }
