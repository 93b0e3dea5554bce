package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"catchUpAPI/internal/notification"
)

type Deliverer interface {
	Deliver(ctx context.Context, in notification.Intent) error
}

// HandleDeliver decodes a notification task and delivers it. Malformed
// payloads are not retried.
func HandleDeliver(d Deliverer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var in notification.Intent
		if err := json.Unmarshal(t.Payload(), &in); err != nil {
			return fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
		return d.Deliver(ctx, in)
	}
}

type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer builds a worker that consumes the notification queue.
func NewServer(redisURL string, concurrency int, d Deliverer) (*Server, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse REDIS_URL: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{NotificationQueue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("asynq error: type=%s err=%v", task.Type(), err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeDeliverNotification, HandleDeliver(d))
	return &Server{server: srv, mux: mux}, nil
}

// Run processes tasks until ctx is canceled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}
