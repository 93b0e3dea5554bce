// Package queue hands notification intents to asynq so a separate worker
// process delivers them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/notification"
)

const (
	TypeDeliverNotification = "notification:deliver"
	NotificationQueue       = "notifications"

	maxRetry = 3
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier enqueues one asynq task per intent. Enqueue failures are logged
// and dropped; the request that raised the intent never fails because of it.
type Notifier struct {
	client enqueuer
	closer func() error
}

// NewNotifier connects an asynq client to the Redis server at redisURL.
func NewNotifier(redisURL string) (*Notifier, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse REDIS_URL: %w", err)
	}
	c := asynq.NewClient(opt)
	return &Notifier{client: c, closer: c.Close}, nil
}

func NewTask(in notification.Intent) (*asynq.Task, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode intent: %w", err)
	}
	return asynq.NewTask(TypeDeliverNotification, payload), nil
}

func (n *Notifier) enqueue(ctx context.Context, in notification.Intent) {
	task, err := NewTask(in)
	if err != nil {
		log.Printf("Notifier: %v", err)
		return
	}

	info, err := n.client.EnqueueContext(ctx, task, asynq.Queue(NotificationQueue), asynq.MaxRetry(maxRetry))
	if err != nil {
		log.Printf("Notifier: failed to enqueue %s intent: %v", in.Kind, err)
		return
	}
	metrics.NotificationIntents.WithLabelValues(string(in.Kind)).Inc()
	log.Printf("Notifier: %s intent queued as task %s", in.Kind, info.ID)
}

func (n *Notifier) NotifyAnswered(ctx context.Context, targetUserID uuid.UUID, payload notification.AnsweredPayload) {
	n.enqueue(ctx, notification.Intent{Kind: notification.KindAnswered, TargetUserID: targetUserID, Answered: &payload})
}

func (n *Notifier) NotifyNewRound(ctx context.Context, tokens []string) {
	n.enqueue(ctx, notification.Intent{Kind: notification.KindNewRound, Tokens: tokens})
}

func (n *Notifier) NotifyFriendRequest(ctx context.Context, targetUserID uuid.UUID) {
	n.enqueue(ctx, notification.Intent{Kind: notification.KindFriendRequest, TargetUserID: targetUserID})
}

func (n *Notifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer()
}
