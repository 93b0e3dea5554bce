package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/notification"
)

// IntentDeliverer delivers one notification intent.
type IntentDeliverer interface {
	Deliver(ctx context.Context, in notification.Intent) error
}

const dispatchQueueSize = 100

// NotificationDispatcher delivers intents in-process through a small worker
// pool. It is used when no Redis queue is configured.
type NotificationDispatcher struct {
	deliverer IntentDeliverer
	workers   int
	jobQueue  chan notification.Intent
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

func NewNotificationDispatcher(deliverer IntentDeliverer, workers int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 5
	}
	dispatcher := &NotificationDispatcher{
		deliverer: deliverer,
		workers:   workers,
		jobQueue:  make(chan notification.Intent, dispatchQueueSize),
		stopChan:  make(chan struct{}),
	}

	dispatcher.startWorkers()
	return dispatcher
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case in := <-d.jobQueue:
			d.processJob(in)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(in notification.Intent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.deliverer.Deliver(ctx, in); err != nil {
		log.Printf("Push failed for %s intent (target %s): %v", in.Kind, in.TargetUserID, err)
	}
}

// dispatch queues in without waiting. A full queue drops the intent.
func (d *NotificationDispatcher) dispatch(in notification.Intent) {
	select {
	case <-d.stopChan:
		log.Printf("Dropping %s notification: dispatcher stopped", in.Kind)
		return
	default:
	}

	select {
	case d.jobQueue <- in:
		metrics.NotificationIntents.WithLabelValues(string(in.Kind)).Inc()
	default:
		log.Printf("Dropping %s notification: queue full", in.Kind)
	}
}

func (d *NotificationDispatcher) NotifyAnswered(ctx context.Context, targetUserID uuid.UUID, payload notification.AnsweredPayload) {
	d.dispatch(notification.Intent{Kind: notification.KindAnswered, TargetUserID: targetUserID, Answered: &payload})
}

func (d *NotificationDispatcher) NotifyNewRound(ctx context.Context, tokens []string) {
	d.dispatch(notification.Intent{Kind: notification.KindNewRound, Tokens: tokens})
}

func (d *NotificationDispatcher) NotifyFriendRequest(ctx context.Context, targetUserID uuid.UUID) {
	d.dispatch(notification.Intent{Kind: notification.KindFriendRequest, TargetUserID: targetUserID})
}

// Stop the dispatcher gracefully. Intents still queued are dropped.
func (d *NotificationDispatcher) Stop() {
	log.Println("Stopping notification dispatcher...")
	close(d.stopChan)
	d.wg.Wait()
	log.Println("Notification dispatcher stopped")
}
