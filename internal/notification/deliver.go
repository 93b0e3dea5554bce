package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/types/user"
)

// PushSender delivers one message to a set of device tokens.
type PushSender interface {
	SendPush(ctx context.Context, tokens []string, msg Message) error
}

type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Deliverer resolves the tokens of an intent and hands the message to a
// PushSender.
type Deliverer struct {
	users  UserLookup
	sender PushSender
}

func NewDeliverer(users UserLookup, sender PushSender) *Deliverer {
	return &Deliverer{users: users, sender: sender}
}

// Deliver sends in. Intents whose target has gone away or has no token are
// skipped without error.
func (d *Deliverer) Deliver(ctx context.Context, in Intent) error {
	tokens := in.Tokens
	if in.Kind != KindNewRound {
		u, err := d.users.GetUser(ctx, in.TargetUserID)
		if errors.Is(err, apperr.ErrNotFound) {
			log.Printf("Deliver: user %s no longer exists, skipping %s", in.TargetUserID, in.Kind)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve push token: %w", err)
		}
		if !u.HasPushToken() {
			log.Printf("Deliver: user %s has no push token, skipping %s", u.ID, in.Kind)
			return nil
		}
		tokens = []string{*u.PushToken}
	}

	if len(tokens) == 0 {
		return nil
	}
	return d.sender.SendPush(ctx, tokens, in.Message())
}

// LogSender only logs. It stands in when FCM is not configured.
type LogSender struct{}

func (LogSender) SendPush(ctx context.Context, tokens []string, msg Message) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), msg.Title, msg.Body)
	return nil
}
