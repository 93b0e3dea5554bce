package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/notification"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/user"
)

// Notifier receives notification intents. Implementations hand them off and
// return at once; delivery failures stay on their side.
type Notifier interface {
	NotifyAnswered(ctx context.Context, targetUserID uuid.UUID, payload notification.AnsweredPayload)
	NotifyNewRound(ctx context.Context, tokens []string)
	NotifyFriendRequest(ctx context.Context, targetUserID uuid.UUID)
}

// Alerter tells moderators about reported answers.
type Alerter interface {
	AnswerReported(ctx context.Context, answerID, reporterID uuid.UUID) error
}

// GraphMirror receives friend-graph changes after they commit.
type GraphMirror interface {
	AddUser(ctx context.Context, id uuid.UUID) error
	AddFriendship(ctx context.Context, a, b uuid.UUID) error
}

func currentUser(ctx context.Context, q store.Queries, clerkID string) (*user.User, error) {
	u, err := q.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return u, nil
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", what, raw, apperr.ErrValidation)
	}
	return id, nil
}

// checkIntegrity records corrupted chains before the error goes up.
func checkIntegrity(op string, err error) error {
	if errors.Is(err, apperr.ErrIntegrity) {
		metrics.ChainIntegrityErrors.WithLabelValues(op).Inc()
		log.Printf("%s: chain integrity violation: %v", op, err)
	}
	return err
}
