package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/notification"
	"catchUpAPI/internal/rotation"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/user"
)

type AnswerService struct {
	store    store.Store
	chain    *chain.Engine
	rotation *rotation.Selector
	notifier Notifier
	now      func() time.Time
}

func NewAnswerService(st store.Store, engine *chain.Engine, selector *rotation.Selector, notifier Notifier) *AnswerService {
	return &AnswerService{
		store:    st,
		chain:    engine,
		rotation: selector,
		notifier: notifier,
		now:      time.Now,
	}
}

// nominee is who a nomination answer names once the phone number is resolved.
type nominee struct {
	user *user.User
	anon *user.AnonUser
}

func (n nominee) payload() answer.Payload {
	if n.user != nil {
		return answer.UserPayload(n.user.ID)
	}
	return answer.AnonUserPayload(n.anon.ID)
}

// resolveNominee finds the account behind phone, creating a placeholder
// AnonUser when nobody has signed up with it yet.
func resolveNominee(ctx context.Context, q store.Queries, phone string) (nominee, error) {
	u, err := q.GetUserByPhone(ctx, phone)
	if err == nil {
		return nominee{user: u}, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nominee{}, err
	}

	anon, err := q.GetAnonUserByPhone(ctx, phone)
	if err == nil {
		return nominee{anon: anon}, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nominee{}, err
	}

	anon = &user.AnonUser{PhoneNumber: phone}
	if err := q.CreateAnonUser(ctx, anon); err != nil {
		return nominee{}, err
	}
	return nominee{anon: anon}, nil
}

// AnswerQuestion records the current user's answer. USER and ANON_USER answers
// carry the nominee's phone number; a number without an account becomes an
// AnonUser nomination. A user who blocked the author cannot be nominated.
func (s *AnswerService) AnswerQuestion(ctx context.Context, clerkID string, req *answer.AnswerQuestionRequest) (*answer.Answer, error) {
	questionID, err := parseID(req.QuestionID, "question id")
	if err != nil {
		return nil, err
	}
	var previousID *uuid.UUID
	if req.PreviousAnswerID != nil && *req.PreviousAnswerID != "" {
		id, err := parseID(*req.PreviousAnswerID, "previous answer id")
		if err != nil {
			return nil, err
		}
		previousID = &id
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown answer type %q: %w", req.Type, apperr.ErrValidation)
	}

	var created *answer.Answer
	var named nominee

	err = s.store.InTx(ctx, func(q store.Queries) error {
		author, err := currentUser(ctx, q, clerkID)
		if err != nil {
			return err
		}

		payload := answer.TextPayload(req.Answer)
		if req.Type.IsNomination() {
			phone := strings.TrimSpace(req.Answer)
			if phone == "" {
				return fmt.Errorf("nominee phone number is empty: %w", apperr.ErrValidation)
			}
			named, err = resolveNominee(ctx, q, phone)
			if err != nil {
				return err
			}
			if named.user != nil {
				blocked, err := q.IsBlocked(ctx, named.user.ID, author.ID)
				if err != nil {
					return err
				}
				if blocked {
					return fmt.Errorf("user %s blocked %s: %w", named.user.ID, author.ID, apperr.ErrForbidden)
				}
			}
			payload = named.payload()
		}

		created, err = s.chain.AppendAnswer(ctx, q, questionID, author.ID, payload, previousID)
		return err
	})
	if err != nil {
		log.Printf("AnswerQuestion: failed for %s: %v", clerkID, err)
		return nil, checkIntegrity("AnswerQuestion", err)
	}

	if named.user != nil && named.user.HasPushToken() {
		s.notifier.NotifyAnswered(ctx, named.user.ID, notification.AnsweredPayload{
			AnswerID:   created.ID,
			QuestionID: created.QuestionID,
		})
	}

	return created, nil
}

func (s *AnswerService) GetChain(ctx context.Context, answerID string) ([]*answer.Answer, error) {
	id, err := parseID(answerID, "answer id")
	if err != nil {
		return nil, err
	}
	chain, err := s.chain.TraverseChain(ctx, s.store, id)
	return chain, checkIntegrity("GetChain", err)
}

// UserAnswerExists reports whether the current user answered the question of
// the day. It is false when there is no question of the day.
func (s *AnswerService) UserAnswerExists(ctx context.Context, clerkID string) (bool, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return false, err
	}
	current, err := s.rotation.Current(ctx, s.store, s.now())
	if err != nil || current == nil {
		return false, checkIntegrity("UserAnswerExists", err)
	}
	return s.store.HasAnswered(ctx, me.ID, current.ID)
}
