// Package rotation resolves the question of the day. Nothing is cached: the
// answer is recomputed from the store on every call.
package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/question"
)

const defaultMaxLength = 512

type Selector struct {
	maxLength int
}

// New returns a Selector whose walks stop after maxLength questions.
func New(maxLength int) *Selector {
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}
	return &Selector{maxLength: maxLength}
}

// origin picks the first question of the most recently started batch. Ties on
// CreatedAt go to the lowest Position and then to the lowest ID.
func origin(candidates []*question.Question) *question.Question {
	var best *question.Question
	for _, q := range candidates {
		switch {
		case best == nil,
			q.CreatedAt.After(best.CreatedAt),
			q.CreatedAt.Equal(best.CreatedAt) && q.Position < best.Position,
			q.CreatedAt.Equal(best.CreatedAt) && q.Position == best.Position && q.ID.String() < best.ID.String():
			best = q
		}
	}
	return best
}

// Batch returns the rotation batch in effect at now, from its origin to its
// tail. It returns nil when no rotation question has started yet.
func (s *Selector) Batch(ctx context.Context, q store.Queries, now time.Time) ([]*question.Question, error) {
	candidates, err := q.ListQuestionsBefore(ctx, now, question.TypeUser)
	if err != nil {
		return nil, err
	}

	cur := origin(candidates)
	if cur == nil {
		return nil, nil
	}

	batch := []*question.Question{cur}
	visited := map[uuid.UUID]struct{}{cur.ID: {}}
	for cur.NextQuestionID != nil {
		if len(batch) >= s.maxLength {
			return nil, fmt.Errorf("question chain from %s exceeds %d questions: %w", batch[0].ID, s.maxLength, apperr.ErrIntegrity)
		}
		if _, seen := visited[*cur.NextQuestionID]; seen {
			return nil, fmt.Errorf("question chain from %s revisits %s: %w", batch[0].ID, *cur.NextQuestionID, apperr.ErrIntegrity)
		}
		next, err := q.GetQuestion(ctx, *cur.NextQuestionID)
		if err != nil {
			return nil, err
		}
		visited[next.ID] = struct{}{}
		batch = append(batch, next)
		cur = next
	}
	return batch, nil
}

// Current returns the tail of the batch in effect at now, or nil when there
// is none. An absent question is not an error.
func (s *Selector) Current(ctx context.Context, q store.Queries, now time.Time) (*question.Question, error) {
	batch, err := s.Batch(ctx, q, now)
	if err != nil || len(batch) == 0 {
		return nil, err
	}
	return batch[len(batch)-1], nil
}
