package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/types/question"
)

func (v *view) CreateQuestion(ctx context.Context, q *question.Question) error {
	return v.write(func(st *state) error {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		now := v.s.now()
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		q.UpdatedAt = now
		q.Responses = 0
		st.questions[q.ID] = cloneQuestion(q)
		return nil
	})
}

func (v *view) GetQuestion(ctx context.Context, id uuid.UUID) (*question.Question, error) {
	var out *question.Question
	err := v.read(func(st *state) error {
		q, ok := st.questions[id]
		if !ok {
			return notFound("question")
		}
		out = cloneQuestion(q)
		return nil
	})
	return out, err
}

func (v *view) SetNextQuestion(ctx context.Context, id, nextID uuid.UUID) error {
	return v.write(func(st *state) error {
		q, ok := st.questions[id]
		if !ok {
			return notFound("question")
		}
		next := nextID
		q.NextQuestionID = &next
		q.UpdatedAt = v.s.now()
		return nil
	})
}

func (v *view) ListQuestionsBefore(ctx context.Context, ts time.Time, t question.Type) ([]*question.Question, error) {
	var out []*question.Question
	err := v.read(func(st *state) error {
		for _, q := range st.questions {
			if q.Type == t && q.CreatedAt.Before(ts) {
				out = append(out, cloneQuestion(q))
			}
		}
		return nil
	})
	return out, err
}

func (v *view) IncrementResponses(ctx context.Context, questionID uuid.UUID) error {
	return v.write(func(st *state) error {
		q, ok := st.questions[questionID]
		if !ok {
			return notFound("question")
		}
		q.Responses++
		return nil
	})
}
