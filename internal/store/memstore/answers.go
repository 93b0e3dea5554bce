package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/types/answer"
)

func (v *view) CreateAnswer(ctx context.Context, a *answer.Answer) error {
	return v.write(func(st *state) error {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if _, ok := st.answers[a.ID]; ok {
			return fmt.Errorf("failed to create answer: duplicate id %s", a.ID)
		}
		now := v.s.now()
		a.CreatedAt, a.UpdatedAt = now, now
		a.NextAnswerID = nil
		a.Reported = false
		st.answers[a.ID] = cloneAnswer(a)
		st.answerOrder = append(st.answerOrder, a.ID)
		return nil
	})
}

func (v *view) GetAnswer(ctx context.Context, id uuid.UUID) (*answer.Answer, error) {
	var out *answer.Answer
	err := v.read(func(st *state) error {
		a, ok := st.answers[id]
		if !ok {
			return notFound("answer")
		}
		out = cloneAnswer(a)
		return nil
	})
	return out, err
}

// LockAnswer is a plain read: transactions are already serialized.
func (v *view) LockAnswer(ctx context.Context, id uuid.UUID) (*answer.Answer, error) {
	return v.GetAnswer(ctx, id)
}

func (v *view) LinkAnswers(ctx context.Context, prevID, nextID uuid.UUID) error {
	return v.write(func(st *state) error {
		prev, ok := st.answers[prevID]
		if !ok {
			return notFound("answer")
		}
		if prev.NextAnswerID != nil {
			return fmt.Errorf("answer %s already has a successor: %w", prevID, apperr.ErrConflict)
		}
		next := nextID
		prev.NextAnswerID = &next
		prev.UpdatedAt = v.s.now()
		return nil
	})
}

func (v *view) filterAnswers(match func(a *answer.Answer) bool) ([]*answer.Answer, error) {
	var out []*answer.Answer
	err := v.read(func(st *state) error {
		for _, id := range st.answerOrder {
			if a := st.answers[id]; match(a) {
				out = append(out, cloneAnswer(a))
			}
		}
		return nil
	})
	return out, err
}

func (v *view) ListAnswersByAuthor(ctx context.Context, authorID uuid.UUID) ([]*answer.Answer, error) {
	return v.filterAnswers(func(a *answer.Answer) bool { return a.AuthorID == authorID })
}

func (v *view) ListAnswersAboutUser(ctx context.Context, userID uuid.UUID) ([]*answer.Answer, error) {
	return v.filterAnswers(func(a *answer.Answer) bool {
		return a.NomineeUserID != nil && *a.NomineeUserID == userID
	})
}

func (v *view) ListAnswersAboutUserForQuestion(ctx context.Context, userID, questionID uuid.UUID) ([]*answer.Answer, error) {
	return v.filterAnswers(func(a *answer.Answer) bool {
		return a.NomineeUserID != nil && *a.NomineeUserID == userID && a.QuestionID == questionID
	})
}

func (v *view) ListAnswersAboutAnonUser(ctx context.Context, anonID uuid.UUID) ([]*answer.Answer, error) {
	return v.filterAnswers(func(a *answer.Answer) bool {
		return a.NomineeAnonID != nil && *a.NomineeAnonID == anonID
	})
}

func (v *view) HasAnswered(ctx context.Context, authorID, questionID uuid.UUID) (bool, error) {
	found, err := v.filterAnswers(func(a *answer.Answer) bool {
		return a.AuthorID == authorID && a.QuestionID == questionID
	})
	return len(found) > 0, err
}

func (v *view) RepointAnonAnswers(ctx context.Context, anonID, userID uuid.UUID) (int, error) {
	changed := 0
	err := v.write(func(st *state) error {
		for _, a := range st.answers {
			if a.NomineeAnonID == nil || *a.NomineeAnonID != anonID {
				continue
			}
			answer.UserPayload(userID).Apply(a)
			a.UpdatedAt = v.s.now()
			changed++
		}
		return nil
	})
	return changed, err
}

func (v *view) SetReported(ctx context.Context, answerID uuid.UUID) error {
	return v.write(func(st *state) error {
		a, ok := st.answers[answerID]
		if !ok {
			return notFound("answer")
		}
		a.Reported = true
		a.UpdatedAt = v.s.now()
		return nil
	})
}
