// Package chain builds and walks the singly linked revision chains of answers
// and questions. Chains live in the store and are addressed by ID; every walk
// re-reads the store and is bounded by a step budget.
//
// Engine methods take a store.Queries so callers can compose them inside one
// store transaction. Writes are only atomic when q is a transaction handle.
package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/question"
)

const DefaultMaxLength = 512

type Engine struct {
	maxLength int
}

// New returns an Engine that refuses to walk more than maxLength links.
// A non-positive maxLength selects DefaultMaxLength.
func New(maxLength int) *Engine {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Engine{maxLength: maxLength}
}

func (e *Engine) MaxLength() int {
	return e.maxLength
}

func validatePayload(p answer.Payload) error {
	if !p.Type.Valid() {
		return fmt.Errorf("unknown answer type %q: %w", p.Type, apperr.ErrValidation)
	}
	if p.Type == answer.TypeText && strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("text answer is empty: %w", apperr.ErrValidation)
	}
	if p.Type.IsNomination() && p.TargetID == uuid.Nil {
		return fmt.Errorf("nomination has no target: %w", apperr.ErrValidation)
	}
	return nil
}

// AppendAnswer creates an answer and, when previousID is set, links it after
// that answer. The previous answer is locked first and must still be the tail
// of its chain; a lost race surfaces as apperr.ErrConflict.
func (e *Engine) AppendAnswer(ctx context.Context, q store.Queries, questionID, authorID uuid.UUID, p answer.Payload, previousID *uuid.UUID) (*answer.Answer, error) {
	if err := validatePayload(p); err != nil {
		return nil, err
	}

	if _, err := q.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}

	var prev *answer.Answer
	if previousID != nil {
		var err error
		prev, err = q.LockAnswer(ctx, *previousID)
		if err != nil {
			return nil, err
		}
		if prev.QuestionID != questionID {
			return nil, fmt.Errorf("answer %s belongs to question %s, not %s: %w",
				prev.ID, prev.QuestionID, questionID, apperr.ErrValidation)
		}
		if prev.NextAnswerID != nil {
			return nil, fmt.Errorf("answer %s already revised by %s: %w", prev.ID, *prev.NextAnswerID, apperr.ErrConflict)
		}
	}

	a := &answer.Answer{
		ID:         uuid.New(),
		QuestionID: questionID,
		AuthorID:   authorID,
	}
	p.Apply(a)
	if prev != nil {
		prevID := prev.ID
		a.PreviousAnswerID = &prevID
	}

	if err := q.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}

	if prev != nil {
		if err := q.LinkAnswers(ctx, prev.ID, a.ID); err != nil {
			return nil, err
		}
	}

	if p.Type.IsNomination() {
		if err := q.IncrementResponses(ctx, questionID); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// TraverseChain returns the chain starting at originID in link order. Each
// call reads the store afresh. A repeated answer, a broken back pointer or a
// chain longer than the budget is reported as apperr.ErrIntegrity.
func (e *Engine) TraverseChain(ctx context.Context, q store.Queries, originID uuid.UUID) ([]*answer.Answer, error) {
	origin, err := q.GetAnswer(ctx, originID)
	if err != nil {
		return nil, err
	}

	chain := []*answer.Answer{origin}
	visited := map[uuid.UUID]struct{}{origin.ID: {}}

	for cur := origin; cur.NextAnswerID != nil; {
		if len(chain) >= e.maxLength {
			return nil, fmt.Errorf("chain from %s exceeds %d answers: %w", originID, e.maxLength, apperr.ErrIntegrity)
		}
		if _, seen := visited[*cur.NextAnswerID]; seen {
			return nil, fmt.Errorf("chain from %s revisits answer %s: %w", originID, *cur.NextAnswerID, apperr.ErrIntegrity)
		}

		next, err := q.GetAnswer(ctx, *cur.NextAnswerID)
		if err != nil {
			return nil, err
		}
		if next.PreviousAnswerID == nil || *next.PreviousAnswerID != cur.ID {
			return nil, fmt.Errorf("answer %s does not point back to %s: %w", next.ID, cur.ID, apperr.ErrIntegrity)
		}

		visited[next.ID] = struct{}{}
		chain = append(chain, next)
		cur = next
	}

	return chain, nil
}

// rootOf walks previous pointers from a to the first answer of its chain.
func (e *Engine) rootOf(ctx context.Context, q store.Queries, a *answer.Answer) (*answer.Answer, error) {
	visited := map[uuid.UUID]struct{}{a.ID: {}}
	cur := a
	for cur.PreviousAnswerID != nil {
		if len(visited) >= e.maxLength {
			return nil, fmt.Errorf("chain behind %s exceeds %d answers: %w", a.ID, e.maxLength, apperr.ErrIntegrity)
		}
		if _, seen := visited[*cur.PreviousAnswerID]; seen {
			return nil, fmt.Errorf("chain behind %s revisits answer %s: %w", a.ID, *cur.PreviousAnswerID, apperr.ErrIntegrity)
		}
		prev, err := q.GetAnswer(ctx, *cur.PreviousAnswerID)
		if err != nil {
			return nil, err
		}
		visited[prev.ID] = struct{}{}
		cur = prev
	}
	return cur, nil
}

// GroupChainsByRoot partitions answers into the full chains they belong to,
// in the order their first member appears in answers. Every answer is
// emitted at most once. Chains of a single answer carry no revision history
// and are left out.
func (e *Engine) GroupChainsByRoot(ctx context.Context, q store.Queries, answers []*answer.Answer) ([][]*answer.Answer, error) {
	visited := map[uuid.UUID]struct{}{}
	chains := [][]*answer.Answer{}

	for _, a := range answers {
		if _, seen := visited[a.ID]; seen {
			continue
		}

		root, err := e.rootOf(ctx, q, a)
		if err != nil {
			return nil, err
		}
		chain, err := e.TraverseChain(ctx, q, root.ID)
		if err != nil {
			return nil, err
		}

		for _, member := range chain {
			visited[member.ID] = struct{}{}
		}
		if len(chain) > 1 {
			chains = append(chains, chain)
		}
	}

	return chains, nil
}

// AppendQuestion creates qn and links it after previousID when set.
func (e *Engine) AppendQuestion(ctx context.Context, q store.Queries, qn *question.Question, previousID *uuid.UUID) (*question.Question, error) {
	if !qn.Type.Valid() {
		return nil, fmt.Errorf("unknown question type %q: %w", qn.Type, apperr.ErrValidation)
	}
	if strings.TrimSpace(qn.Text) == "" {
		return nil, fmt.Errorf("question text is empty: %w", apperr.ErrValidation)
	}

	var prev *question.Question
	if previousID != nil {
		var err error
		prev, err = q.GetQuestion(ctx, *previousID)
		if err != nil {
			return nil, err
		}
		if prev.NextQuestionID != nil {
			return nil, fmt.Errorf("question %s already followed by %s: %w", prev.ID, *prev.NextQuestionID, apperr.ErrConflict)
		}
	}

	if qn.ID == uuid.Nil {
		qn.ID = uuid.New()
	}
	qn.NextQuestionID = nil
	if err := q.CreateQuestion(ctx, qn); err != nil {
		return nil, err
	}

	if prev != nil {
		if err := q.SetNextQuestion(ctx, prev.ID, qn.ID); err != nil {
			return nil, err
		}
	}
	return qn, nil
}

// AppendQuestionBatch creates one rotation batch. The drafts become a chain
// in the given order; every member shares the batch ID and startsAt as its
// creation time, and Position records its place in the batch.
func (e *Engine) AppendQuestionBatch(ctx context.Context, q store.Queries, drafts []question.Draft, startsAt time.Time) ([]*question.Question, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("question batch is empty: %w", apperr.ErrValidation)
	}
	if len(drafts) > e.maxLength {
		return nil, fmt.Errorf("question batch has more than %d questions: %w", e.maxLength, apperr.ErrValidation)
	}

	batchID := uuid.New()
	batch := make([]*question.Question, 0, len(drafts))
	var previousID *uuid.UUID

	for i, d := range drafts {
		qn, err := e.AppendQuestion(ctx, q, &question.Question{
			Type:      d.Type,
			Text:      d.Question,
			BatchID:   batchID,
			Position:  i,
			CreatedAt: startsAt,
		}, previousID)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		batch = append(batch, qn)
		id := qn.ID
		previousID = &id
	}

	// SetNextQuestion changed every member but the last after it was returned.
	for i := 0; i < len(batch)-1; i++ {
		next := batch[i+1].ID
		batch[i].NextQuestionID = &next
	}
	return batch, nil
}
