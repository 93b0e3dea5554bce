package services

import (
	"context"
	"log"
	"time"

	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/rotation"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/question"
)

type QuestionService struct {
	store    store.Store
	chain    *chain.Engine
	rotation *rotation.Selector
	notifier Notifier
	now      func() time.Time
}

func NewQuestionService(st store.Store, engine *chain.Engine, selector *rotation.Selector, notifier Notifier) *QuestionService {
	return &QuestionService{store: st, chain: engine, rotation: selector, notifier: notifier, now: time.Now}
}

// CreateBatch stores a new rotation batch and announces it to every user with
// a push token. The batch starts now unless the request names a start time.
func (s *QuestionService) CreateBatch(ctx context.Context, req *question.CreateBatchRequest) ([]*question.Question, error) {
	startsAt := s.now()
	if req.StartsAt != nil {
		startsAt = *req.StartsAt
	}

	var batch []*question.Question
	err := s.store.InTx(ctx, func(q store.Queries) error {
		var err error
		batch, err = s.chain.AppendQuestionBatch(ctx, q, req.Questions, startsAt)
		return err
	})
	if err != nil {
		log.Printf("CreateBatch: failed to create %d questions: %v", len(req.Questions), err)
		return nil, err
	}
	log.Printf("CreateBatch: created batch %s with %d questions starting %s", batch[0].BatchID, len(batch), startsAt.Format(time.RFC3339))

	tokens, err := s.store.ListPushTokens(ctx)
	if err != nil {
		log.Printf("CreateBatch: failed to list push tokens: %v", err)
		return batch, nil
	}
	if len(tokens) > 0 {
		s.notifier.NotifyNewRound(ctx, tokens)
	}
	return batch, nil
}

// Current returns the question of the day, or nil.
func (s *QuestionService) Current(ctx context.Context) (*question.Question, error) {
	q, err := s.rotation.Current(ctx, s.store, s.now())
	return q, checkIntegrity("CurrentQuestion", err)
}

// Today returns every question of the batch in effect, origin first.
func (s *QuestionService) Today(ctx context.Context) ([]*question.Question, error) {
	batch, err := s.rotation.Batch(ctx, s.store, s.now())
	if err != nil {
		return nil, checkIntegrity("QuestionsOfTheDay", err)
	}
	if batch == nil {
		batch = []*question.Question{}
	}
	return batch, nil
}
