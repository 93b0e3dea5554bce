package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/rotation"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/answer"
)

// FeedService serves the text answers written under today's nominations.
type FeedService struct {
	store    store.Store
	chain    *chain.Engine
	rotation *rotation.Selector
	now      func() time.Time
}

func NewFeedService(st store.Store, engine *chain.Engine, selector *rotation.Selector) *FeedService {
	return &FeedService{store: st, chain: engine, rotation: selector, now: time.Now}
}

// viewer is what one user is allowed to see.
type viewer struct {
	id      uuid.UUID
	blocked map[uuid.UUID]struct{}
}

func (s *FeedService) viewer(ctx context.Context, clerkID string) (*viewer, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	blockedIDs, err := s.store.ListBlockedIDs(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	v := &viewer{id: me.ID, blocked: make(map[uuid.UUID]struct{}, len(blockedIDs))}
	for _, id := range blockedIDs {
		v.blocked[id] = struct{}{}
	}
	return v, nil
}

func (s *FeedService) visible(ctx context.Context, v *viewer, a *answer.Answer) (bool, error) {
	if a.Reported {
		return false, nil
	}
	if _, ok := v.blocked[a.AuthorID]; ok {
		return false, nil
	}
	hidden, err := s.store.IsHidden(ctx, v.id, a.ID)
	return !hidden, err
}

// textAnswersAbout collects the visible text answers that follow each visible
// nomination of userID for the question of the day.
func (s *FeedService) textAnswersAbout(ctx context.Context, v *viewer, userID, questionID uuid.UUID) ([]*answer.Answer, error) {
	nominations, err := s.store.ListAnswersAboutUserForQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	answers := []*answer.Answer{}
	for _, nomination := range nominations {
		ok, err := s.visible(ctx, v, nomination)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		thread, err := s.chain.TraverseChain(ctx, s.store, nomination.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range thread[1:] {
			if a.Type != answer.TypeText {
				continue
			}
			ok, err := s.visible(ctx, v, a)
			if err != nil {
				return nil, err
			}
			if ok {
				answers = append(answers, a)
			}
		}
	}
	return answers, nil
}

// AnswersOfTheDay returns what was written about the current user today.
func (s *FeedService) AnswersOfTheDay(ctx context.Context, clerkID string) ([]*answer.Answer, error) {
	v, err := s.viewer(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	current, err := s.rotation.Current(ctx, s.store, s.now())
	if err != nil {
		return nil, checkIntegrity("AnswersOfTheDay", err)
	}
	if current == nil {
		return []*answer.Answer{}, nil
	}

	answers, err := s.textAnswersAbout(ctx, v, v.id, current.ID)
	return answers, checkIntegrity("AnswersOfTheDay", err)
}

// FriendFeed returns, per friend, what was written about them today. Friends
// with nothing visible are left out.
func (s *FeedService) FriendFeed(ctx context.Context, clerkID string) ([]*answer.FriendAnswers, error) {
	v, err := s.viewer(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	current, err := s.rotation.Current(ctx, s.store, s.now())
	if err != nil {
		return nil, checkIntegrity("FriendFeed", err)
	}
	feed := []*answer.FriendAnswers{}
	if current == nil {
		return feed, nil
	}

	friends, err := s.store.ListFriends(ctx, v.id)
	if err != nil {
		return nil, err
	}
	for _, friend := range friends {
		answers, err := s.textAnswersAbout(ctx, v, friend.ID, current.ID)
		if err != nil {
			return nil, checkIntegrity("FriendFeed", err)
		}
		if len(answers) > 0 {
			feed = append(feed, &answer.FriendAnswers{
				FriendID:   friend.ID,
				FriendName: friend.Name,
				Answers:    answers,
			})
		}
	}
	return feed, nil
}
