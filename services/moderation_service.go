package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/store"
)

type ModerationService struct {
	store   store.Store
	chain   *chain.Engine
	alerter Alerter
}

// NewModerationService wires hide, block and report. alerter may be nil.
func NewModerationService(st store.Store, engine *chain.Engine, alerter Alerter) *ModerationService {
	return &ModerationService{store: st, chain: engine, alerter: alerter}
}

// HideAnswer hides the answer and everything before it in its chain for the
// current user.
func (s *ModerationService) HideAnswer(ctx context.Context, clerkID, answerID string) (int, error) {
	id, err := parseID(answerID, "answer id")
	if err != nil {
		return 0, err
	}

	var hidden int
	err = s.store.InTx(ctx, func(q store.Queries) error {
		me, err := currentUser(ctx, q, clerkID)
		if err != nil {
			return err
		}
		hidden, err = s.chain.HideChainBackward(ctx, q, me.ID, id)
		return err
	})
	if err != nil {
		log.Printf("HideAnswer: failed for %s: %v", clerkID, err)
		return 0, checkIntegrity("HideAnswer", err)
	}
	return hidden, nil
}

// BlockUser hides the thread ending at answerID, then records the block. Both
// writes share one transaction and the block edge is written last.
func (s *ModerationService) BlockUser(ctx context.Context, clerkID, blockedUserID, answerID string) error {
	blockedID, err := parseID(blockedUserID, "user id")
	if err != nil {
		return err
	}
	startID, err := parseID(answerID, "answer id")
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(q store.Queries) error {
		me, err := currentUser(ctx, q, clerkID)
		if err != nil {
			return err
		}
		if me.ID == blockedID {
			return fmt.Errorf("cannot block yourself: %w", apperr.ErrValidation)
		}
		if _, err := q.GetUser(ctx, blockedID); err != nil {
			return fmt.Errorf("blocked user: %w", err)
		}

		hidden, err := s.chain.HideChainBackward(ctx, q, me.ID, startID)
		if err != nil {
			return err
		}
		log.Printf("BlockUser: hid %d answers for %s", hidden, me.ID)
		return q.CreateBlock(ctx, me.ID, blockedID)
	})
	if err != nil {
		log.Printf("BlockUser: failed for %s: %v", clerkID, err)
		return checkIntegrity("BlockUser", err)
	}
	return nil
}

// ReportAnswer flags the answer for every viewer and alerts the moderators in
// the background.
func (s *ModerationService) ReportAnswer(ctx context.Context, clerkID, answerID string) error {
	id, err := parseID(answerID, "answer id")
	if err != nil {
		return err
	}
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return err
	}
	if err := s.store.SetReported(ctx, id); err != nil {
		log.Printf("ReportAnswer: failed to flag %s: %v", id, err)
		return err
	}

	if s.alerter != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.alerter.AnswerReported(ctx, id, me.ID); err != nil {
				log.Printf("ReportAnswer: failed to send alert for %s: %v", id, err)
			}
		}()
	}
	return nil
}
