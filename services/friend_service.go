package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/user"
)

type FriendService struct {
	store    store.Store
	notifier Notifier
	mirror   GraphMirror
}

// NewFriendService wires the friend-request flow. mirror may be nil.
func NewFriendService(st store.Store, notifier Notifier, mirror GraphMirror) *FriendService {
	return &FriendService{store: st, notifier: notifier, mirror: mirror}
}

func (s *FriendService) SendRequest(ctx context.Context, clerkID, receiverID string) (*friendship.FriendRequest, error) {
	to, err := parseID(receiverID, "user id")
	if err != nil {
		return nil, err
	}

	fr := &friendship.FriendRequest{ReceiverID: to}
	err = s.store.InTx(ctx, func(q store.Queries) error {
		me, err := currentUser(ctx, q, clerkID)
		if err != nil {
			return err
		}
		if me.ID == to {
			return fmt.Errorf("cannot befriend yourself: %w", apperr.ErrValidation)
		}
		if _, err := q.GetUser(ctx, to); err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
		friends, err := q.AreFriends(ctx, me.ID, to)
		if err != nil {
			return err
		}
		if friends {
			return fmt.Errorf("already friends with %s: %w", to, apperr.ErrConflict)
		}
		if pending, err := q.FindFriendRequest(ctx, me.ID, to); err == nil {
			return fmt.Errorf("friend request %s already pending: %w", pending.ID, apperr.ErrConflict)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		fr.SenderID = me.ID
		return q.CreateFriendRequest(ctx, fr)
	})
	if err != nil {
		log.Printf("SendRequest: failed for %s: %v", clerkID, err)
		return nil, err
	}

	s.notifier.NotifyFriendRequest(ctx, to)
	return fr, nil
}

// resolve loads a pending request and checks that the current user is the
// party allowed to act on it.
func (s *FriendService) resolve(ctx context.Context, q store.Queries, clerkID, requestID string, asReceiver bool) (*friendship.FriendRequest, error) {
	id, err := parseID(requestID, "friend request id")
	if err != nil {
		return nil, err
	}
	me, err := currentUser(ctx, q, clerkID)
	if err != nil {
		return nil, err
	}
	fr, err := q.GetFriendRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	party := fr.SenderID
	if asReceiver {
		party = fr.ReceiverID
	}
	if party != me.ID {
		return nil, fmt.Errorf("friend request %s: %w", id, apperr.ErrForbidden)
	}
	return fr, nil
}

// CancelRequest withdraws a request the current user sent.
func (s *FriendService) CancelRequest(ctx context.Context, clerkID, requestID string) error {
	return s.store.InTx(ctx, func(q store.Queries) error {
		fr, err := s.resolve(ctx, q, clerkID, requestID, false)
		if err != nil {
			return err
		}
		return q.DeleteFriendRequest(ctx, fr.ID)
	})
}

// AcceptRequest deletes the request and writes the friendship both ways in
// one transaction.
func (s *FriendService) AcceptRequest(ctx context.Context, clerkID, requestID string) error {
	var fr *friendship.FriendRequest
	err := s.store.InTx(ctx, func(q store.Queries) error {
		var err error
		fr, err = s.resolve(ctx, q, clerkID, requestID, true)
		if err != nil {
			return err
		}
		if err := q.DeleteFriendRequest(ctx, fr.ID); err != nil {
			return err
		}
		return q.AddFriendship(ctx, fr.SenderID, fr.ReceiverID)
	})
	if err != nil {
		log.Printf("AcceptRequest: failed for %s: %v", clerkID, err)
		return err
	}

	if s.mirror != nil {
		if err := s.mirror.AddFriendship(ctx, fr.SenderID, fr.ReceiverID); err != nil {
			log.Printf("AcceptRequest: failed to mirror friendship %s-%s: %v", fr.SenderID, fr.ReceiverID, err)
		}
	}
	return nil
}

func (s *FriendService) RejectRequest(ctx context.Context, clerkID, requestID string) error {
	return s.store.InTx(ctx, func(q store.Queries) error {
		fr, err := s.resolve(ctx, q, clerkID, requestID, true)
		if err != nil {
			return err
		}
		return q.DeleteFriendRequest(ctx, fr.ID)
	})
}

func (s *FriendService) ListSent(ctx context.Context, clerkID string) ([]*friendship.FriendRequest, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.ListSentFriendRequests(ctx, me.ID)
}

func (s *FriendService) ListReceived(ctx context.Context, clerkID string) ([]*friendship.FriendRequest, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.ListReceivedFriendRequests(ctx, me.ID)
}

func (s *FriendService) ListFriends(ctx context.Context, clerkID string) ([]*user.User, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	return s.store.ListFriends(ctx, me.ID)
}
