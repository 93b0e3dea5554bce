package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/user"
)

type UserService struct {
	store  store.Store
	chain  *chain.Engine
	mirror GraphMirror
}

// NewUserService wires the user flows. mirror may be nil.
func NewUserService(st store.Store, engine *chain.Engine, mirror GraphMirror) *UserService {
	return &UserService{store: st, chain: engine, mirror: mirror}
}

// RegisterUser creates the account and, when an AnonUser holds the same phone
// number, moves every nomination of it onto the new user and deletes it. The
// whole conversion commits or rolls back as one.
func (s *UserService) RegisterUser(ctx context.Context, req *user.RegisterUserRequest) (*user.User, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if req.ClerkID == "" || phone == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("clerk id, name and phone number are required: %w", apperr.ErrValidation)
	}

	created := &user.User{
		ClerkID:     req.ClerkID,
		Name:        strings.TrimSpace(req.Name),
		PhoneNumber: phone,
	}
	if req.PushToken != "" {
		token := req.PushToken
		created.PushToken = &token
	}

	var converted int
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := q.GetUserByClerkID(ctx, req.ClerkID); err == nil {
			return fmt.Errorf("clerk id %s already registered: %w", req.ClerkID, apperr.ErrConflict)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if _, err := q.GetUserByPhone(ctx, phone); err == nil {
			return fmt.Errorf("phone number already registered: %w", apperr.ErrConflict)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		if created.PushToken != nil {
			if err := q.ClearPushToken(ctx, *created.PushToken); err != nil {
				return err
			}
		}
		if err := q.CreateUser(ctx, created); err != nil {
			return err
		}

		anon, err := q.GetAnonUserByPhone(ctx, phone)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		converted, err = q.RepointAnonAnswers(ctx, anon.ID, created.ID)
		if err != nil {
			return err
		}
		return q.DeleteAnonUser(ctx, anon.ID)
	})
	if err != nil {
		log.Printf("RegisterUser: failed for %s: %v", req.ClerkID, err)
		return nil, err
	}
	if converted > 0 {
		log.Printf("RegisterUser: moved %d nominations onto user %s", converted, created.ID)
	}

	if s.mirror != nil {
		if err := s.mirror.AddUser(ctx, created.ID); err != nil {
			log.Printf("RegisterUser: failed to mirror user %s: %v", created.ID, err)
		}
	}
	return created, nil
}

func (s *UserService) GetProfile(ctx context.Context, clerkID string) (*user.User, error) {
	return currentUser(ctx, s.store, clerkID)
}

// RegisterPushToken gives token to the current user, taking it away from
// whoever held it before.
func (s *UserService) RegisterPushToken(ctx context.Context, clerkID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("push token is empty: %w", apperr.ErrValidation)
	}
	return s.store.InTx(ctx, func(q store.Queries) error {
		me, err := currentUser(ctx, q, clerkID)
		if err != nil {
			return err
		}
		if err := q.ClearPushToken(ctx, token); err != nil {
			return err
		}
		return q.SetPushToken(ctx, me.ID, token)
	})
}

func (s *UserService) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone number is empty: %w", apperr.ErrValidation)
	}
	return s.store.GetUserByPhone(ctx, phone)
}

// Logout detaches the current user's push token so a signed-out device stops
// receiving pushes.
func (s *UserService) Logout(ctx context.Context, clerkID string) error {
	return s.store.InTx(ctx, func(q store.Queries) error {
		me, err := currentUser(ctx, q, clerkID)
		if err != nil {
			return err
		}
		return q.UnsetPushToken(ctx, me.ID)
	})
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*user.User, error) {
	id, err := parseID(userID, "user id")
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetAnonByPhone(ctx context.Context, phone string) (*user.AnonUser, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone number is empty: %w", apperr.ErrValidation)
	}
	return s.store.GetAnonUserByPhone(ctx, phone)
}

// InContacts returns the registered users among phones, without the caller.
func (s *UserService) InContacts(ctx context.Context, clerkID string, phones []string) ([]*user.User, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsersByPhones(ctx, phones)
	if err != nil {
		return nil, err
	}

	out := make([]*user.User, 0, len(users))
	for _, u := range users {
		if u.ID != me.ID {
			out = append(out, u)
		}
	}
	return out, nil
}

// UserAnswers groups the current user's answers into the chains they belong to.
func (s *UserService) UserAnswers(ctx context.Context, clerkID string) ([][]*answer.Answer, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswersByAuthor(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	chains, err := s.chain.GroupChainsByRoot(ctx, s.store, answers)
	return chains, checkIntegrity("UserAnswers", err)
}

// AppearsIn returns the chains in which the current user was nominated. Every
// answer they hid is taken out of its chain, and chains left with a single
// answer are dropped.
func (s *UserService) AppearsIn(ctx context.Context, clerkID string) ([][]*answer.Answer, error) {
	me, err := currentUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswersAboutUser(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	chains, err := s.chain.GroupChainsByRoot(ctx, s.store, answers)
	if err != nil {
		return nil, checkIntegrity("AppearsIn", err)
	}

	visible := make([][]*answer.Answer, 0, len(chains))
	for _, c := range chains {
		c, err = s.withoutHidden(ctx, me.ID, c)
		if err != nil {
			return nil, err
		}
		if len(c) > 1 {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// AnonAppearsIn returns the chains naming the not yet registered owner of
// phone. An unknown number appears nowhere.
func (s *UserService) AnonAppearsIn(ctx context.Context, phone string) ([][]*answer.Answer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone number is empty: %w", apperr.ErrValidation)
	}
	anon, err := s.store.GetAnonUserByPhone(ctx, phone)
	if errors.Is(err, apperr.ErrNotFound) {
		return [][]*answer.Answer{}, nil
	}
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswersAboutAnonUser(ctx, anon.ID)
	if err != nil {
		return nil, err
	}
	chains, err := s.chain.GroupChainsByRoot(ctx, s.store, answers)
	return chains, checkIntegrity("AnonAppearsIn", err)
}

func (s *UserService) withoutHidden(ctx context.Context, viewerID uuid.UUID, answers []*answer.Answer) ([]*answer.Answer, error) {
	out := make([]*answer.Answer, 0, len(answers))
	for _, a := range answers {
		hidden, err := s.store.IsHidden(ctx, viewerID, a.ID)
		if err != nil {
			return nil, err
		}
		if !hidden {
			out = append(out, a)
		}
	}
	return out, nil
}
