// Package memstore is an in-memory store.Store. Transactions run on a copy of
// the data and are serialized, so a failing transaction leaves nothing behind
// and two writers racing for the same chain link see each other's result.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/question"
	"catchUpAPI/internal/types/user"
)

type pair struct {
	a, b uuid.UUID
}

type state struct {
	users       map[uuid.UUID]*user.User
	anons       map[uuid.UUID]*user.AnonUser
	questions   map[uuid.UUID]*question.Question
	answers     map[uuid.UUID]*answer.Answer
	answerOrder []uuid.UUID
	hidden      map[pair]time.Time
	blocks      map[pair]time.Time
	requests    map[uuid.UUID]*friendship.FriendRequest
	friends     map[uuid.UUID]map[uuid.UUID]struct{}
}

func newState() *state {
	return &state{
		users:     map[uuid.UUID]*user.User{},
		anons:     map[uuid.UUID]*user.AnonUser{},
		questions: map[uuid.UUID]*question.Question{},
		answers:   map[uuid.UUID]*answer.Answer{},
		hidden:    map[pair]time.Time{},
		blocks:    map[pair]time.Time{},
		requests:  map[uuid.UUID]*friendship.FriendRequest{},
		friends:   map[uuid.UUID]map[uuid.UUID]struct{}{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range st.anons {
		a := *v
		c.anons[k] = &a
	}
	for k, v := range st.questions {
		c.questions[k] = cloneQuestion(v)
	}
	for k, v := range st.answers {
		c.answers[k] = cloneAnswer(v)
	}
	c.answerOrder = append([]uuid.UUID(nil), st.answerOrder...)
	for k, v := range st.hidden {
		c.hidden[k] = v
	}
	for k, v := range st.blocks {
		c.blocks[k] = v
	}
	for k, v := range st.requests {
		fr := *v
		c.requests[k] = &fr
	}
	for k, set := range st.friends {
		cs := make(map[uuid.UUID]struct{}, len(set))
		for f := range set {
			cs[f] = struct{}{}
		}
		c.friends[k] = cs
	}
	return c
}

type Store struct {
	*view

	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.view = &view{s: s}
	return s
}

func (s *Store) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(&view{s: s, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// view runs queries either directly on the store (tx == nil) or on the
// private copy of a running transaction.
type view struct {
	s  *Store
	tx *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.txMu.Lock()
	defer v.s.txMu.Unlock()
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
}

func cloneUser(u *user.User) *user.User {
	c := *u
	if u.PushToken != nil {
		t := *u.PushToken
		c.PushToken = &t
	}
	return &c
}

func cloneQuestion(q *question.Question) *question.Question {
	c := *q
	if q.NextQuestionID != nil {
		id := *q.NextQuestionID
		c.NextQuestionID = &id
	}
	return &c
}

func cloneAnswer(a *answer.Answer) *answer.Answer {
	c := *a
	if a.Text != nil {
		t := *a.Text
		c.Text = &t
	}
	c.NomineeUserID = cloneID(a.NomineeUserID)
	c.NomineeAnonID = cloneID(a.NomineeAnonID)
	c.PreviousAnswerID = cloneID(a.PreviousAnswerID)
	c.NextAnswerID = cloneID(a.NextAnswerID)
	return &c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func sortUsersByName(users []*user.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID.String() < users[j].ID.String()
	})
}
