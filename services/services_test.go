package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/notification"
	"catchUpAPI/internal/rotation"
	"catchUpAPI/internal/store/memstore"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/question"
	"catchUpAPI/internal/types/user"
)

type recordingNotifier struct {
	mu             sync.Mutex
	answered       []uuid.UUID
	rounds         [][]string
	friendRequests []uuid.UUID
}

func (n *recordingNotifier) NotifyAnswered(ctx context.Context, targetUserID uuid.UUID, payload notification.AnsweredPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.answered = append(n.answered, targetUserID)
}

func (n *recordingNotifier) NotifyNewRound(ctx context.Context, tokens []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rounds = append(n.rounds, tokens)
}

func (n *recordingNotifier) NotifyFriendRequest(ctx context.Context, targetUserID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.friendRequests = append(n.friendRequests, targetUserID)
}

type recordingMirror struct {
	users   []uuid.UUID
	friends [][2]uuid.UUID
}

func (m *recordingMirror) AddUser(ctx context.Context, id uuid.UUID) error {
	m.users = append(m.users, id)
	return nil
}

func (m *recordingMirror) AddFriendship(ctx context.Context, a, b uuid.UUID) error {
	m.friends = append(m.friends, [2]uuid.UUID{a, b})
	return nil
}

type testEnv struct {
	store    *memstore.Store
	chain    *chain.Engine
	rotation *rotation.Selector
	notifier *recordingNotifier
	question *question.Question
}

// newTestEnv starts with one USER question that became current an hour ago.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    memstore.New(),
		chain:    chain.New(0),
		rotation: rotation.New(0),
		notifier: &recordingNotifier{},
	}
	batch, err := env.chain.AppendQuestionBatch(context.Background(), env.store, []question.Draft{
		{Question: "Who is most likely to become famous?", Type: question.TypeUser},
	}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	env.question = batch[0]
	return env
}

func (e *testEnv) user(t *testing.T, clerkID, phone, token string) *user.User {
	t.Helper()
	u := &user.User{ClerkID: clerkID, Name: clerkID, PhoneNumber: phone}
	if token != "" {
		u.PushToken = &token
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) answers() *AnswerService {
	return NewAnswerService(e.store, e.chain, e.rotation, e.notifier)
}

func (e *testEnv) nominate(t *testing.T, clerkID, phone string, previous *answer.Answer) *answer.Answer {
	t.Helper()
	return e.answer(t, clerkID, answer.TypeUser, phone, previous)
}

func (e *testEnv) answer(t *testing.T, clerkID string, typ answer.Type, text string, previous *answer.Answer) *answer.Answer {
	t.Helper()
	req := &answer.AnswerQuestionRequest{QuestionID: e.question.ID.String(), Answer: text, Type: typ}
	if previous != nil {
		id := previous.ID.String()
		req.PreviousAnswerID = &id
	}
	a, err := e.answers().AnswerQuestion(context.Background(), clerkID, req)
	require.NoError(t, err)
	return a
}
