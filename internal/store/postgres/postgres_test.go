package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/question"
	"catchUpAPI/internal/types/user"
)

const testSchema = `
CREATE TABLE users (
	id UUID PRIMARY KEY,
	clerk_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	phone_number TEXT NOT NULL UNIQUE,
	push_token TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE anon_users (
	id UUID PRIMARY KEY,
	phone_number TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE questions (
	id UUID PRIMARY KEY,
	type TEXT NOT NULL,
	question TEXT NOT NULL,
	next_question_id UUID REFERENCES questions(id),
	batch_id UUID NOT NULL,
	position INT NOT NULL,
	responses INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE answers (
	id UUID PRIMARY KEY,
	question_id UUID NOT NULL REFERENCES questions(id),
	author_id UUID NOT NULL REFERENCES users(id),
	type TEXT NOT NULL,
	text_answer TEXT,
	nominee_user_id UUID REFERENCES users(id),
	nominee_anon_user_id UUID REFERENCES anon_users(id),
	previous_answer_id UUID REFERENCES answers(id),
	next_answer_id UUID REFERENCES answers(id),
	reported BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE hidden_answers (
	user_id UUID NOT NULL,
	answer_id UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, answer_id)
);
CREATE TABLE blocks (
	user_id UUID NOT NULL,
	blocked_user_id UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, blocked_user_id)
);
CREATE TABLE friend_requests (
	id UUID PRIMARY KEY,
	sender_id UUID NOT NULL,
	receiver_id UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE friendships (
	user_id UUID NOT NULL,
	friend_id UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, friend_id)
);
`

// setupTestStore runs against TEST_DATABASE_URL (or DATABASE_URL) inside a
// throwaway schema that is dropped when the test ends.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := "catchup_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(admin.Close)
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)
	t.Cleanup(func() {
		if _, err := admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema)); err != nil {
			t.Logf("Warning: failed to drop test schema: %v", err)
		}
	})

	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, testSchema)
	require.NoError(t, err)
	return New(pool)
}

func createQuestion(t *testing.T, s *Store) *question.Question {
	t.Helper()
	qu := &question.Question{Type: question.TypeUser, Text: "Who is the best cook?", BatchID: uuid.New()}
	require.NoError(t, s.CreateQuestion(context.Background(), qu))
	return qu
}

func createAnswer(t *testing.T, s *Store, qu *question.Question, author uuid.UUID, p answer.Payload, previous *answer.Answer) *answer.Answer {
	t.Helper()
	a := &answer.Answer{QuestionID: qu.ID, AuthorID: author}
	p.Apply(a)
	if previous != nil {
		a.PreviousAnswerID = &previous.ID
	}
	require.NoError(t, s.CreateAnswer(context.Background(), a))
	return a
}

func TestLinkAnswers_SecondLinkConflicts(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	author := &user.User{ClerkID: "author", Name: "Author", PhoneNumber: "+100"}
	require.NoError(t, s.CreateUser(ctx, author))
	qu := createQuestion(t, s)

	first := createAnswer(t, s, qu, author.ID, answer.TextPayload("first"), nil)
	second := createAnswer(t, s, qu, author.ID, answer.TextPayload("second"), first)
	rival := createAnswer(t, s, qu, author.ID, answer.TextPayload("rival"), first)

	require.NoError(t, s.InTx(ctx, func(q store.Queries) error {
		if _, err := q.LockAnswer(ctx, first.ID); err != nil {
			return err
		}
		return q.LinkAnswers(ctx, first.ID, second.ID)
	}))
	assert.ErrorIs(t, s.LinkAnswers(ctx, first.ID, rival.ID), apperr.ErrConflict)

	got, err := s.GetAnswer(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextAnswerID)
	assert.Equal(t, second.ID, *got.NextAnswerID)
	require.NotNil(t, got.Text)
	assert.Equal(t, "first", *got.Text)
	assert.Equal(t, answer.TypeText, got.Type)

	got, err = s.GetAnswer(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PreviousAnswerID)
	assert.Equal(t, first.ID, *got.PreviousAnswerID)
	assert.Nil(t, got.NextAnswerID)

	_, err = s.GetAnswer(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepointAnonAnswers(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	author := &user.User{ClerkID: "author", Name: "Author", PhoneNumber: "+100"}
	require.NoError(t, s.CreateUser(ctx, author))
	anon := &user.AnonUser{PhoneNumber: "+999"}
	require.NoError(t, s.CreateAnonUser(ctx, anon))
	qu := createQuestion(t, s)

	var previous *answer.Answer
	for i := 0; i < 3; i++ {
		previous = createAnswer(t, s, qu, author.ID, answer.AnonUserPayload(anon.ID), previous)
	}

	newcomer := &user.User{ClerkID: "newcomer", Name: "Newcomer", PhoneNumber: "+999"}
	require.NoError(t, s.InTx(ctx, func(q store.Queries) error {
		if err := q.CreateUser(ctx, newcomer); err != nil {
			return err
		}
		n, err := q.RepointAnonAnswers(ctx, anon.ID, newcomer.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, 3, n)
		return q.DeleteAnonUser(ctx, anon.ID)
	}))

	about, err := s.ListAnswersAboutUser(ctx, newcomer.ID)
	require.NoError(t, err)
	require.Len(t, about, 3)
	for _, a := range about {
		assert.Equal(t, answer.TypeUser, a.Type)
		assert.Nil(t, a.NomineeAnonID)
	}

	left, err := s.ListAnswersAboutAnonUser(ctx, anon.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = s.GetAnonUserByPhone(ctx, "+999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPushTokenAndFriendRequests(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	token := "device-1"
	alice := &user.User{ClerkID: "alice", Name: "Alice", PhoneNumber: "+100", PushToken: &token}
	bob := &user.User{ClerkID: "bob", Name: "Bob", PhoneNumber: "+200"}
	require.NoError(t, s.CreateUser(ctx, alice))
	require.NoError(t, s.CreateUser(ctx, bob))

	require.NoError(t, s.UnsetPushToken(ctx, alice.ID))
	got, err := s.GetUserByClerkID(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, got.HasPushToken())

	_, err = s.FindFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	fr := &friendship.FriendRequest{SenderID: alice.ID, ReceiverID: bob.ID}
	require.NoError(t, s.CreateFriendRequest(ctx, fr))
	found, err := s.FindFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, fr.ID, found.ID)

	require.NoError(t, s.AddFriendship(ctx, alice.ID, bob.ID))
	g, err := s.FriendGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, g[alice.ID])
	assert.Equal(t, []uuid.UUID{alice.ID}, g[bob.ID])
}
