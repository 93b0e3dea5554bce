package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
	"catchUpAPI/internal/store/memstore"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/user"
)

// failingDeleteStore fails DeleteAnonUser inside every transaction.
type failingDeleteStore struct {
	*memstore.Store
}

type failingDeleteQueries struct {
	store.Queries
}

func (failingDeleteQueries) DeleteAnonUser(ctx context.Context, id uuid.UUID) error {
	return errors.New("connection reset")
}

func (s failingDeleteStore) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	return s.Store.InTx(ctx, func(q store.Queries) error {
		return fn(failingDeleteQueries{q})
	})
}

func TestRegisterUser_ConvertsAnonUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "author", "+100", "")
	first := env.nominate(t, "author", "+999", nil)
	second := env.nominate(t, "author", "+999", first)
	env.nominate(t, "author", "+999", second)

	mirror := &recordingMirror{}
	users := NewUserService(env.store, env.chain, mirror)
	created, err := users.RegisterUser(ctx, &user.RegisterUserRequest{
		ClerkID:     "newcomer",
		Name:        "Newcomer",
		PhoneNumber: "+999",
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{created.ID}, mirror.users)

	_, err = env.store.GetAnonUserByPhone(ctx, "+999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	about, err := env.store.ListAnswersAboutUser(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, about, 3)
	for _, a := range about {
		assert.Equal(t, answer.TypeUser, a.Type)
		assert.Nil(t, a.NomineeAnonID)
	}

	chains, err := users.AppearsIn(ctx, "newcomer")
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Len(t, chains[0], 3)
}

func TestRegisterUser_ConversionIsAtomic(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "author", "+100", "")
	first := env.nominate(t, "author", "+999", nil)
	second := env.nominate(t, "author", "+999", first)
	third := env.nominate(t, "author", "+999", second)

	users := NewUserService(failingDeleteStore{env.store}, env.chain, nil)
	_, err := users.RegisterUser(ctx, &user.RegisterUserRequest{
		ClerkID:     "newcomer",
		Name:        "Newcomer",
		PhoneNumber: "+999",
	})
	require.Error(t, err)

	_, err = env.store.GetUserByClerkID(ctx, "newcomer")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	anon, err := env.store.GetAnonUserByPhone(ctx, "+999")
	require.NoError(t, err)

	for _, nomination := range []*answer.Answer{first, second, third} {
		a, err := env.store.GetAnswer(ctx, nomination.ID)
		require.NoError(t, err)
		assert.Equal(t, answer.TypeAnonUser, a.Type)
		require.NotNil(t, a.NomineeAnonID)
		assert.Equal(t, anon.ID, *a.NomineeAnonID)
	}
}

func TestRegisterUser_Conflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "taken", "+100", "")
	users := NewUserService(env.store, env.chain, nil)

	_, err := users.RegisterUser(ctx, &user.RegisterUserRequest{ClerkID: "taken", Name: "A", PhoneNumber: "+200"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = users.RegisterUser(ctx, &user.RegisterUserRequest{ClerkID: "other", Name: "B", PhoneNumber: "+100"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = users.RegisterUser(ctx, &user.RegisterUserRequest{ClerkID: "other", Name: "", PhoneNumber: "+300"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterPushToken_IsExclusive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	first := env.user(t, "first", "+100", "device-1")
	second := env.user(t, "second", "+200", "")
	users := NewUserService(env.store, env.chain, nil)

	require.NoError(t, users.RegisterPushToken(ctx, "second", "device-1"))

	got, err := env.store.GetUser(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPushToken())

	got, err = env.store.GetUser(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, got.HasPushToken())
	assert.Equal(t, "device-1", *got.PushToken)

	tokens, err := env.store.ListPushTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"device-1"}, tokens)

	assert.ErrorIs(t, users.RegisterPushToken(ctx, "second", " "), apperr.ErrValidation)
}

func TestRegisterUser_TakesOverPushToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	old := env.user(t, "old", "+100", "shared-device")
	users := NewUserService(env.store, env.chain, nil)

	_, err := users.RegisterUser(ctx, &user.RegisterUserRequest{
		ClerkID:     "new",
		Name:        "New",
		PhoneNumber: "+200",
		PushToken:   "shared-device",
	})
	require.NoError(t, err)

	got, err := env.store.GetUser(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPushToken())
}

func TestInContactsAndLookup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "me", "+100", "")
	friend := env.user(t, "friend", "+200", "")
	users := NewUserService(env.store, env.chain, nil)

	found, err := users.InContacts(ctx, "me", []string{"+100", "+200", "+300"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, friend.ID, found[0].ID)

	got, err := users.GetByPhone(ctx, "+200")
	require.NoError(t, err)
	assert.Equal(t, friend.ID, got.ID)

	_, err = users.GetByPhone(ctx, "+300")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserAnswersAndAnonAppearsIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.user(t, "author", "+100", "")
	first := env.nominate(t, "author", "+999", nil)
	env.nominate(t, "author", "+999", first)
	users := NewUserService(env.store, env.chain, nil)

	authored, err := users.UserAnswers(ctx, "author")
	require.NoError(t, err)
	require.Len(t, authored, 1)
	assert.Equal(t, first.ID, authored[0][0].ID)

	anonChains, err := users.AnonAppearsIn(ctx, "+999")
	require.NoError(t, err)
	require.Len(t, anonChains, 1)
	assert.Len(t, anonChains[0], 2)

	none, err := users.AnonAppearsIn(ctx, "+555")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppearsIn_OmitsHiddenRevisions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	me := env.user(t, "me", "+100", "")
	env.user(t, "x", "+200", "")
	env.user(t, "y", "+300", "")
	env.user(t, "z", "+400", "")

	a := env.nominate(t, "x", "+100", nil)
	b := env.nominate(t, "y", "+100", a)
	c := env.nominate(t, "z", "+100", b)
	require.NoError(t, env.store.HideAnswer(ctx, me.ID, a.ID))

	users := NewUserService(env.store, env.chain, nil)
	chains, err := users.AppearsIn(ctx, "me")
	require.NoError(t, err)
	require.Len(t, chains, 1)
	ids := []uuid.UUID{}
	for _, got := range chains[0] {
		ids = append(ids, got.ID)
	}
	assert.Equal(t, []uuid.UUID{b.ID, c.ID}, ids)

	require.NoError(t, env.store.HideAnswer(ctx, me.ID, b.ID))
	chains, err = users.AppearsIn(ctx, "me")
	require.NoError(t, err)
	assert.Empty(t, chains)
}

func TestLogout_DropsPushToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	me := env.user(t, "me", "+100", "device-1")
	env.user(t, "other", "+200", "device-2")
	users := NewUserService(env.store, env.chain, nil)

	require.NoError(t, users.Logout(ctx, "me"))

	got, err := env.store.GetUser(ctx, me.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPushToken())

	tokens, err := env.store.ListPushTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"device-2"}, tokens)

	assert.ErrorIs(t, users.Logout(ctx, "nobody"), apperr.ErrNotFound)
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	me := env.user(t, "me", "+100", "")
	env.nominate(t, "me", "+999", nil)
	users := NewUserService(env.store, env.chain, nil)

	got, err := users.GetUser(ctx, me.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "me", got.ClerkID)

	_, err = users.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = users.GetUser(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	anon, err := users.GetAnonByPhone(ctx, " +999 ")
	require.NoError(t, err)
	assert.Equal(t, "+999", anon.PhoneNumber)

	_, err = users.GetAnonByPhone(ctx, "+555")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = users.GetAnonByPhone(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
