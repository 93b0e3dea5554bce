package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/cache"
	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/notification"
	"catchUpAPI/internal/rotation"
	"catchUpAPI/internal/schedule"
	"catchUpAPI/internal/store/memstore"
	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/question"
	"catchUpAPI/internal/types/user"
	"catchUpAPI/middleware"
	"catchUpAPI/services"
)

type nopNotifier struct{}

func (nopNotifier) NotifyAnswered(context.Context, uuid.UUID, notification.AnsweredPayload) {}
func (nopNotifier) NotifyNewRound(context.Context, []string) {}
func (nopNotifier) NotifyFriendRequest(context.Context, uuid.UUID) {}

type app struct {
	store      *memstore.Store
	users      *UserHandler
	questions  *QuestionHandler
	answers    *AnswerHandler
	moderation *ModerationHandler
	friends    *FriendHandler
	schedule   *ScheduleHandler
}

func newApp() *app {
	st := memstore.New()
	engine := chain.New(0)
	selector := rotation.New(0)
	notifier := nopNotifier{}

	return &app{
		store:      st,
		users:      NewUserHandler(services.NewUserService(st, engine, nil)),
		questions:  NewQuestionHandler(services.NewQuestionService(st, engine, selector, notifier)),
		answers:    NewAnswerHandler(services.NewAnswerService(st, engine, selector, notifier), services.NewFeedService(st, engine, selector)),
		moderation: NewModerationHandler(services.NewModerationService(st, engine, nil)),
		friends:    NewFriendHandler(services.NewFriendService(st, notifier, nil)),
		schedule:   NewScheduleHandler(services.NewScheduleService(schedule.NewRunner(st, cache.NewMemory(), 0))),
	}
}

// call runs h as clerkID ("" for anonymous) with an optional JSON body and
// path variables.
func call(t *testing.T, h http.HandlerFunc, clerkID string, body any, vars map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/test", &buf)
	if clerkID != "" {
		req = req.WithContext(middleware.WithClerkID(req.Context(), clerkID))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (a *app) register(t *testing.T, clerkID, phone string) *user.User {
	t.Helper()
	rr := call(t, a.users.RegisterUser, clerkID, user.RegisterUserRequest{Name: clerkID, PhoneNumber: phone}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	u := decode[user.User](t, rr)
	return &u
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.ErrValidation, http.StatusBadRequest},
		{apperr.ErrConflict, http.StatusConflict},
		{apperr.ErrForbidden, http.StatusForbidden},
		{apperr.ErrSchedulingUnavailable, http.StatusServiceUnavailable},
		{apperr.ErrIntegrity, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRequiresAuthentication(t *testing.T) {
	a := newApp()
	for name, h := range map[string]http.HandlerFunc{
		"profile":  a.users.GetProfile,
		"answer":   a.answers.AnswerQuestion,
		"feed":     a.answers.FriendFeed,
		"hide":     a.moderation.HideAnswer,
		"friends":  a.friends.GetFriends,
		"schedule": a.schedule.Run,
	} {
		rr := call(t, h, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, name)
	}
}

func TestRegisterAndProfile(t *testing.T) {
	a := newApp()
	created := a.register(t, "user_1", "+100")
	assert.Equal(t, "user_1", created.ClerkID)

	rr := call(t, a.users.GetProfile, "user_1", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decode[user.User](t, rr).ID)

	rr = call(t, a.users.RegisterUser, "user_2", user.RegisterUserRequest{Name: "dup", PhoneNumber: "+100"}, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = call(t, a.users.GetProfile, "nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuestionAnswerFlow(t *testing.T) {
	a := newApp()
	a.register(t, "author", "+100")
	nominee := a.register(t, "nominee", "+200")

	rr := call(t, a.questions.Current, "", nil, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	startsAt := time.Now().Add(-time.Minute)
	rr = call(t, a.questions.CreateBatch, "author", question.CreateBatchRequest{
		Questions: []question.Draft{{Question: "Who would win a dance-off?", Type: question.TypeUser}},
		StartsAt:  &startsAt,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	batch := decode[[]question.Question](t, rr)
	require.Len(t, batch, 1)

	rr = call(t, a.questions.Current, "", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, batch[0].ID, decode[question.Question](t, rr).ID)

	rr = call(t, a.answers.AnswerQuestion, "author", answer.AnswerQuestionRequest{
		QuestionID: batch[0].ID.String(),
		Answer:     "+200",
		Type:       answer.TypeUser,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	nomination := decode[answer.Answer](t, rr)
	require.NotNil(t, nomination.NomineeUserID)
	assert.Equal(t, nominee.ID, *nomination.NomineeUserID)

	rr = call(t, a.answers.AnswerExists, "author", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]bool{"exists": true}, decode[map[string]bool](t, rr))

	rr = call(t, a.answers.GetChain, "author", nil, map[string]string{"id": nomination.ID.String()})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]answer.Answer](t, rr), 1)

	rr = call(t, a.answers.GetChain, "author", nil, map[string]string{"id": "bad"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(t, a.moderation.HideAnswer, "nominee", nil, map[string]string{"id": nomination.ID.String()})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]int{"hidden": 1}, decode[map[string]int](t, rr))

	rr = call(t, a.moderation.BlockUser, "nominee", friendship.BlockUserRequest{AnswerID: nomination.ID.String()},
		map[string]string{"id": nomination.AuthorID.String()})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = call(t, a.answers.AnswerQuestion, "author", answer.AnswerQuestionRequest{
		QuestionID: batch[0].ID.String(),
		Answer:     "+200",
		Type:       answer.TypeUser,
	}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestFriendFlow(t *testing.T) {
	a := newApp()
	a.register(t, "alice", "+100")
	bob := a.register(t, "bob", "+200")

	rr := call(t, a.friends.SendRequest, "alice", friendship.SendFriendRequestRequest{UserID: bob.ID.String()}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	fr := decode[friendship.FriendRequest](t, rr)

	rr = call(t, a.friends.ListReceived, "bob", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]friendship.FriendRequest](t, rr), 1)

	rr = call(t, a.friends.AcceptRequest, "alice", nil, map[string]string{"id": fr.ID.String()})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(t, a.friends.AcceptRequest, "bob", nil, map[string]string{"id": fr.ID.String()})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, a.friends.GetFriends, "alice", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	friends := decode[[]user.User](t, rr)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)

	rr = call(t, a.schedule.Run, "alice", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[schedule.Result](t, rr)
	assert.Len(t, res.Order, 3)

	rr = call(t, a.schedule.Latest, "", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, res.Order, decode[schedule.Result](t, rr).Order)
}

func TestInvalidBody(t *testing.T) {
	a := newApp()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/answers", bytes.NewBufferString("{"))
	req = req.WithContext(middleware.WithClerkID(req.Context(), "user_1"))
	rr := httptest.NewRecorder()

	a.answers.AnswerQuestion(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserLookupsAndLogout(t *testing.T) {
	a := newApp()
	me := a.register(t, "me", "+100")

	rr := call(t, a.users.GetUser, "me", nil, map[string]string{"id": me.ID.String()})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, me.ID, decode[user.User](t, rr).ID)

	rr = call(t, a.users.GetUser, "me", nil, map[string]string{"id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.NoError(t, a.store.CreateAnonUser(context.Background(), &user.AnonUser{PhoneNumber: "+999"}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/anon-users/lookup?phone=%2B999", nil)
	req = req.WithContext(middleware.WithClerkID(req.Context(), "me"))
	rr = httptest.NewRecorder()
	a.users.LookupAnonByPhone(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "+999", decode[user.AnonUser](t, rr).PhoneNumber)

	rr = call(t, a.users.LookupAnonByPhone, "me", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(t, a.users.RegisterPushToken, "me", user.RegisterPushTokenRequest{Token: "device-1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = call(t, a.users.Logout, "me", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	got, err := a.store.GetUser(context.Background(), me.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPushToken())
}

func TestSendRequestTwiceConflicts(t *testing.T) {
	a := newApp()
	a.register(t, "alice", "+100")
	bob := a.register(t, "bob", "+200")

	body := friendship.SendFriendRequestRequest{UserID: bob.ID.String()}
	rr := call(t, a.friends.SendRequest, "alice", body, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = call(t, a.friends.SendRequest, "alice", body, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
