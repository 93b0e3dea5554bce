package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/types/answer"
)

type reportAlert struct {
	answerID, reporterID uuid.UUID
}

type chanAlerter chan reportAlert

func (c chanAlerter) AnswerReported(ctx context.Context, answerID, reporterID uuid.UUID) error {
	c <- reportAlert{answerID, reporterID}
	return nil
}

func TestHideAnswer_HidesEarlierRevisions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	viewer := env.user(t, "viewer", "+100", "")
	env.user(t, "author", "+200", "")

	a := env.nominate(t, "author", "+900", nil)
	b := env.nominate(t, "author", "+901", a)
	c := env.nominate(t, "author", "+902", b)

	mod := NewModerationService(env.store, env.chain, nil)
	hidden, err := mod.HideAnswer(ctx, "viewer", b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, hidden)

	for id, want := range map[uuid.UUID]bool{a.ID: true, b.ID: true, c.ID: false} {
		got, err := env.store.IsHidden(ctx, viewer.ID, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = mod.HideAnswer(ctx, "viewer", uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBlockUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	viewer := env.user(t, "viewer", "+100", "")
	author := env.user(t, "author", "+200", "")

	first := env.nominate(t, "author", "+100", nil)
	second := env.answer(t, "author", answer.TypeText, "still them", first)

	mod := NewModerationService(env.store, env.chain, nil)
	require.NoError(t, mod.BlockUser(ctx, "viewer", author.ID.String(), second.ID.String()))

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		hidden, err := env.store.IsHidden(ctx, viewer.ID, id)
		require.NoError(t, err)
		assert.True(t, hidden)
	}
	blocked, err := env.store.IsBlocked(ctx, viewer.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	_, err = env.answers().AnswerQuestion(ctx, "author", &answer.AnswerQuestionRequest{
		QuestionID: env.question.ID.String(),
		Answer:     "+100",
		Type:       answer.TypeUser,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestBlockUser_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	viewer := env.user(t, "viewer", "+100", "")
	author := env.user(t, "author", "+200", "")
	a := env.nominate(t, "author", "+100", nil)
	mod := NewModerationService(env.store, env.chain, nil)

	assert.ErrorIs(t, mod.BlockUser(ctx, "viewer", viewer.ID.String(), a.ID.String()), apperr.ErrValidation)
	assert.ErrorIs(t, mod.BlockUser(ctx, "viewer", uuid.NewString(), a.ID.String()), apperr.ErrNotFound)
	assert.ErrorIs(t, mod.BlockUser(ctx, "viewer", author.ID.String(), uuid.NewString()), apperr.ErrNotFound)

	hidden, err := env.store.IsHidden(ctx, viewer.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, hidden)
	blocked, err := env.store.IsBlocked(ctx, viewer.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestReportAnswer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	reporter := env.user(t, "reporter", "+100", "")
	env.user(t, "author", "+200", "")
	a := env.answer(t, "author", answer.TypeText, "rude", nil)

	alerts := make(chanAlerter, 1)
	mod := NewModerationService(env.store, env.chain, alerts)
	require.NoError(t, mod.ReportAnswer(ctx, "reporter", a.ID.String()))

	got, err := env.store.GetAnswer(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Reported)

	select {
	case alert := <-alerts:
		assert.Equal(t, reportAlert{a.ID, reporter.ID}, alert)
	case <-time.After(time.Second):
		t.Fatal("no report alert sent")
	}

	assert.ErrorIs(t, mod.ReportAnswer(ctx, "reporter", uuid.NewString()), apperr.ErrNotFound)
}
