package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchUpAPI/internal/store/memstore"
	"catchUpAPI/internal/types/user"
)

type sent struct {
	tokens []string
	msg    Message
}

type recordingSender struct {
	sent []sent
	err  error
}

func (r *recordingSender) SendPush(ctx context.Context, tokens []string, msg Message) error {
	r.sent = append(r.sent, sent{tokens, msg})
	return r.err
}

func TestIntentMessage(t *testing.T) {
	answerID, questionID := uuid.New(), uuid.New()
	m := Intent{Kind: KindAnswered, Answered: &AnsweredPayload{AnswerID: answerID, QuestionID: questionID}}.Message()
	assert.Equal(t, "A friend answered you!", m.Title)
	assert.Equal(t, answerID.String(), m.Data["answerId"])

	assert.Equal(t, "New Question of The Day!", Intent{Kind: KindNewRound}.Message().Title)
	assert.Equal(t, "New friend request!", Intent{Kind: KindFriendRequest}.Message().Title)
	assert.Empty(t, Intent{Kind: "unknown"}.Message().Title)
}

func TestBuildMessage(t *testing.T) {
	m := buildMessage("tok", Message{Title: "t", Body: "b", Data: map[string]any{"n": 3}})
	assert.Equal(t, "tok", m.Token)
	assert.Equal(t, "3", m.Data["n"])
	assert.Equal(t, "high", m.Android.Priority)

	assert.Nil(t, buildMessage("tok", Message{Title: "t"}).Data)
}

func TestDeliverer(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	withToken := &user.User{ClerkID: "c1", Name: "Ada", PhoneNumber: "+15550001"}
	withoutToken := &user.User{ClerkID: "c2", Name: "Bo", PhoneNumber: "+15550002"}
	require.NoError(t, s.CreateUser(ctx, withToken))
	require.NoError(t, s.CreateUser(ctx, withoutToken))
	require.NoError(t, s.SetPushToken(ctx, withToken.ID, "device-ada"))

	sender := &recordingSender{}
	d := NewDeliverer(s, sender)

	require.NoError(t, d.Deliver(ctx, Intent{Kind: KindFriendRequest, TargetUserID: withToken.ID}))
	require.NoError(t, d.Deliver(ctx, Intent{Kind: KindFriendRequest, TargetUserID: withoutToken.ID}))
	require.NoError(t, d.Deliver(ctx, Intent{Kind: KindAnswered, TargetUserID: uuid.New()}))
	require.NoError(t, d.Deliver(ctx, Intent{Kind: KindNewRound, Tokens: []string{"a", "b"}}))
	require.NoError(t, d.Deliver(ctx, Intent{Kind: KindNewRound}))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"device-ada"}, sender.sent[0].tokens)
	assert.Equal(t, "New friend request!", sender.sent[0].msg.Title)
	assert.Equal(t, []string{"a", "b"}, sender.sent[1].tokens)
}

func TestDeliverer_SenderError(t *testing.T) {
	boom := errors.New("fcm down")
	d := NewDeliverer(memstore.New(), &recordingSender{err: boom})
	err := d.Deliver(context.Background(), Intent{Kind: KindNewRound, Tokens: []string{"x"}})
	assert.ErrorIs(t, err, boom)
}
