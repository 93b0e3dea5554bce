// Package notification turns notification intents into push messages and
// delivers them through FCM.
package notification

import (
	"github.com/google/uuid"
)

type Kind string

const (
	KindAnswered      Kind = "answered"
	KindNewRound      Kind = "new_round"
	KindFriendRequest Kind = "friend_request"
)

// AnsweredPayload identifies the nomination that named the target user.
type AnsweredPayload struct {
	AnswerID   uuid.UUID `json:"answer_id"`
	QuestionID uuid.UUID `json:"question_id"`
}

// Intent is a request to notify someone. Targeted kinds name a user whose
// token is resolved at delivery time; KindNewRound carries its tokens.
type Intent struct {
	Kind         Kind             `json:"kind"`
	TargetUserID uuid.UUID        `json:"target_user_id,omitempty"`
	Tokens       []string         `json:"tokens,omitempty"`
	Answered     *AnsweredPayload `json:"answered,omitempty"`
}

type Message struct {
	Title string
	Body  string
	Data  map[string]any
}

func (i Intent) Message() Message {
	switch i.Kind {
	case KindAnswered:
		m := Message{
			Title: "A friend answered you!",
			Body:  "You were answered for today's question. Check it out now!",
		}
		if i.Answered != nil {
			m.Data = map[string]any{
				"answerId":   i.Answered.AnswerID.String(),
				"questionId": i.Answered.QuestionID.String(),
			}
		}
		return m
	case KindNewRound:
		return Message{
			Title: "New Question of The Day!",
			Body:  "Answer to see what your friends said about you!",
		}
	case KindFriendRequest:
		return Message{
			Title: "New friend request!",
			Body:  "You have a new friend request. Check it out now!",
		}
	}
	return Message{}
}
