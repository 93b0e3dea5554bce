package answer

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeText     Type = "TEXT"
	TypeUser     Type = "USER"
	TypeAnonUser Type = "ANON_USER"
)

// Valid reports whether t is one of the known answer kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeUser, TypeAnonUser:
		return true
	}
	return false
}

// IsNomination reports whether answers of this type name another identity.
func (t Type) IsNomination() bool {
	return t == TypeUser || t == TypeAnonUser
}

type Answer struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	QuestionID       uuid.UUID  `json:"question_id" db:"question_id"`
	AuthorID         uuid.UUID  `json:"author_id" db:"author_id"`
	Type             Type       `json:"type" db:"type"`
	Text             *string    `json:"text,omitempty" db:"text_answer"`
	NomineeUserID    *uuid.UUID `json:"nominee_user_id,omitempty" db:"nominee_user_id"`
	NomineeAnonID    *uuid.UUID `json:"nominee_anon_user_id,omitempty" db:"nominee_anon_user_id"`
	PreviousAnswerID *uuid.UUID `json:"previous_answer_id,omitempty" db:"previous_answer_id"`
	NextAnswerID     *uuid.UUID `json:"next_answer_id,omitempty" db:"next_answer_id"`
	Reported         bool       `json:"reported" db:"reported"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Payload returns the tagged content of the answer.
func (a *Answer) Payload() Payload {
	p := Payload{Type: a.Type}
	switch a.Type {
	case TypeText:
		if a.Text != nil {
			p.Text = *a.Text
		}
	case TypeUser:
		if a.NomineeUserID != nil {
			p.TargetID = *a.NomineeUserID
		}
	case TypeAnonUser:
		if a.NomineeAnonID != nil {
			p.TargetID = *a.NomineeAnonID
		}
	}
	return p
}

// Payload is the content of an answer as a closed variant: Text is set for
// TEXT answers, TargetID names a User for USER and an AnonUser for ANON_USER.
type Payload struct {
	Type     Type
	Text     string
	TargetID uuid.UUID
}

func TextPayload(text string) Payload {
	return Payload{Type: TypeText, Text: text}
}

func UserPayload(userID uuid.UUID) Payload {
	return Payload{Type: TypeUser, TargetID: userID}
}

func AnonUserPayload(anonUserID uuid.UUID) Payload {
	return Payload{Type: TypeAnonUser, TargetID: anonUserID}
}

// Apply copies the payload onto a, clearing the fields of the other variants.
func (p Payload) Apply(a *Answer) {
	a.Type = p.Type
	a.Text = nil
	a.NomineeUserID = nil
	a.NomineeAnonID = nil
	switch p.Type {
	case TypeText:
		text := p.Text
		a.Text = &text
	case TypeUser:
		id := p.TargetID
		a.NomineeUserID = &id
	case TypeAnonUser:
		id := p.TargetID
		a.NomineeAnonID = &id
	}
}

// AnswerQuestionRequest is the client request to answer the question of the
// day. For USER answers, Answer carries the nominee's phone number.
type AnswerQuestionRequest struct {
	QuestionID       string  `json:"question_id" validate:"required"`
	Answer           string  `json:"answer" validate:"required"`
	Type             Type    `json:"type" validate:"required,oneof=TEXT USER ANON_USER"`
	PreviousAnswerID *string `json:"previous_answer_id,omitempty"`
}

// FriendAnswers groups the text answers written about one friend.
type FriendAnswers struct {
	FriendID   uuid.UUID `json:"friend_id"`
	FriendName string    `json:"friend_name"`
	Answers    []*Answer `json:"answers"`
}
