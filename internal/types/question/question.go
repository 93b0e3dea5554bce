package question

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeText Type = "TEXT"
	TypeUser Type = "USER"
)

func (t Type) Valid() bool {
	return t == TypeText || t == TypeUser
}

type Question struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Type           Type       `json:"type" db:"type"`
	Text           string     `json:"question" db:"question"`
	NextQuestionID *uuid.UUID `json:"next_question_id,omitempty" db:"next_question_id"`
	BatchID        uuid.UUID  `json:"batch_id" db:"batch_id"`
	Position       int        `json:"position" db:"position"`
	Responses      int        `json:"responses" db:"responses"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type Draft struct {
	Question string `json:"question" validate:"required"`
	Type     Type   `json:"type" validate:"required,oneof=TEXT USER"`
}

type CreateBatchRequest struct {
	Questions []Draft    `json:"questions"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
}
