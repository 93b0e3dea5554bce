package friendship

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequest is a pending directed edge. It is deleted on accept, reject or cancel.
type FriendRequest struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SenderID   uuid.UUID `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id" db:"receiver_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// HiddenAnswer is a per-viewer hide flag, not a global delete.
type HiddenAnswer struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	AnswerID  uuid.UUID `json:"answer_id" db:"answer_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Block struct {
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	BlockedUserID uuid.UUID `json:"blocked_user_id" db:"blocked_user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type SendFriendRequestRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type BlockUserRequest struct {
	AnswerID string `json:"answer_id" validate:"required"`
}
