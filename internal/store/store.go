// Package store defines the persistence contract the core and the services
// consume. Implementations live in store/postgres and store/memstore.
//
// Lookups that find nothing return an error wrapping apperr.ErrNotFound.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/types/answer"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/question"
	"catchUpAPI/internal/types/user"
)

// Graph is an adjacency snapshot of the friend graph. Every user appears as a
// key, including users without friends.
type Graph map[uuid.UUID][]uuid.UUID

type UserQueries interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*user.User, error)
	ListUsersByPhones(ctx context.Context, phones []string) ([]*user.User, error)
	ListPushTokens(ctx context.Context) ([]string, error)
	// ClearPushToken detaches token from whichever user holds it.
	ClearPushToken(ctx context.Context, token string) error
	SetPushToken(ctx context.Context, userID uuid.UUID, token string) error
	UnsetPushToken(ctx context.Context, userID uuid.UUID) error

	CreateAnonUser(ctx context.Context, a *user.AnonUser) error
	GetAnonUserByPhone(ctx context.Context, phone string) (*user.AnonUser, error)
	DeleteAnonUser(ctx context.Context, id uuid.UUID) error
}

type QuestionQueries interface {
	CreateQuestion(ctx context.Context, q *question.Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*question.Question, error)
	SetNextQuestion(ctx context.Context, id, nextID uuid.UUID) error
	// ListQuestionsBefore returns questions of type t created strictly before ts.
	ListQuestionsBefore(ctx context.Context, ts time.Time, t question.Type) ([]*question.Question, error)
	IncrementResponses(ctx context.Context, questionID uuid.UUID) error
}

type AnswerQueries interface {
	CreateAnswer(ctx context.Context, a *answer.Answer) error
	GetAnswer(ctx context.Context, id uuid.UUID) (*answer.Answer, error)
	// LockAnswer reads an answer and holds it against concurrent chain links
	// until the surrounding transaction ends.
	LockAnswer(ctx context.Context, id uuid.UUID) (*answer.Answer, error)
	// LinkAnswers sets prev.next = next only if prev.next is still empty.
	// It returns apperr.ErrConflict when another writer got there first.
	LinkAnswers(ctx context.Context, prevID, nextID uuid.UUID) error
	ListAnswersByAuthor(ctx context.Context, authorID uuid.UUID) ([]*answer.Answer, error)
	ListAnswersAboutUser(ctx context.Context, userID uuid.UUID) ([]*answer.Answer, error)
	ListAnswersAboutUserForQuestion(ctx context.Context, userID, questionID uuid.UUID) ([]*answer.Answer, error)
	ListAnswersAboutAnonUser(ctx context.Context, anonID uuid.UUID) ([]*answer.Answer, error)
	HasAnswered(ctx context.Context, authorID, questionID uuid.UUID) (bool, error)
	// RepointAnonAnswers turns every ANON_USER answer naming anonID into a USER
	// answer naming userID and returns how many rows changed.
	RepointAnonAnswers(ctx context.Context, anonID, userID uuid.UUID) (int, error)
	SetReported(ctx context.Context, answerID uuid.UUID) error
}

type ModerationQueries interface {
	// HideAnswer is idempotent: hiding an already hidden answer is a no-op.
	HideAnswer(ctx context.Context, userID, answerID uuid.UUID) error
	IsHidden(ctx context.Context, userID, answerID uuid.UUID) (bool, error)
	CreateBlock(ctx context.Context, userID, blockedUserID uuid.UUID) error
	IsBlocked(ctx context.Context, userID, blockedUserID uuid.UUID) (bool, error)
	ListBlockedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type FriendQueries interface {
	CreateFriendRequest(ctx context.Context, fr *friendship.FriendRequest) error
	GetFriendRequest(ctx context.Context, id uuid.UUID) (*friendship.FriendRequest, error)
	// FindFriendRequest returns the pending request between a and b, sent by
	// either of them.
	FindFriendRequest(ctx context.Context, a, b uuid.UUID) (*friendship.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, id uuid.UUID) error
	ListSentFriendRequests(ctx context.Context, senderID uuid.UUID) ([]*friendship.FriendRequest, error)
	ListReceivedFriendRequests(ctx context.Context, receiverID uuid.UUID) ([]*friendship.FriendRequest, error)
	// AddFriendship writes both directions of the edge.
	AddFriendship(ctx context.Context, a, b uuid.UUID) error
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error)
	// FriendGraph reads the whole friend graph from one consistent snapshot.
	FriendGraph(ctx context.Context) (Graph, error)
}

// Queries is everything readable or writable inside or outside a transaction.
type Queries interface {
	UserQueries
	QuestionQueries
	AnswerQueries
	ModerationQueries
	FriendQueries
}

// Store is the full adapter: Queries plus transactions.
type Store interface {
	Queries
	// InTx runs fn in one transaction. Every write made through q commits
	// together when fn returns nil and is discarded otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
}
