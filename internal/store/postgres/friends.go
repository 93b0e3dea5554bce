package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/user"
)

const friendRequestColumns = `id, sender_id, receiver_id, created_at, updated_at`

func scanFriendRequest(row pgx.Row) (*friendship.FriendRequest, error) {
	var fr friendship.FriendRequest
	if err := row.Scan(&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.CreatedAt, &fr.UpdatedAt); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (q *queries) CreateFriendRequest(ctx context.Context, fr *friendship.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, sender_id, receiver_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if fr.ID == uuid.Nil {
		fr.ID = uuid.New()
	}
	if err := q.db.QueryRow(ctx, query, fr.ID, fr.SenderID, fr.ReceiverID).Scan(&fr.CreatedAt, &fr.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

func (q *queries) GetFriendRequest(ctx context.Context, id uuid.UUID) (*friendship.FriendRequest, error) {
	fr, err := scanFriendRequest(q.db.QueryRow(ctx, `SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "friend request")
	}
	return fr, nil
}

func (q *queries) FindFriendRequest(ctx context.Context, a, b uuid.UUID) (*friendship.FriendRequest, error) {
	query := `
		SELECT ` + friendRequestColumns + `
		FROM friend_requests
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at
		LIMIT 1
	`
	fr, err := scanFriendRequest(q.db.QueryRow(ctx, query, a, b))
	if err != nil {
		return nil, notFound(err, "friend request")
	}
	return fr, nil
}

func (q *queries) DeleteFriendRequest(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return expectOne(tag, "friend request")
}

func (q *queries) listFriendRequests(ctx context.Context, query string, id uuid.UUID) ([]*friendship.FriendRequest, error) {
	rows, err := q.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := []*friendship.FriendRequest{}
	for rows.Next() {
		fr, err := scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, fr)
	}
	return requests, rows.Err()
}

func (q *queries) ListSentFriendRequests(ctx context.Context, senderID uuid.UUID) ([]*friendship.FriendRequest, error) {
	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE sender_id = $1 ORDER BY created_at DESC`
	return q.listFriendRequests(ctx, query, senderID)
}

func (q *queries) ListReceivedFriendRequests(ctx context.Context, receiverID uuid.UUID) ([]*friendship.FriendRequest, error) {
	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE receiver_id = $1 ORDER BY created_at DESC`
	return q.listFriendRequests(ctx, query, receiverID)
}

func (q *queries) AddFriendship(ctx context.Context, a, b uuid.UUID) error {
	query := `
		INSERT INTO friendships (user_id, friend_id, created_at)
		VALUES ($1, $2, NOW()), ($2, $1, NOW())
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	if _, err := q.db.Exec(ctx, query, a, b); err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

func (q *queries) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`
	if err := q.db.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	return exists, nil
}

func (q *queries) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	query := `
		SELECT u.id, u.clerk_id, u.name, u.phone_number, u.push_token, u.created_at, u.updated_at
		FROM users u
		INNER JOIN friendships f ON f.friend_id = u.id
		WHERE f.user_id = $1
		ORDER BY u.name
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, u)
	}
	return friends, rows.Err()
}

// FriendGraph reads users and edges in a single statement so the result is
// one snapshot even while requests are being accepted.
func (q *queries) FriendGraph(ctx context.Context) (store.Graph, error) {
	query := `
		SELECT u.id, f.friend_id
		FROM users u
		LEFT JOIN friendships f ON f.user_id = u.id
		ORDER BY u.id, f.friend_id
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read friend graph: %w", err)
	}
	defer rows.Close()

	g := store.Graph{}
	for rows.Next() {
		var userID uuid.UUID
		var friendID *uuid.UUID
		if err := rows.Scan(&userID, &friendID); err != nil {
			return nil, fmt.Errorf("failed to scan friend edge: %w", err)
		}
		if _, ok := g[userID]; !ok {
			g[userID] = nil
		}
		if friendID != nil {
			g[userID] = append(g[userID], *friendID)
		}
	}
	return g, rows.Err()
}
