package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"catchUpAPI/internal/types/user"
)

const userColumns = `id, clerk_id, name, phone_number, push_token, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Name,
		&u.PhoneNumber,
		&u.PushToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *queries) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, clerk_id, name, phone_number, push_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := q.db.QueryRow(ctx, query, u.ID, u.ClerkID, u.Name, u.PhoneNumber, u.PushToken).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (q *queries) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE clerk_id = $1`, clerkID))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (q *queries) GetUserByPhone(ctx context.Context, phone string) (*user.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (q *queries) ListUsersByPhones(ctx context.Context, phones []string) ([]*user.User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = ANY($1) ORDER BY name`, phones)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *queries) ListPushTokens(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT push_token FROM users WHERE push_token IS NOT NULL AND push_token <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (q *queries) ClearPushToken(ctx context.Context, token string) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET push_token = NULL, updated_at = NOW() WHERE push_token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to clear push token: %w", err)
	}
	return nil
}

func (q *queries) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET push_token = $2, updated_at = NOW() WHERE id = $1`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	return expectOne(tag, "user")
}

func (q *queries) UnsetPushToken(ctx context.Context, userID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET push_token = NULL, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to unset push token: %w", err)
	}
	return expectOne(tag, "user")
}

func (q *queries) CreateAnonUser(ctx context.Context, a *user.AnonUser) error {
	query := `
		INSERT INTO anon_users (id, phone_number, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := q.db.QueryRow(ctx, query, a.ID, a.PhoneNumber).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create anon user: %w", err)
	}
	return nil
}

func (q *queries) GetAnonUserByPhone(ctx context.Context, phone string) (*user.AnonUser, error) {
	var a user.AnonUser
	err := q.db.QueryRow(ctx, `SELECT id, phone_number, created_at, updated_at FROM anon_users WHERE phone_number = $1`, phone).
		Scan(&a.ID, &a.PhoneNumber, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "anon user")
	}
	return &a, nil
}

func (q *queries) DeleteAnonUser(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM anon_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete anon user: %w", err)
	}
	return expectOne(tag, "anon user")
}
