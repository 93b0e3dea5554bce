package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (q *queries) HideAnswer(ctx context.Context, userID, answerID uuid.UUID) error {
	query := `
		INSERT INTO hidden_answers (user_id, answer_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, answer_id) DO NOTHING
	`
	if _, err := q.db.Exec(ctx, query, userID, answerID); err != nil {
		return fmt.Errorf("failed to hide answer: %w", err)
	}
	return nil
}

func (q *queries) IsHidden(ctx context.Context, userID, answerID uuid.UUID) (bool, error) {
	var hidden bool
	query := `SELECT EXISTS(SELECT 1 FROM hidden_answers WHERE user_id = $1 AND answer_id = $2)`
	if err := q.db.QueryRow(ctx, query, userID, answerID).Scan(&hidden); err != nil {
		return false, fmt.Errorf("failed to check hidden answer: %w", err)
	}
	return hidden, nil
}

func (q *queries) CreateBlock(ctx context.Context, userID, blockedUserID uuid.UUID) error {
	query := `
		INSERT INTO blocks (user_id, blocked_user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, blocked_user_id) DO NOTHING
	`
	if _, err := q.db.Exec(ctx, query, userID, blockedUserID); err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}
	return nil
}

func (q *queries) IsBlocked(ctx context.Context, userID, blockedUserID uuid.UUID) (bool, error) {
	var blocked bool
	query := `SELECT EXISTS(SELECT 1 FROM blocks WHERE user_id = $1 AND blocked_user_id = $2)`
	if err := q.db.QueryRow(ctx, query, userID, blockedUserID).Scan(&blocked); err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return blocked, nil
}

func (q *queries) ListBlockedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, `SELECT blocked_user_id FROM blocks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
