package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"catchUpAPI/internal/types/question"
)

const questionColumns = `id, type, question, next_question_id, batch_id, position, responses, created_at, updated_at`

func scanQuestion(row pgx.Row) (*question.Question, error) {
	var q question.Question
	err := row.Scan(
		&q.ID,
		&q.Type,
		&q.Text,
		&q.NextQuestionID,
		&q.BatchID,
		&q.Position,
		&q.Responses,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (q *queries) CreateQuestion(ctx context.Context, qu *question.Question) error {
	query := `
		INSERT INTO questions (id, type, question, batch_id, position, responses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, NOW())
		RETURNING updated_at
	`
	if qu.ID == uuid.Nil {
		qu.ID = uuid.New()
	}
	if qu.CreatedAt.IsZero() {
		qu.CreatedAt = time.Now()
	}
	err := q.db.QueryRow(ctx, query, qu.ID, qu.Type, qu.Text, qu.BatchID, qu.Position, qu.CreatedAt).
		Scan(&qu.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *queries) GetQuestion(ctx context.Context, id uuid.UUID) (*question.Question, error) {
	qu, err := scanQuestion(q.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "question")
	}
	return qu, nil
}

func (q *queries) SetNextQuestion(ctx context.Context, id, nextID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `UPDATE questions SET next_question_id = $2, updated_at = NOW() WHERE id = $1`, id, nextID)
	if err != nil {
		return fmt.Errorf("failed to link question: %w", err)
	}
	return expectOne(tag, "question")
}

func (q *queries) ListQuestionsBefore(ctx context.Context, ts time.Time, t question.Type) ([]*question.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE created_at < $1 AND type = $2`
	rows, err := q.db.Query(ctx, query, ts, t)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*question.Question
	for rows.Next() {
		qu, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

func (q *queries) IncrementResponses(ctx context.Context, questionID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `UPDATE questions SET responses = responses + 1 WHERE id = $1`, questionID)
	if err != nil {
		return fmt.Errorf("failed to increment responses: %w", err)
	}
	return expectOne(tag, "question")
}
