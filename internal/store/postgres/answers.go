package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/types/answer"
)

const answerColumns = `id, question_id, author_id, type, text_answer, nominee_user_id, nominee_anon_user_id,
	previous_answer_id, next_answer_id, reported, created_at, updated_at`

func scanAnswer(row pgx.Row) (*answer.Answer, error) {
	var a answer.Answer
	err := row.Scan(
		&a.ID,
		&a.QuestionID,
		&a.AuthorID,
		&a.Type,
		&a.Text,
		&a.NomineeUserID,
		&a.NomineeAnonID,
		&a.PreviousAnswerID,
		&a.NextAnswerID,
		&a.Reported,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *queries) listAnswers(ctx context.Context, query string, args ...any) ([]*answer.Answer, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []*answer.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (q *queries) CreateAnswer(ctx context.Context, a *answer.Answer) error {
	query := `
		INSERT INTO answers (
			id, question_id, author_id, type, text_answer, nominee_user_id,
			nominee_anon_user_id, previous_answer_id, reported, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := q.db.QueryRow(ctx, query,
		a.ID, a.QuestionID, a.AuthorID, a.Type, a.Text, a.NomineeUserID,
		a.NomineeAnonID, a.PreviousAnswerID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (q *queries) GetAnswer(ctx context.Context, id uuid.UUID) (*answer.Answer, error) {
	a, err := scanAnswer(q.db.QueryRow(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "answer")
	}
	return a, nil
}

func (q *queries) LockAnswer(ctx context.Context, id uuid.UUID) (*answer.Answer, error) {
	a, err := scanAnswer(q.db.QueryRow(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "answer")
	}
	return a, nil
}

func (q *queries) LinkAnswers(ctx context.Context, prevID, nextID uuid.UUID) error {
	query := `
		UPDATE answers
		SET next_answer_id = $2, updated_at = NOW()
		WHERE id = $1 AND next_answer_id IS NULL
	`
	tag, err := q.db.Exec(ctx, query, prevID, nextID)
	if err != nil {
		return fmt.Errorf("failed to link answers: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("answer %s already has a successor: %w", prevID, apperr.ErrConflict)
	}
	return nil
}

func (q *queries) ListAnswersByAuthor(ctx context.Context, authorID uuid.UUID) ([]*answer.Answer, error) {
	return q.listAnswers(ctx, `SELECT `+answerColumns+` FROM answers WHERE author_id = $1 ORDER BY created_at`, authorID)
}

func (q *queries) ListAnswersAboutUser(ctx context.Context, userID uuid.UUID) ([]*answer.Answer, error) {
	return q.listAnswers(ctx, `SELECT `+answerColumns+` FROM answers WHERE nominee_user_id = $1 ORDER BY created_at`, userID)
}

func (q *queries) ListAnswersAboutUserForQuestion(ctx context.Context, userID, questionID uuid.UUID) ([]*answer.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE nominee_user_id = $1 AND question_id = $2 ORDER BY created_at`
	return q.listAnswers(ctx, query, userID, questionID)
}

func (q *queries) ListAnswersAboutAnonUser(ctx context.Context, anonID uuid.UUID) ([]*answer.Answer, error) {
	return q.listAnswers(ctx, `SELECT `+answerColumns+` FROM answers WHERE nominee_anon_user_id = $1 ORDER BY created_at`, anonID)
}

func (q *queries) HasAnswered(ctx context.Context, authorID, questionID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM answers WHERE author_id = $1 AND question_id = $2)`
	if err := q.db.QueryRow(ctx, query, authorID, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check answer: %w", err)
	}
	return exists, nil
}

func (q *queries) RepointAnonAnswers(ctx context.Context, anonID, userID uuid.UUID) (int, error) {
	query := `
		UPDATE answers
		SET type = $3, nominee_user_id = $2, nominee_anon_user_id = NULL, updated_at = NOW()
		WHERE nominee_anon_user_id = $1
	`
	tag, err := q.db.Exec(ctx, query, anonID, userID, answer.TypeUser)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint anon answers: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (q *queries) SetReported(ctx context.Context, answerID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `UPDATE answers SET reported = TRUE, updated_at = NOW() WHERE id = $1`, answerID)
	if err != nil {
		return fmt.Errorf("failed to report answer: %w", err)
	}
	return expectOne(tag, "answer")
}
