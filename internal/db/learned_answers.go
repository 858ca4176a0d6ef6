package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"frontdesk/internal/models"
)

// UpsertLearnedAnswer stores an answer under the exact question text.
// Re-inserting the same question only touches the row when the answer text
// actually differs, so repeated identical upserts are no-ops.
func (d *DB) UpsertLearnedAnswer(ctx context.Context, question, answer string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO learned_answers (question, answer)
		VALUES ($1, $2)
		ON CONFLICT (question) DO UPDATE
		SET answer = EXCLUDED.answer, added_at = NOW()
		WHERE learned_answers.answer IS DISTINCT FROM EXCLUDED.answer
	`, question, answer)
	return err
}

// GetLearnedAnswer retrieves an answer by exact question text.
func (d *DB) GetLearnedAnswer(ctx context.Context, question string) (*models.LearnedAnswer, error) {
	var la models.LearnedAnswer
	err := d.Pool.QueryRow(ctx, `
		SELECT id, question, answer, created_at, added_at
		FROM learned_answers
		WHERE question = $1
	`, question).Scan(&la.ID, &la.Question, &la.Answer, &la.CreatedAt, &la.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLearnedAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &la, nil
}

// ListLearnedAnswers returns all learned answers in insertion order. The
// fuzzy lookup relies on this order being stable so ties break first-seen.
func (d *DB) ListLearnedAnswers(ctx context.Context) ([]models.LearnedAnswer, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, question, answer, created_at, added_at
		FROM learned_answers
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.LearnedAnswer
	for rows.Next() {
		var la models.LearnedAnswer
		if err := rows.Scan(&la.ID, &la.Question, &la.Answer, &la.CreatedAt, &la.AddedAt); err != nil {
			return nil, err
		}
		answers = append(answers, la)
	}
	return answers, rows.Err()
}
