package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

// QuestionRepository manages per-student evaluation questions.
type QuestionRepository struct {
	db *sqlx.DB
}

func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// BulkInsert writes a question set for a student in a single transaction.
func (r *QuestionRepository) BulkInsert(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO questions (id, student_id, text, type, options, field_key, position, created_at)
VALUES (:id, :student_id, :text, :type, :options, :field_key, :position, :created_at)`
	now := time.Now().UTC()
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		if questions[i].CreatedAt.IsZero() {
			questions[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, questions[i]); err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListByStudent returns a student's questions in presentation order.
func (r *QuestionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Question, error) {
	const query = `SELECT id, student_id, text, type, options, field_key, position, created_at
FROM questions WHERE student_id = $1 ORDER BY position ASC`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, studentID); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// CountByStudent returns how many questions a student currently has.
func (r *QuestionRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM questions WHERE student_id = $1", studentID); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// DeleteByStudent removes all of a student's questions.
func (r *QuestionRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM questions WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}
