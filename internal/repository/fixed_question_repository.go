package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

// FixedQuestionRepository manages the reusable question bank each teacher curates.
type FixedQuestionRepository struct {
	db *sqlx.DB
}

func NewFixedQuestionRepository(db *sqlx.DB) *FixedQuestionRepository {
	return &FixedQuestionRepository{db: db}
}

func (r *FixedQuestionRepository) Create(ctx context.Context, question *models.FixedQuestion) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO fixed_questions (id, teacher_id, text, type, options, field_key, position, active, created_at)
VALUES (:id, :teacher_id, :text, :type, :options, :field_key, :position, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, question); err != nil {
		return fmt.Errorf("create fixed question: %w", err)
	}
	return nil
}

func (r *FixedQuestionRepository) FindByID(ctx context.Context, id string) (*models.FixedQuestion, error) {
	const query = `SELECT id, teacher_id, text, type, options, field_key, position, active, created_at
FROM fixed_questions WHERE id = $1`
	var question models.FixedQuestion
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		return nil, err
	}
	return &question, nil
}

// ListByTeacher returns the full bank, active and inactive, in position order.
func (r *FixedQuestionRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.FixedQuestion, error) {
	const query = `SELECT id, teacher_id, text, type, options, field_key, position, active, created_at
FROM fixed_questions WHERE teacher_id = $1 ORDER BY position ASC`
	var questions []models.FixedQuestion
	if err := r.db.SelectContext(ctx, &questions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list fixed questions: %w", err)
	}
	return questions, nil
}

// ListActiveByTeacher returns only the questions that enter generated sets.
func (r *FixedQuestionRepository) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.FixedQuestion, error) {
	const query = `SELECT id, teacher_id, text, type, options, field_key, position, active, created_at
FROM fixed_questions WHERE teacher_id = $1 AND active = TRUE ORDER BY position ASC`
	var questions []models.FixedQuestion
	if err := r.db.SelectContext(ctx, &questions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list active fixed questions: %w", err)
	}
	return questions, nil
}

func (r *FixedQuestionRepository) Update(ctx context.Context, question *models.FixedQuestion) error {
	const query = `UPDATE fixed_questions
SET text = :text, type = :type, options = :options, field_key = :field_key, position = :position, active = :active
WHERE id = :id AND teacher_id = :teacher_id`
	result, err := r.db.NamedExecContext(ctx, query, question)
	if err != nil {
		return fmt.Errorf("update fixed question: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fixed question: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("fixed question %s: %w", question.ID, errNoRowsAffected)
	}
	return nil
}

func (r *FixedQuestionRepository) Delete(ctx context.Context, id, teacherID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM fixed_questions WHERE id = $1 AND teacher_id = $2", id, teacherID); err != nil {
		return fmt.Errorf("delete fixed question: %w", err)
	}
	return nil
}
