package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

// AnswerRepository manages the responses collected for a student's questions.
type AnswerRepository struct {
	db *sqlx.DB
}

func NewAnswerRepository(db *sqlx.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Upsert updates an existing answer for the question, or inserts one when
// the response is non-empty. Empty responses without an existing row are
// dropped silently: autosave fires on every keystroke, including deletions
// back to blank.
func (r *AnswerRepository) Upsert(ctx context.Context, answer *models.Answer) error {
	const find = `SELECT id FROM answers WHERE student_id = $1 AND question_id = $2`
	var existingID string
	err := r.db.GetContext(ctx, &existingID, find, answer.StudentID, answer.QuestionID)
	switch {
	case err == nil:
		const update = `UPDATE answers SET response = $1, note = $2 WHERE id = $3`
		if _, err := r.db.ExecContext(ctx, update, answer.Response, answer.Note, existingID); err != nil {
			return fmt.Errorf("update answer: %w", err)
		}
		answer.ID = existingID
		return nil
	case err == sql.ErrNoRows:
		if strings.TrimSpace(answer.Response) == "" && answer.Note == nil {
			return nil
		}
		if answer.ID == "" {
			answer.ID = uuid.NewString()
		}
		if answer.CreatedAt.IsZero() {
			answer.CreatedAt = time.Now().UTC()
		}
		const insert = `INSERT INTO answers (id, student_id, question_id, response, note, created_at)
VALUES (:id, :student_id, :question_id, :response, :note, :created_at)`
		if _, err := r.db.NamedExecContext(ctx, insert, answer); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find answer: %w", err)
	}
}

// ReplaceAll swaps a student's answers for the provided set in one transaction.
func (r *AnswerRepository) ReplaceAll(ctx context.Context, studentID string, answers []models.Answer) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace answers: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM answers WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}

	const insert = `INSERT INTO answers (id, student_id, question_id, response, note, created_at)
VALUES (:id, :student_id, :question_id, :response, :note, :created_at)`
	now := time.Now().UTC()
	for i := range answers {
		answers[i].StudentID = studentID
		if answers[i].ID == "" {
			answers[i].ID = uuid.NewString()
		}
		if answers[i].CreatedAt.IsZero() {
			answers[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, answers[i]); err != nil {
			return fmt.Errorf("insert answer %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListByStudent returns the raw answer rows for a student.
func (r *AnswerRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Answer, error) {
	const query = `SELECT id, student_id, question_id, response, note, created_at
FROM answers WHERE student_id = $1`
	var answers []models.Answer
	if err := r.db.SelectContext(ctx, &answers, query, studentID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

// ListAnsweredQuestions joins answers to their questions in question order,
// the shape the narrative prompt consumes.
func (r *AnswerRepository) ListAnsweredQuestions(ctx context.Context, studentID string) ([]models.AnsweredQuestion, error) {
	const query = `SELECT a.question_id, q.text AS question_text, a.response, a.note, q.position
FROM answers a
JOIN questions q ON q.id = a.question_id
WHERE a.student_id = $1
ORDER BY q.position ASC`
	var answered []models.AnsweredQuestion
	if err := r.db.SelectContext(ctx, &answered, query, studentID); err != nil {
		return nil, fmt.Errorf("list answered questions: %w", err)
	}
	return answered, nil
}

// DeleteByStudent removes all answers for a student.
func (r *AnswerRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM answers WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	return nil
}
