package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

// LogRepository stores the per-student processing audit trail.
type LogRepository struct {
	db *sqlx.DB
}

func NewLogRepository(db *sqlx.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Insert(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO processing_logs (id, student_id, teacher_id, level, message, created_at)
VALUES (:id, :student_id, :teacher_id, :level, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// ListByStudent returns a student's processing history, newest first.
func (r *LogRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, student_id, teacher_id, level, message, created_at
FROM processing_logs WHERE student_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var entries []models.LogEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return entries, nil
}

func (r *LogRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM processing_logs WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("delete logs: %w", err)
	}
	return nil
}
