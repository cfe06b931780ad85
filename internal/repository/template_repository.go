package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

// TemplateRepository manages uploaded report templates.
type TemplateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *models.Template) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO templates (id, teacher_id, name, term, file_path, created_at)
VALUES (:id, :teacher_id, :name, :term, :file_path, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.Template, error) {
	const query = `SELECT id, teacher_id, name, term, file_path, created_at FROM templates WHERE id = $1`
	var tpl models.Template
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Template, error) {
	const query = `SELECT id, teacher_id, name, term, file_path, created_at
FROM templates WHERE teacher_id = $1 ORDER BY created_at DESC`
	var templates []models.Template
	if err := r.db.SelectContext(ctx, &templates, query, teacherID); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id, teacherID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1 AND teacher_id = $2", id, teacherID); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
