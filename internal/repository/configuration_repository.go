package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ravgen/rav-api/internal/models"
)

// ConfigurationRepository manages per-teacher report settings (one row per teacher).
type ConfigurationRepository struct {
	db *sqlx.DB
}

func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// Upsert inserts or replaces the teacher's configuration row.
func (r *ConfigurationRepository) Upsert(ctx context.Context, cfg *models.Configuration) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	cfg.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO configurations (id, teacher_id, school_year, regional_coordination, school_unit,
block, grade, class_group, shift, term, teacher_name, registration, question_mode, template_id, updated_at)
VALUES (:id, :teacher_id, :school_year, :regional_coordination, :school_unit,
:block, :grade, :class_group, :shift, :term, :teacher_name, :registration, :question_mode, :template_id, :updated_at)
ON CONFLICT (teacher_id) DO UPDATE SET
school_year = EXCLUDED.school_year,
regional_coordination = EXCLUDED.regional_coordination,
school_unit = EXCLUDED.school_unit,
block = EXCLUDED.block,
grade = EXCLUDED.grade,
class_group = EXCLUDED.class_group,
shift = EXCLUDED.shift,
term = EXCLUDED.term,
teacher_name = EXCLUDED.teacher_name,
registration = EXCLUDED.registration,
question_mode = EXCLUDED.question_mode,
template_id = EXCLUDED.template_id,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("upsert configuration: %w", err)
	}
	return nil
}

// GetByTeacher returns the teacher's configuration, or nil when none exists.
func (r *ConfigurationRepository) GetByTeacher(ctx context.Context, teacherID string) (*models.Configuration, error) {
	const query = `SELECT id, teacher_id, school_year, regional_coordination, school_unit,
block, grade, class_group, shift, term, teacher_name, registration, question_mode, template_id, updated_at
FROM configurations WHERE teacher_id = $1`
	var cfg models.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	return &cfg, nil
}
