package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/models"
)

func TestConfigurationRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	mock.ExpectExec("INSERT INTO configurations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := &models.Configuration{
		TeacherID:    "teacher-1",
		Term:         "2º Bimestre",
		Registration: "123456-7",
		QuestionMode: models.QuestionModeFixed,
	}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	assert.NotEmpty(t, cfg.ID)
	assert.False(t, cfg.UpdatedAt.IsZero())
}

func TestConfigurationRepositoryGetByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "school_year", "regional_coordination", "school_unit",
		"block", "grade", "class_group", "shift", "term", "teacher_name",
		"registration", "question_mode", "template_id", "updated_at",
	}).AddRow("cfg-1", "teacher-1", nil, nil, nil, nil, nil, nil, nil,
		"2º Bimestre", nil, "123456-7", "dynamic", nil, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM configurations").
		WithArgs("teacher-1").
		WillReturnRows(rows)

	cfg, err := repo.GetByTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, models.QuestionModeDynamic, cfg.QuestionMode)
	assert.Equal(t, "2º Bimestre", cfg.Term)
}

func TestConfigurationRepositoryGetByTeacherMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM configurations").
		WithArgs("teacher-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cfg, err := repo.GetByTeacher(context.Background(), "teacher-2")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
