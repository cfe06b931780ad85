// Package service contains the evaluation pipeline and its supporting
// business logic. Services consume narrow store interfaces so tests can
// substitute hand-written stubs.
package service

import (
	"context"
	"fmt"

	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

// canAdvance reports whether the student may move to the target status.
func canAdvance(student *models.Student, to models.EvaluationStatus) error {
	if !models.ValidTransition(student.Status, to) {
		return appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("transição inválida: %s → %s", student.Status, to))
	}
	return nil
}

// advance persists a status change together with the step's other
// fields. The transition is validated here, so an illegal status write
// never reaches the database even when a caller skips its own
// precondition check.
func advance(ctx context.Context, students studentStore, student *models.Student, to models.EvaluationStatus, params repository.UpdateStudentParams) error {
	if err := canAdvance(student, to); err != nil {
		return err
	}
	params.Status = &to
	if err := students.Update(ctx, student.ID, params); err != nil {
		return err
	}
	student.Status = to
	return nil
}

type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	StatusSummary(ctx context.Context, teacherID string) ([]models.StatusSummary, error)
	FindPreviousTerm(ctx context.Context, name, teacherID, excludeTerm string) (*models.Student, error)
	Update(ctx context.Context, id string, params repository.UpdateStudentParams) error
	Delete(ctx context.Context, id string) error
}

type questionStore interface {
	BulkInsert(ctx context.Context, questions []models.Question) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Question, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
	DeleteByStudent(ctx context.Context, studentID string) error
}

type answerStore interface {
	Upsert(ctx context.Context, answer *models.Answer) error
	ReplaceAll(ctx context.Context, studentID string, answers []models.Answer) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Answer, error)
	ListAnsweredQuestions(ctx context.Context, studentID string) ([]models.AnsweredQuestion, error)
	DeleteByStudent(ctx context.Context, studentID string) error
}

type logStore interface {
	Insert(ctx context.Context, entry *models.LogEntry) error
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.LogEntry, error)
	DeleteByStudent(ctx context.Context, studentID string) error
}
