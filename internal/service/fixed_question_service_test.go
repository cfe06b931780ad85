package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

type fixedQuestionBankStub struct {
	questions map[string]*models.FixedQuestion
}

func newFixedQuestionBankStub() *fixedQuestionBankStub {
	return &fixedQuestionBankStub{questions: map[string]*models.FixedQuestion{}}
}

func (r *fixedQuestionBankStub) Create(ctx context.Context, question *models.FixedQuestion) error {
	if question.ID == "" {
		question.ID = "fq-" + question.FieldKey
	}
	copied := *question
	r.questions[question.ID] = &copied
	return nil
}

func (r *fixedQuestionBankStub) FindByID(ctx context.Context, id string) (*models.FixedQuestion, error) {
	question, ok := r.questions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *question
	return &copied, nil
}

func (r *fixedQuestionBankStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.FixedQuestion, error) {
	var out []models.FixedQuestion
	for _, q := range r.questions {
		if q.TeacherID == teacherID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fixedQuestionBankStub) Update(ctx context.Context, question *models.FixedQuestion) error {
	copied := *question
	r.questions[question.ID] = &copied
	return nil
}

func (r *fixedQuestionBankStub) Delete(ctx context.Context, id, teacherID string) error {
	delete(r.questions, id)
	return nil
}

func TestFixedQuestionServiceCreateRequiresOptions(t *testing.T) {
	svc := NewFixedQuestionService(newFixedQuestionBankStub(), nil)

	_, err := svc.Create(context.Background(), "teacher-1", dto.CreateFixedQuestionRequest{
		Text:     "Como o estudante participa das atividades em grupo?",
		Type:     models.QuestionTypeMultipleChoice,
		FieldKey: "participacao",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFixedQuestionServiceCreateAndUpdate(t *testing.T) {
	bank := newFixedQuestionBankStub()
	svc := NewFixedQuestionService(bank, nil)

	question, err := svc.Create(context.Background(), "teacher-1", dto.CreateFixedQuestionRequest{
		Text:     "Descreva a participação do estudante nas atividades.",
		Type:     models.QuestionTypeText,
		FieldKey: "participacao",
		Position: 1,
	})
	require.NoError(t, err)
	assert.True(t, question.Active)

	inactive := false
	updated, err := svc.Update(context.Background(), question.ID, "teacher-1", dto.UpdateFixedQuestionRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
}

func TestFixedQuestionServiceUpdateForbidden(t *testing.T) {
	bank := newFixedQuestionBankStub()
	svc := NewFixedQuestionService(bank, nil)

	question, err := svc.Create(context.Background(), "teacher-1", dto.CreateFixedQuestionRequest{
		Text:     "Descreva a participação do estudante nas atividades.",
		Type:     models.QuestionTypeText,
		FieldKey: "participacao",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), question.ID, "teacher-2", dto.UpdateFixedQuestionRequest{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
