package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

type fixedQuestionBank interface {
	Create(ctx context.Context, question *models.FixedQuestion) error
	FindByID(ctx context.Context, id string) (*models.FixedQuestion, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.FixedQuestion, error)
	Update(ctx context.Context, question *models.FixedQuestion) error
	Delete(ctx context.Context, id, teacherID string) error
}

// FixedQuestionService manages the teacher's reusable question bank.
type FixedQuestionService struct {
	repo      fixedQuestionBank
	validator *validator.Validate
}

func NewFixedQuestionService(repo fixedQuestionBank, validate *validator.Validate) *FixedQuestionService {
	if validate == nil {
		validate = validator.New()
	}
	svc := &FixedQuestionService{repo: repo, validator: validate}
	svc.validator.RegisterValidation("question_type", func(fl validator.FieldLevel) bool { //nolint:errcheck
		switch models.QuestionType(fl.Field().String()) {
		case models.QuestionTypeText, models.QuestionTypeMultipleChoice:
			return true
		default:
			return false
		}
	})
	return svc
}

func (s *FixedQuestionService) validate(question *models.FixedQuestion) error {
	if err := s.validator.Var(string(question.Type), "question_type"); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "tipo de pergunta inválido")
	}
	if question.Type == models.QuestionTypeMultipleChoice && len(question.Options) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "perguntas de múltipla escolha exigem opções")
	}
	return nil
}

func (s *FixedQuestionService) Create(ctx context.Context, teacherID string, req dto.CreateFixedQuestionRequest) (*models.FixedQuestion, error) {
	question := &models.FixedQuestion{
		TeacherID: teacherID,
		Text:      req.Text,
		Type:      req.Type,
		Options:   models.OptionList(req.Options),
		FieldKey:  req.FieldKey,
		Position:  req.Position,
		Active:    true,
	}
	if err := s.validate(question); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *FixedQuestionService) List(ctx context.Context, teacherID string) ([]models.FixedQuestion, error) {
	return s.repo.ListByTeacher(ctx, teacherID)
}

func (s *FixedQuestionService) Update(ctx context.Context, id, teacherID string, req dto.UpdateFixedQuestionRequest) (*models.FixedQuestion, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pergunta não encontrada")
		}
		return nil, err
	}
	if question.TeacherID != teacherID {
		return nil, appErrors.ErrForbidden
	}
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Options != nil {
		question.Options = models.OptionList(req.Options)
	}
	if req.FieldKey != nil {
		question.FieldKey = *req.FieldKey
	}
	if req.Position != nil {
		question.Position = *req.Position
	}
	if req.Active != nil {
		question.Active = *req.Active
	}
	if err := s.validate(question); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *FixedQuestionService) Delete(ctx context.Context, id, teacherID string) error {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pergunta não encontrada")
		}
		return err
	}
	if question.TeacherID != teacherID {
		return appErrors.ErrForbidden
	}
	return s.repo.Delete(ctx, id, teacherID)
}
