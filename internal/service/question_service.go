package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/ai"
	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

// genericQuestions is the built-in fallback set used when neither the
// fixed bank nor term history is available.
var genericQuestions = []models.Question{
	{Text: "Como o aluno se relaciona com os colegas e professores?", Type: models.QuestionTypeText, FieldKey: "relacionamento", Position: 1},
	{Text: "Como está o desenvolvimento da leitura e da escrita?", Type: models.QuestionTypeText, FieldKey: "leitura_escrita", Position: 2},
	{Text: "Como está o desenvolvimento do raciocínio lógico-matemático?", Type: models.QuestionTypeText, FieldKey: "raciocinio", Position: 3},
	{Text: "O aluno demonstra autonomia na realização das atividades?", Type: models.QuestionTypeText, FieldKey: "autonomia", Position: 4},
	{Text: "Quais aspectos merecem maior atenção no próximo período?", Type: models.QuestionTypeText, FieldKey: "atencao", Position: 5},
}

type fixedQuestionStore interface {
	ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.FixedQuestion, error)
}

type questionGenerator interface {
	CompleteJSON(ctx context.Context, system, user string, dest interface{}) (string, error)
}

// QuestionService builds the per-student question set: fixed bank first,
// then AI-generated evolution questions, then the generic fallback.
type QuestionService struct {
	students  studentStore
	questions questionStore
	answers   answerStore
	bank      fixedQuestionStore
	ai        questionGenerator
	model     string
	logger    *zap.Logger
}

func NewQuestionService(students studentStore, questions questionStore, answers answerStore, bank fixedQuestionStore, gen questionGenerator, model string, logger *zap.Logger) *QuestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		students:  students,
		questions: questions,
		answers:   answers,
		bank:      bank,
		ai:        gen,
		model:     model,
		logger:    logger,
	}
}

// Generate replaces the student's question set according to mode and
// advances the record to awaiting_answers.
func (s *QuestionService) Generate(ctx context.Context, student *models.Student, mode models.QuestionMode) ([]models.Question, error) {
	if err := canAdvance(student, models.StatusAwaitingAnswers); err != nil {
		return nil, err
	}
	questions, payload, err := s.build(ctx, student, mode)
	if err != nil {
		return nil, err
	}

	// stale questions and answers go first so re-generation is idempotent
	if err := s.answers.DeleteByStudent(ctx, student.ID); err != nil {
		return nil, fmt.Errorf("clear answers: %w", err)
	}
	if err := s.questions.DeleteByStudent(ctx, student.ID); err != nil {
		return nil, fmt.Errorf("clear questions: %w", err)
	}
	for i := range questions {
		questions[i].StudentID = student.ID
		questions[i].Position = i + 1
	}
	if err := s.questions.BulkInsert(ctx, questions); err != nil {
		return nil, fmt.Errorf("insert questions: %w", err)
	}

	payload.QuestionsInserted = len(questions)
	payload.Timestamp = time.Now().UTC()
	if err := advance(ctx, s.students, student, models.StatusAwaitingAnswers, repository.UpdateStudentParams{
		QuestionPayload: payload,
	}); err != nil {
		return nil, fmt.Errorf("persist question payload: %w", err)
	}
	return questions, nil
}

func (s *QuestionService) build(ctx context.Context, student *models.Student, mode models.QuestionMode) ([]models.Question, *models.PromptPayload, error) {
	if mode == models.QuestionModeFixed {
		bank, err := s.bank.ListActiveByTeacher(ctx, student.TeacherID)
		if err != nil {
			return nil, nil, fmt.Errorf("load fixed bank: %w", err)
		}
		if len(bank) > 0 {
			return questionsFromBank(bank), &models.PromptPayload{Source: "fixed"}, nil
		}
		s.logger.Info("fixed mode with empty bank, using generic questions",
			zap.String("student_id", student.ID))
		return cloneGeneric(), &models.PromptPayload{Source: "generic"}, nil
	}

	previous, err := s.students.FindPreviousTerm(ctx, student.Name, student.TeacherID, student.Term)
	if err != nil {
		return nil, nil, err
	}
	if previous == nil || previous.GeneratedNarrative == nil || *previous.GeneratedNarrative == "" {
		s.logger.Info("no previous narrative, using generic questions",
			zap.String("student_id", student.ID),
			zap.String("term", student.Term))
		return cloneGeneric(), &models.PromptPayload{Source: "generic"}, nil
	}

	system, user := ai.EvolutionQuestionsPrompt(student.Name, previous.Term, student.Term, *previous.GeneratedNarrative)
	var reply ai.QuestionsReply
	raw, err := s.ai.CompleteJSON(ctx, system, user, &reply)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrModelResponse.Code, appErrors.ErrModelResponse.Status, appErrors.ErrModelResponse.Message)
	}

	questions := make([]models.Question, 0, len(reply.Questions)+1)
	limit := len(reply.Questions)
	if limit > 9 {
		limit = 9
	}
	for _, q := range reply.Questions[:limit] {
		questions = append(questions, models.Question{
			Text:     q.Text,
			Type:     models.QuestionType(q.Type),
			Options:  withCatchAlls(models.QuestionType(q.Type), q.Options),
			FieldKey: q.FieldKey,
		})
	}
	questions = append(questions, models.Question{
		Text:     ai.NewSituationsQuestion,
		Type:     models.QuestionTypeText,
		FieldKey: "novas_situacoes",
	})

	return questions, &models.PromptPayload{
		Source:   "dynamic",
		Prompt:   user,
		Response: raw,
	}, nil
}

func questionsFromBank(bank []models.FixedQuestion) []models.Question {
	questions := make([]models.Question, 0, len(bank))
	for _, fq := range bank {
		questions = append(questions, models.Question{
			Text:     fq.Text,
			Type:     fq.Type,
			Options:  withCatchAlls(fq.Type, fq.Options),
			FieldKey: fq.FieldKey,
		})
	}
	return questions
}

// withCatchAlls appends the two catch-all options to multiple-choice
// option lists, never duplicating them.
func withCatchAlls(qt models.QuestionType, options []string) models.OptionList {
	if qt != models.QuestionTypeMultipleChoice {
		return nil
	}
	out := make(models.OptionList, 0, len(options)+2)
	for _, opt := range options {
		if opt == models.OptionAllOfTheAbove || opt == models.OptionNoneOfTheAbove {
			continue
		}
		out = append(out, opt)
	}
	return append(out, models.OptionAllOfTheAbove, models.OptionNoneOfTheAbove)
}

func cloneGeneric() []models.Question {
	out := make([]models.Question, len(genericQuestions))
	copy(out, genericQuestions)
	return out
}
