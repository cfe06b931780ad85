package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/jobs"
)

// JobTypeAutosaveAnswer identifies autosave writes on the jobs queue.
const JobTypeAutosaveAnswer = "autosave_answer"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// AnswerService collects teacher responses: best-effort autosave drafts
// and the synchronous final submission.
type AnswerService struct {
	students  studentStore
	questions questionStore
	answers   answerStore
	queue     jobDispatcher
	logger    *zap.Logger
}

func NewAnswerService(students studentStore, questions questionStore, answers answerStore, queue jobDispatcher, logger *zap.Logger) *AnswerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerService{
		students:  students,
		questions: questions,
		answers:   answers,
		queue:     queue,
		logger:    logger,
	}
}

type autosavePayload struct {
	StudentID  string
	QuestionID string
	Response   string
	Note       *string
}

// Autosave enqueues a draft write and returns immediately. Queue and
// persistence failures are logged, never surfaced: a lost draft must not
// interrupt typing.
func (s *AnswerService) Autosave(studentID string, req dto.AutosaveAnswerRequest) {
	if s.queue == nil {
		s.logger.Warn("autosave queue not configured", zap.String("student_id", studentID))
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		Type: JobTypeAutosaveAnswer,
		Payload: autosavePayload{
			StudentID:  studentID,
			QuestionID: req.QuestionID,
			Response:   req.Response,
			Note:       req.Note,
		},
	})
	if err != nil {
		s.logger.Warn("autosave enqueue failed",
			zap.String("student_id", studentID),
			zap.Error(err))
	}
}

// HandleAutosaveJob is the queue handler backing Autosave.
func (s *AnswerService) HandleAutosaveJob(ctx context.Context, job jobs.Job) error {
	p, ok := job.Payload.(autosavePayload)
	if !ok {
		return fmt.Errorf("unexpected autosave payload %T", job.Payload)
	}
	return s.answers.Upsert(ctx, &models.Answer{
		StudentID:  p.StudentID,
		QuestionID: p.QuestionID,
		Response:   p.Response,
		Note:       p.Note,
	})
}

// Submit validates that every question has a non-empty response and
// replaces the answer set transactionally. "Não se aplica" counts as
// answered. Validation failure leaves state untouched.
func (s *AnswerService) Submit(ctx context.Context, student *models.Student, req dto.SubmitAnswersRequest) error {
	questions, err := s.questions.ListByStudent(ctx, student.ID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "nenhuma pergunta gerada para este aluno")
	}

	byQuestion := make(map[string]dto.SubmitAnswer, len(req.Answers))
	for _, a := range req.Answers {
		byQuestion[a.QuestionID] = a
	}
	var missing []string
	for _, q := range questions {
		a, ok := byQuestion[q.ID]
		if !ok || strings.TrimSpace(a.Response) == "" {
			missing = append(missing, q.Text)
		}
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("responda todas as perguntas antes de enviar (%d pendente(s))", len(missing)))
	}

	answers := make([]models.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, models.Answer{
			QuestionID: a.QuestionID,
			Response:   a.Response,
			Note:       a.Note,
		})
	}
	if err := s.answers.ReplaceAll(ctx, student.ID, answers); err != nil {
		return fmt.Errorf("replace answers: %w", err)
	}
	return nil
}
