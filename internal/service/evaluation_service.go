package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

// EvaluationService coordinates the per-student pipeline: extraction,
// question generation, answer collection, narrative synthesis and
// document rendering. Every step writes an audit log entry and returns
// the resulting status.
type EvaluationService struct {
	students   studentStore
	questions  questionStore
	answers    answerStore
	logs       logStore
	extraction *ExtractionService
	generator  *QuestionService
	collector  *AnswerService
	narrative  *NarrativeService
	renderer   *RenderService
	configs    configurationProvider
	metrics    *MetricsService
	logger     *zap.Logger
}

func NewEvaluationService(
	students studentStore,
	questions questionStore,
	answers answerStore,
	logs logStore,
	extraction *ExtractionService,
	generator *QuestionService,
	collector *AnswerService,
	narrative *NarrativeService,
	renderer *RenderService,
	configs configurationProvider,
	metrics *MetricsService,
	logger *zap.Logger,
) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		students:   students,
		questions:  questions,
		answers:    answers,
		logs:       logs,
		extraction: extraction,
		generator:  generator,
		collector:  collector,
		narrative:  narrative,
		renderer:   renderer,
		configs:    configs,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *EvaluationService) observe(step string, err error) {
	if s.metrics != nil {
		s.metrics.ObservePipelineStep(step, err)
	}
}

// load fetches the student and enforces teacher ownership.
func (s *EvaluationService) load(ctx context.Context, studentID, teacherID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "aluno não encontrado")
		}
		return nil, err
	}
	if student.TeacherID != teacherID {
		return nil, appErrors.ErrForbidden
	}
	return student, nil
}

func (s *EvaluationService) transition(ctx context.Context, student *models.Student, to models.EvaluationStatus) error {
	return advance(ctx, s.students, student, to, repository.UpdateStudentParams{})
}

func (s *EvaluationService) audit(ctx context.Context, student *models.Student, level models.LogLevel, message string) {
	entry := &models.LogEntry{
		StudentID: student.ID,
		TeacherID: student.TeacherID,
		Level:     level,
		Message:   message,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Warn("audit log insert failed",
			zap.String("student_id", student.ID),
			zap.Error(err))
	}
}

// questionMode resolves the effective mode: an explicit caller override
// wins, then the teacher configuration, then fixed.
func (s *EvaluationService) questionMode(ctx context.Context, teacherID string, override models.QuestionMode) models.QuestionMode {
	if override.Valid() {
		return override
	}
	cfg, err := s.configs.Get(ctx, teacherID)
	if err != nil || cfg == nil || !cfg.QuestionMode.Valid() {
		return models.QuestionModeFixed
	}
	return cfg.QuestionMode
}

// Start runs extraction and question generation for a pending student.
// An empty mode defers to the teacher configuration.
func (s *EvaluationService) Start(ctx context.Context, studentID, teacherID string, mode models.QuestionMode) (*models.Student, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, student, models.StatusExtractingData); err != nil {
		return nil, err
	}
	s.audit(ctx, student, models.LogLevelInfo, "Processamento iniciado")

	err = s.extraction.Extract(ctx, student)
	s.observe("extraction", err)
	if err != nil {
		s.audit(ctx, student, models.LogLevelError, fmt.Sprintf("Falha na extração: %v", err))
		return student, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	s.audit(ctx, student, models.LogLevelSuccess, "Dados extraídos do documento")

	return s.generateQuestions(ctx, student, mode)
}

func (s *EvaluationService) generateQuestions(ctx context.Context, student *models.Student, override models.QuestionMode) (*models.Student, error) {
	mode := s.questionMode(ctx, student.TeacherID, override)
	questions, err := s.generator.Generate(ctx, student, mode)
	s.observe("questions", err)
	if err != nil {
		s.fail(ctx, student, fmt.Sprintf("Falha na geração de perguntas: %v", err))
		return student, err
	}
	s.audit(ctx, student, models.LogLevelSuccess,
		fmt.Sprintf("%d perguntas geradas (%s)", len(questions), mode))
	return student, nil
}

// Continue re-enters answer collection for a stalled student: existing
// questions resume as-is, otherwise a fresh set is generated.
func (s *EvaluationService) Continue(ctx context.Context, studentID, teacherID string) (*models.Student, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	count, err := s.questions.CountByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		if err := s.transition(ctx, student, models.StatusAwaitingAnswers); err != nil {
			return nil, err
		}
		s.audit(ctx, student, models.LogLevelInfo, "Avaliação retomada")
		return student, nil
	}
	if student.ExtractedEvidence == nil {
		return s.Start(ctx, studentID, teacherID, "")
	}
	return s.generateQuestions(ctx, student, "")
}

// Reset returns the student to pending and deletes questions and
// answers. Extracted evidence and narratives from prior terms survive.
func (s *EvaluationService) Reset(ctx context.Context, studentID, teacherID string) (*models.Student, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	if !models.ValidTransition(student.Status, models.StatusPending) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "aluno já está pendente")
	}
	if err := s.answers.DeleteByStudent(ctx, student.ID); err != nil {
		return nil, err
	}
	if err := s.questions.DeleteByStudent(ctx, student.ID); err != nil {
		return nil, err
	}
	status := models.StatusPending
	if err := s.students.Update(ctx, student.ID, repository.UpdateStudentParams{Status: &status}); err != nil {
		return nil, err
	}
	student.Status = status
	s.audit(ctx, student, models.LogLevelInfo, "Avaliação reiniciada")
	return student, nil
}

// SubmitAnswers finalizes the answer set and moves to processing_answer.
func (s *EvaluationService) SubmitAnswers(ctx context.Context, studentID, teacherID string, req dto.SubmitAnswersRequest) (*models.Student, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	if !models.ValidTransition(student.Status, models.StatusProcessingAnswer) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("não é possível enviar respostas no estado %s", student.Status))
	}
	if err := s.collector.Submit(ctx, student, req); err != nil {
		return nil, err
	}
	if err := s.transition(ctx, student, models.StatusProcessingAnswer); err != nil {
		return nil, err
	}
	s.audit(ctx, student, models.LogLevelSuccess, "Respostas registradas")
	return student, nil
}

// Autosave proxies draft answer saves through the answer service.
func (s *EvaluationService) Autosave(ctx context.Context, studentID, teacherID string, req dto.AutosaveAnswerRequest) error {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return err
	}
	s.collector.Autosave(student.ID, req)
	return nil
}

// GenerateNarrative runs the narrative step for a student in
// processing_answer. Failures leave the status untouched for retry.
func (s *EvaluationService) GenerateNarrative(ctx context.Context, studentID, teacherID string) (*models.Student, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	if student.Status != models.StatusProcessingAnswer {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("não é possível gerar o relatório no estado %s", student.Status))
	}
	_, err = s.narrative.Generate(ctx, student)
	s.observe("narrative", err)
	if err != nil {
		s.audit(ctx, student, models.LogLevelError, fmt.Sprintf("Falha na geração do texto: %v", err))
		return student, err
	}
	s.audit(ctx, student, models.LogLevelSuccess, "Texto do relatório gerado")
	return student, nil
}

// RenderDocument produces the final document in the requested format.
func (s *EvaluationService) RenderDocument(ctx context.Context, studentID, teacherID string, format ReportFormat) (*models.Student, *RenderedReport, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, nil, err
	}
	if student.Status != models.StatusGeneratingDocument && student.Status != models.StatusCompleted {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("não é possível renderizar no estado %s", student.Status))
	}
	report, err := s.renderer.Render(ctx, student, format)
	s.observe("render", err)
	if err != nil {
		s.audit(ctx, student, models.LogLevelError, fmt.Sprintf("Falha na renderização: %v", err))
		return student, nil, err
	}
	s.audit(ctx, student, models.LogLevelSuccess, fmt.Sprintf("Documento gerado (%s)", format))
	return student, report, nil
}

// Preview renders the HTML preview without side effects.
func (s *EvaluationService) Preview(ctx context.Context, studentID, teacherID string) ([]byte, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Preview(ctx, student)
}

// Questions lists the student's current question set.
func (s *EvaluationService) Questions(ctx context.Context, studentID, teacherID string) ([]models.Question, []models.Answer, error) {
	student, err := s.load(ctx, studentID, teacherID)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.questions.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, nil, err
	}
	answers, err := s.answers.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, nil, err
	}
	return questions, answers, nil
}

// fail moves a student to error and records the cause.
func (s *EvaluationService) fail(ctx context.Context, student *models.Student, message string) {
	status := models.StatusError
	if models.ValidTransition(student.Status, status) {
		if err := s.students.Update(ctx, student.ID, repository.UpdateStudentParams{Status: &status}); err == nil {
			student.Status = status
		}
	}
	s.audit(ctx, student, models.LogLevelError, message)
}
