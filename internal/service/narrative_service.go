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

type narrativeGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NarrativeService synthesizes the evaluation narrative from the
// collected answers.
type NarrativeService struct {
	students studentStore
	answers  answerStore
	ai       narrativeGenerator
	logger   *zap.Logger
}

func NewNarrativeService(students studentStore, answers answerStore, gen narrativeGenerator, logger *zap.Logger) *NarrativeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrativeService{students: students, answers: answers, ai: gen, logger: logger}
}

// Generate runs a single chat completion over the student's Q/A pairs
// and persists the narrative. On failure the record stays in
// processing_answer so the operation can be retried.
func (s *NarrativeService) Generate(ctx context.Context, student *models.Student) (string, error) {
	answered, err := s.answers.ListAnsweredQuestions(ctx, student.ID)
	if err != nil {
		return "", err
	}
	if len(answered) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "nenhuma resposta registrada para este aluno")
	}

	var previousNarrative, previousTerm string
	if previous, err := s.students.FindPreviousTerm(ctx, student.Name, student.TeacherID, student.Term); err != nil {
		return "", err
	} else if previous != nil && previous.GeneratedNarrative != nil {
		previousNarrative = *previous.GeneratedNarrative
		previousTerm = previous.Term
	}

	var evidence string
	if student.ExtractedEvidence != nil {
		evidence = *student.ExtractedEvidence
	}

	system, user := ai.NarrativePrompt(student.Name, student.Term, previousTerm, previousNarrative, evidence, answered)
	narrative, err := s.ai.Complete(ctx, system, user)
	if err != nil {
		s.logger.Error("narrative generation failed",
			zap.String("student_id", student.ID),
			zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrModelResponse.Code, appErrors.ErrModelResponse.Status, appErrors.ErrModelResponse.Message)
	}

	payload := &models.PromptPayload{
		Source:    "narrative",
		Prompt:    user,
		Response:  narrative,
		Timestamp: time.Now().UTC(),
	}
	if err := advance(ctx, s.students, student, models.StatusGeneratingDocument, repository.UpdateStudentParams{
		GeneratedNarrative: &narrative,
		NarrativePayload:   payload,
	}); err != nil {
		return "", fmt.Errorf("persist narrative: %w", err)
	}
	student.GeneratedNarrative = &narrative
	return narrative, nil
}
