package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
	"github.com/ravgen/rav-api/pkg/jobs"
)

func newAnswerFixture(t *testing.T) (*AnswerService, *models.Student, *questionStoreStub, *answerStoreStub, *jobs.Queue) {
	t.Helper()
	student := &models.Student{ID: "student-1", TeacherID: "teacher-1", Status: models.StatusAwaitingAnswers}
	students := newStudentStoreStub(student)
	questions := newQuestionStoreStub()
	questions.byStudent["student-1"] = []models.Question{
		{ID: "q1", StudentID: "student-1", Text: "Como está a leitura?", Position: 1},
		{ID: "q2", StudentID: "student-1", Text: "Participação em grupo", Position: 2},
	}
	answers := newAnswerStoreStub(questions)

	svc := NewAnswerService(students, questions, answers, nil, nil)
	queue := jobs.NewQueue("autosave", svc.HandleAutosaveJob, jobs.QueueConfig{Workers: 1})
	svc.queue = queue
	return svc, student, questions, answers, queue
}

func TestAutosavePersistsThroughQueue(t *testing.T) {
	svc, student, _, answers, queue := newAnswerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	svc.Autosave(student.ID, dto.AutosaveAnswerRequest{QuestionID: "q1", Response: "rascunho"})

	require.Eventually(t, func() bool {
		saved, _ := answers.ListByStudent(context.Background(), student.ID)
		return len(saved) == 1 && saved[0].Response == "rascunho"
	}, time.Second, 10*time.Millisecond)
}

func TestAutosaveSwallowsQueueFailure(t *testing.T) {
	svc, student, _, answers, _ := newAnswerFixture(t)
	// queue never started: Enqueue fails, Autosave must not panic or error
	svc.Autosave(student.ID, dto.AutosaveAnswerRequest{QuestionID: "q1", Response: "perdido"})

	saved, _ := answers.ListByStudent(context.Background(), student.ID)
	assert.Empty(t, saved)
}

func TestSubmitRejectsIncompleteAnswers(t *testing.T) {
	svc, student, _, answers, _ := newAnswerFixture(t)

	err := svc.Submit(context.Background(), student, dto.SubmitAnswersRequest{Answers: []dto.SubmitAnswer{
		{QuestionID: "q1", Response: "Sim"},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	saved, _ := answers.ListByStudent(context.Background(), student.ID)
	assert.Empty(t, saved, "failed submit must not persist anything")
}

func TestSubmitRejectsBlankResponses(t *testing.T) {
	svc, student, _, _, _ := newAnswerFixture(t)

	err := svc.Submit(context.Background(), student, dto.SubmitAnswersRequest{Answers: []dto.SubmitAnswer{
		{QuestionID: "q1", Response: "Sim"},
		{QuestionID: "q2", Response: "   "},
	}})
	require.Error(t, err)
}

func TestSubmitAcceptsNotApplicableSentinel(t *testing.T) {
	svc, student, _, answers, _ := newAnswerFixture(t)

	err := svc.Submit(context.Background(), student, dto.SubmitAnswersRequest{Answers: []dto.SubmitAnswer{
		{QuestionID: "q1", Response: "Lendo com fluência"},
		{QuestionID: "q2", Response: models.AnswerNotApplicable},
	}})
	require.NoError(t, err)

	saved, _ := answers.ListByStudent(context.Background(), student.ID)
	assert.Len(t, saved, 2)
}

func TestSubmitWithoutQuestionsFails(t *testing.T) {
	svc, student, questions, _, _ := newAnswerFixture(t)
	questions.byStudent = map[string][]models.Question{}

	err := svc.Submit(context.Background(), student, dto.SubmitAnswersRequest{Answers: []dto.SubmitAnswer{
		{QuestionID: "q1", Response: "Sim"},
	}})
	require.Error(t, err)
}
