package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

type evaluationFixture struct {
	svc       *EvaluationService
	students  *studentStoreStub
	questions *questionStoreStub
	answers   *answerStoreStub
	logs      *logStoreStub
	documents *bucketStub
}

func newEvaluationFixture(t *testing.T, student *models.Student) *evaluationFixture {
	t.Helper()
	students := newStudentStoreStub(student)
	questions := newQuestionStoreStub()
	answers := newAnswerStoreStub(questions)
	logs := &logStoreStub{}
	documents := newBucketStub()
	documents.files[student.SourceFilePath] = []byte("Estudante: " + student.Name + "\nObservações gerais do período.")

	extraction := NewExtractionService(students, documents, nil)
	generator := NewQuestionService(students, questions, answers, fixedBank(student.TeacherID), &generatorStub{}, "gpt-4o-mini", nil)
	collector := NewAnswerService(students, questions, answers, nil, nil)
	narrative := NewNarrativeService(students, answers, &generatorStub{completeFn: func(ctx context.Context, system, user string) (string, error) {
		return "Ao longo do bimestre, houve avanços.", nil
	}}, nil)
	configs := &configProviderStub{cfg: &models.Configuration{
		TeacherID: student.TeacherID, Term: student.Term,
		Registration: "123", QuestionMode: models.QuestionModeFixed,
	}}
	renderer := NewRenderService(students, configs, nil, newBucketStub(), nil)

	svc := NewEvaluationService(students, questions, answers, logs,
		extraction, generator, collector, narrative, renderer, configs, nil, nil)
	return &evaluationFixture{
		svc: svc, students: students, questions: questions,
		answers: answers, logs: logs, documents: documents,
	}
}

func pendingStudent() *models.Student {
	return &models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "Maria Souza",
		Term: "2º Bimestre", SourceFilePath: "doc.txt", Status: models.StatusPending,
	}
}

func TestStartRunsExtractionAndQuestions(t *testing.T) {
	f := newEvaluationFixture(t, pendingStudent())

	student, err := f.svc.Start(context.Background(), "student-1", "teacher-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAnswers, student.Status)
	assert.NotEmpty(t, f.questions.byStudent["student-1"])
	assert.NotEmpty(t, f.logs.entries)
}

func TestStartModeOverrideBeatsConfiguration(t *testing.T) {
	f := newEvaluationFixture(t, pendingStudent())

	// config says fixed, the caller forces dynamic; with no previous
	// narrative the generic set is used instead of the bank
	student, err := f.svc.Start(context.Background(), "student-1", "teacher-1", models.QuestionModeDynamic)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAnswers, student.Status)
	assert.Len(t, f.questions.byStudent["student-1"], len(genericQuestions))
}

func TestStartRejectsForeignStudent(t *testing.T) {
	f := newEvaluationFixture(t, pendingStudent())

	_, err := f.svc.Start(context.Background(), "student-1", "other-teacher", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStartRejectsNonPendingStudent(t *testing.T) {
	student := pendingStudent()
	student.Status = models.StatusCompleted
	f := newEvaluationFixture(t, student)

	_, err := f.svc.Start(context.Background(), "student-1", "teacher-1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestResetClearsQuestionsAndAnswersKeepsEvidence(t *testing.T) {
	evidence := "evidências extraídas"
	student := pendingStudent()
	student.Status = models.StatusAwaitingAnswers
	student.ExtractedEvidence = &evidence
	f := newEvaluationFixture(t, student)
	f.questions.byStudent["student-1"] = []models.Question{{ID: "q1", StudentID: "student-1"}}
	f.answers.byStudent["student-1"] = []models.Answer{{ID: "a1", StudentID: "student-1", QuestionID: "q1", Response: "x"}}

	result, err := f.svc.Reset(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, result.Status)
	assert.Empty(t, f.questions.byStudent["student-1"])
	assert.Empty(t, f.answers.byStudent["student-1"])

	persisted, _ := f.students.FindByID(context.Background(), "student-1")
	require.NotNil(t, persisted.ExtractedEvidence)
	assert.Equal(t, evidence, *persisted.ExtractedEvidence)
}

func TestResetFromPendingIsRejected(t *testing.T) {
	f := newEvaluationFixture(t, pendingStudent())

	_, err := f.svc.Reset(context.Background(), "student-1", "teacher-1")
	require.Error(t, err)
}

func TestContinueResumesWhenQuestionsExist(t *testing.T) {
	student := pendingStudent()
	student.Status = models.StatusProcessingAnswer
	f := newEvaluationFixture(t, student)
	f.questions.byStudent["student-1"] = []models.Question{{ID: "q1", StudentID: "student-1", Text: "pergunta"}}

	result, err := f.svc.Continue(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAnswers, result.Status)
	// existing questions are kept as-is
	assert.Len(t, f.questions.byStudent["student-1"], 1)
	assert.Equal(t, "q1", f.questions.byStudent["student-1"][0].ID)
}

func TestContinueFromAwaitingAnswersResumes(t *testing.T) {
	// the teacher closed the browser mid-answers; the status never left
	// awaiting_answers and continue must not reject the re-entry
	student := pendingStudent()
	student.Status = models.StatusAwaitingAnswers
	f := newEvaluationFixture(t, student)
	f.questions.byStudent["student-1"] = []models.Question{{ID: "q1", StudentID: "student-1", Text: "pergunta"}}
	f.answers.byStudent["student-1"] = []models.Answer{{ID: "a1", StudentID: "student-1", QuestionID: "q1", Response: "rascunho"}}

	result, err := f.svc.Continue(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAnswers, result.Status)
	assert.Len(t, f.questions.byStudent["student-1"], 1)
	assert.Len(t, f.answers.byStudent["student-1"], 1, "draft answers survive the resume")
}

func TestContinueRegeneratesWhenQuestionsMissing(t *testing.T) {
	evidence := "texto extraído"
	student := pendingStudent()
	student.Status = models.StatusAwaitingQuestions
	student.ExtractedEvidence = &evidence
	f := newEvaluationFixture(t, student)

	result, err := f.svc.Continue(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAnswers, result.Status)
	assert.NotEmpty(t, f.questions.byStudent["student-1"])
}

func TestSubmitAnswersAdvancesToProcessing(t *testing.T) {
	student := pendingStudent()
	student.Status = models.StatusAwaitingAnswers
	f := newEvaluationFixture(t, student)
	f.questions.byStudent["student-1"] = []models.Question{
		{ID: "q1", StudentID: "student-1", Text: "pergunta", Position: 1},
	}

	result, err := f.svc.SubmitAnswers(context.Background(), "student-1", "teacher-1", dto.SubmitAnswersRequest{
		Answers: []dto.SubmitAnswer{{QuestionID: "q1", Response: "Sim"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessingAnswer, result.Status)
}

func TestSubmitAnswersValidationKeepsStatus(t *testing.T) {
	student := pendingStudent()
	student.Status = models.StatusAwaitingAnswers
	f := newEvaluationFixture(t, student)
	f.questions.byStudent["student-1"] = []models.Question{
		{ID: "q1", StudentID: "student-1", Position: 1},
		{ID: "q2", StudentID: "student-1", Position: 2},
	}

	_, err := f.svc.SubmitAnswers(context.Background(), "student-1", "teacher-1", dto.SubmitAnswersRequest{
		Answers: []dto.SubmitAnswer{{QuestionID: "q1", Response: "Sim"}},
	})
	require.Error(t, err)

	persisted, _ := f.students.FindByID(context.Background(), "student-1")
	assert.Equal(t, models.StatusAwaitingAnswers, persisted.Status)
}

func TestGenerateNarrativeFullFlow(t *testing.T) {
	student := pendingStudent()
	student.Status = models.StatusProcessingAnswer
	f := newEvaluationFixture(t, student)
	f.questions.byStudent["student-1"] = []models.Question{{ID: "q1", StudentID: "student-1", Text: "pergunta", Position: 1}}
	f.answers.byStudent["student-1"] = []models.Answer{{ID: "a1", StudentID: "student-1", QuestionID: "q1", Response: "Sim"}}

	result, err := f.svc.GenerateNarrative(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusGeneratingDocument, result.Status)
	require.NotNil(t, result.GeneratedNarrative)
}

func TestRenderDocumentCompletesEvaluation(t *testing.T) {
	narrative := "Ao longo do 2º Bimestre, Maria evoluiu.\n\nSegue participativa."
	student := pendingStudent()
	student.Status = models.StatusGeneratingDocument
	student.GeneratedNarrative = &narrative
	f := newEvaluationFixture(t, student)

	result, report, err := f.svc.RenderDocument(context.Background(), "student-1", "teacher-1", FormatRTF)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	require.NotNil(t, report)
	assert.Equal(t, "application/rtf", report.ContentType)
	require.NotNil(t, result.ProcessedFilePath)
}

func TestRenderDocumentRejectedBeforeNarrative(t *testing.T) {
	student := pendingStudent()
	student.Status = models.StatusAwaitingAnswers
	f := newEvaluationFixture(t, student)

	_, _, err := f.svc.RenderDocument(context.Background(), "student-1", "teacher-1", FormatPDF)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}
