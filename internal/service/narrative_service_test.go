package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/models"
)

func narrativeFixture() (*studentStoreStub, *models.Student, *answerStoreStub) {
	evidence := "Participa das atividades em grupo e avança na leitura."
	student := &models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "Maria", Term: "2º Bimestre",
		Status: models.StatusProcessingAnswer, ExtractedEvidence: &evidence,
	}
	students := newStudentStoreStub(student)
	questions := newQuestionStoreStub()
	questions.byStudent["student-1"] = []models.Question{
		{ID: "q1", StudentID: "student-1", Text: "Como está a leitura?", Position: 1},
	}
	answers := newAnswerStoreStub(questions)
	answers.byStudent["student-1"] = []models.Answer{
		{ID: "a1", StudentID: "student-1", QuestionID: "q1", Response: "Lê frases completas"},
	}
	return students, student, answers
}

func TestNarrativeGenerateAdvancesStatus(t *testing.T) {
	students, student, answers := narrativeFixture()
	gen := &generatorStub{completeFn: func(ctx context.Context, system, user string) (string, error) {
		assert.Contains(t, user, "Como está a leitura?")
		assert.Contains(t, user, "Lê frases completas")
		return "Ao longo do 2º Bimestre, Maria evoluiu na leitura.", nil
	}}

	svc := NewNarrativeService(students, answers, gen, nil)
	narrative, err := svc.Generate(context.Background(), student)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(narrative, "Ao longo do 2º Bimestre"))
	assert.Equal(t, models.StatusGeneratingDocument, student.Status)
	require.NotNil(t, student.NarrativePayload)
	assert.Equal(t, "narrative", student.NarrativePayload.Source)
}

func TestNarrativeModelFailureKeepsStatus(t *testing.T) {
	students, student, answers := narrativeFixture()
	gen := &generatorStub{completeFn: func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("bad gateway")
	}}

	svc := NewNarrativeService(students, answers, gen, nil)
	_, err := svc.Generate(context.Background(), student)
	require.Error(t, err)

	persisted, _ := students.FindByID(context.Background(), student.ID)
	assert.Equal(t, models.StatusProcessingAnswer, persisted.Status)
	assert.Nil(t, persisted.GeneratedNarrative)
}

func TestNarrativeRequiresAnswers(t *testing.T) {
	students, student, answers := narrativeFixture()
	answers.byStudent = map[string][]models.Answer{}

	svc := NewNarrativeService(students, answers, &generatorStub{}, nil)
	_, err := svc.Generate(context.Background(), student)
	require.Error(t, err)
}
