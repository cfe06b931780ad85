package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/models"
)

func TestExtractDetectsLabeledName(t *testing.T) {
	students := newStudentStoreStub(&models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "arquivo 01",
		Term: "1º Bimestre", SourceFilePath: "doc.txt", Status: models.StatusExtractingData,
	})
	documents := newBucketStub()
	documents.files["doc.txt"] = []byte("Relatório individual\nEstudante: Maria Clara dos Santos\nObservações: participa das aulas.")

	svc := NewExtractionService(students, documents, nil)
	student, _ := students.FindByID(context.Background(), "student-1")
	require.NoError(t, svc.Extract(context.Background(), student))

	assert.Equal(t, "Maria Clara dos Santos", student.Name)
	assert.Equal(t, models.StatusAwaitingQuestions, student.Status)
	require.NotNil(t, student.ExtractedEvidence)
	assert.Contains(t, *student.ExtractedEvidence, "participa das aulas")
}

func TestExtractHeuristicFallback(t *testing.T) {
	students := newStudentStoreStub(&models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "arquivo",
		SourceFilePath: "doc.txt", Status: models.StatusExtractingData,
	})
	documents := newBucketStub()
	documents.files["doc.txt"] = []byte("observações do bimestre\nPedro Henrique Lima\ndemonstra interesse em matemática")

	svc := NewExtractionService(students, documents, nil)
	student, _ := students.FindByID(context.Background(), "student-1")
	require.NoError(t, svc.Extract(context.Background(), student))
	assert.Equal(t, "Pedro Henrique Lima", student.Name)
}

func TestExtractRejectsShortCandidates(t *testing.T) {
	students := newStudentStoreStub(&models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "arquivo original",
		SourceFilePath: "doc.txt", Status: models.StatusExtractingData,
	})
	documents := newBucketStub()
	documents.files["doc.txt"] = []byte("Estudante: Jo\ntexto sem outros nomes aqui")

	svc := NewExtractionService(students, documents, nil)
	student, _ := students.FindByID(context.Background(), "student-1")
	require.NoError(t, svc.Extract(context.Background(), student))
	// candidate under 3 chars keeps the provisional name
	assert.Equal(t, "arquivo original", student.Name)
}

func TestExtractUnreadableContentIsNotAnError(t *testing.T) {
	students := newStudentStoreStub(&models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "arquivo",
		SourceFilePath: "doc.bin", Status: models.StatusExtractingData,
	})
	documents := newBucketStub()
	documents.files["doc.bin"] = []byte{0x00, 0x01, 0x02, 0x03}

	svc := NewExtractionService(students, documents, nil)
	student, _ := students.FindByID(context.Background(), "student-1")
	require.NoError(t, svc.Extract(context.Background(), student))

	assert.Equal(t, models.StatusAwaitingQuestions, student.Status)
	require.NotNil(t, student.ExtractedEvidence)
	assert.Equal(t, UnreadableEvidence, *student.ExtractedEvidence)
}

func TestExtractStorageFailureMovesToError(t *testing.T) {
	students := newStudentStoreStub(&models.Student{
		ID: "student-1", TeacherID: "teacher-1", Name: "arquivo",
		SourceFilePath: "missing.txt", Status: models.StatusExtractingData,
	})
	documents := newBucketStub()
	documents.fail = true

	svc := NewExtractionService(students, documents, nil)
	student, _ := students.FindByID(context.Background(), "student-1")
	require.Error(t, svc.Extract(context.Background(), student))

	persisted, _ := students.FindByID(context.Background(), "student-1")
	assert.Equal(t, models.StatusError, persisted.Status)
}
