package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/models"
)

func TestAnswerRepositoryUpsertUpdatesExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnswerRepository(db)
	mock.ExpectQuery("SELECT id FROM answers").
		WithArgs("student-1", "question-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("answer-1"))
	mock.ExpectExec("UPDATE answers SET response").
		WithArgs("Sim, com apoio", nil, "answer-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	answer := &models.Answer{StudentID: "student-1", QuestionID: "question-1", Response: "Sim, com apoio"}
	require.NoError(t, repo.Upsert(context.Background(), answer))
	assert.Equal(t, "answer-1", answer.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryUpsertInsertsWhenMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnswerRepository(db)
	mock.ExpectQuery("SELECT id FROM answers").
		WithArgs("student-1", "question-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO answers").
		WillReturnResult(sqlmock.NewResult(1, 1))

	answer := &models.Answer{StudentID: "student-1", QuestionID: "question-1", Response: "Melhorou bastante"}
	require.NoError(t, repo.Upsert(context.Background(), answer))
	assert.NotEmpty(t, answer.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryUpsertDropsEmptyNewResponse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnswerRepository(db)
	mock.ExpectQuery("SELECT id FROM answers").
		WithArgs("student-1", "question-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	answer := &models.Answer{StudentID: "student-1", QuestionID: "question-1", Response: "   "}
	require.NoError(t, repo.Upsert(context.Background(), answer))
	assert.Empty(t, answer.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryReplaceAllIsTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnswerRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM answers").
		WithArgs("student-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO answers").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO answers").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	answers := []models.Answer{
		{QuestionID: "question-1", Response: "Sim"},
		{QuestionID: "question-2", Response: models.AnswerNotApplicable},
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), "student-1", answers))
	assert.Equal(t, "student-1", answers[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryListAnsweredQuestions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnswerRepository(db)
	rows := sqlmock.NewRows([]string{"question_id", "question_text", "response", "note", "position"}).
		AddRow("question-1", "O aluno demonstra autonomia?", "Sim", nil, 1).
		AddRow("question-2", "Como está a leitura?", "Melhorou", "obs", 2)
	mock.ExpectQuery("SELECT a.question_id, q.text").
		WithArgs("student-1").
		WillReturnRows(rows)

	answered, err := repo.ListAnsweredQuestions(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, answered, 2)
	assert.Equal(t, "O aluno demonstra autonomia?", answered[0].QuestionText)
	require.NotNil(t, answered[1].Note)
	assert.Equal(t, "obs", *answered[1].Note)
}
