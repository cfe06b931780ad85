package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/pkg/storage"
)

func TestEvaluationHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reports, err := storage.NewBucket(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, reports.Save("teacher-1/student-1/RAv_Maria.rtf", []byte("{\\rtf1 conteudo}")))

	signer := storage.NewSignedURLSigner("segredo-de-teste", time.Hour)
	h := NewEvaluationHandler(nil, reports, signer)

	token, _, err := signer.Generate("student-1", "teacher-1/student-1/RAv_Maria.rtf")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/student-1/evaluation/download?token="+token, nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{\\rtf1 conteudo}", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "RAv_Maria.rtf")
}

func TestEvaluationHandlerDownloadWrongStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reports, err := storage.NewBucket(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("segredo-de-teste", time.Hour)
	h := NewEvaluationHandler(nil, reports, signer)

	token, _, err := signer.Generate("student-1", "teacher-1/student-1/RAv_Maria.rtf")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/student-2/evaluation/download?token="+token, nil)
	c.Params = gin.Params{{Key: "id", Value: "student-2"}}

	h.Download(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEvaluationHandlerDownloadBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reports, err := storage.NewBucket(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("segredo-de-teste", time.Hour)
	h := NewEvaluationHandler(nil, reports, signer)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/student-1/evaluation/download?token=garbage", nil)
	c.Params = gin.Params{{Key: "id", Value: "student-1"}}

	h.Download(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
