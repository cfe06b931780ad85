package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/middleware"
	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
	"github.com/ravgen/rav-api/internal/service"
)

type configurationStoreStub struct {
	saved *models.Configuration
}

func (s *configurationStoreStub) Upsert(ctx context.Context, cfg *models.Configuration) error {
	s.saved = cfg
	return nil
}

func (s *configurationStoreStub) GetByTeacher(ctx context.Context, teacherID string) (*models.Configuration, error) {
	return s.saved, nil
}

func newConfigurationHandler(store *configurationStoreStub) *ConfigurationHandler {
	svc := service.NewConfigurationService(store, repository.NewCacheRepository(nil), 0, nil)
	return NewConfigurationHandler(svc)
}

func TestConfigurationHandlerUpsertInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newConfigurationHandler(&configurationStoreStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPut, "/configuration", bytes.NewReader([]byte(`{"term":""}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{TeacherID: "teacher-1"})

	h.Upsert(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigurationHandlerGetRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newConfigurationHandler(&configurationStoreStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/configuration", nil)

	h.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
