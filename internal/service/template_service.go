package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

type templateStore interface {
	Create(ctx context.Context, tpl *models.Template) error
	FindByID(ctx context.Context, id string) (*models.Template, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Template, error)
	Delete(ctx context.Context, id, teacherID string) error
}

type templateBucket interface {
	SaveStream(name string, r io.Reader) error
	Read(name string) ([]byte, error)
	Delete(name string) error
}

// TemplateService manages teacher-uploaded report layouts.
type TemplateService struct {
	repo   templateStore
	bucket templateBucket
	logger *zap.Logger
}

func NewTemplateService(repo templateStore, bucket templateBucket, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{repo: repo, bucket: bucket, logger: logger}
}

// Upload stores a template file and registers it. Only text-based
// formats carry the `${...}` markers the renderer substitutes.
func (s *TemplateService) Upload(ctx context.Context, teacherID, name, term string, fh *multipart.FileHeader) (*models.Template, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	switch ext {
	case "rtf", "txt", "html":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("modelo deve ser rtf, txt ou html, recebido: %s", ext))
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir modelo: %w", err)
	}
	defer f.Close()

	id := uuid.NewString()
	objectPath := path.Join(teacherID, id+"."+ext)
	if err := s.bucket.SaveStream(objectPath, f); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	tpl := &models.Template{
		ID:        id,
		TeacherID: teacherID,
		Name:      name,
		Term:      term,
		FilePath:  objectPath,
	}
	if err := s.repo.Create(ctx, tpl); err != nil {
		if delErr := s.bucket.Delete(objectPath); delErr != nil {
			s.logger.Warn("orphaned template cleanup failed", zap.Error(delErr))
		}
		return nil, err
	}
	return tpl, nil
}

// Content returns the raw template text for rendering.
func (s *TemplateService) Content(ctx context.Context, templateID, teacherID string) (string, error) {
	tpl, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "modelo não encontrado")
		}
		return "", err
	}
	if tpl.TeacherID != teacherID {
		return "", appErrors.ErrForbidden
	}
	raw, err := s.bucket.Read(tpl.FilePath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return string(raw), nil
}

// List returns the teacher's templates.
func (s *TemplateService) List(ctx context.Context, teacherID string) ([]models.Template, error) {
	return s.repo.ListByTeacher(ctx, teacherID)
}

// Delete removes the template record and its file.
func (s *TemplateService) Delete(ctx context.Context, templateID, teacherID string) error {
	tpl, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "modelo não encontrado")
		}
		return err
	}
	if tpl.TeacherID != teacherID {
		return appErrors.ErrForbidden
	}
	if err := s.bucket.Delete(tpl.FilePath); err != nil {
		s.logger.Warn("template file delete failed",
			zap.String("path", tpl.FilePath),
			zap.Error(err))
	}
	return s.repo.Delete(ctx, templateID, teacherID)
}
