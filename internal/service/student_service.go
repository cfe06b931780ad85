package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/internal/repository"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

type documentBucket interface {
	SaveStream(name string, r io.Reader) error
	Delete(name string) error
}

type reportBucket interface {
	Delete(name string) error
}

// StudentService manages the roster and document uploads.
type StudentService struct {
	students  studentStore
	questions questionStore
	answers   answerStore
	logs      logStore
	documents documentBucket
	reports   reportBucket
	logger    *zap.Logger

	maxFileSize int64
	allowedExts map[string]struct{}
}

// StudentServiceConfig bounds uploads.
type StudentServiceConfig struct {
	MaxFileSizeBytes  int64
	AllowedExtensions []string
}

func NewStudentService(students studentStore, questions questionStore, answers answerStore, logs logStore, documents documentBucket, reports reportBucket, cfg StudentServiceConfig, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 << 20
	}
	exts := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	if len(exts) == 0 {
		for _, e := range []string{"pdf", "docx", "doc", "txt", "rtf"} {
			exts[e] = struct{}{}
		}
	}
	return &StudentService{
		students:    students,
		questions:   questions,
		answers:     answers,
		logs:        logs,
		documents:   documents,
		reports:     reports,
		logger:      logger,
		maxFileSize: cfg.MaxFileSizeBytes,
		allowedExts: exts,
	}
}

// Upload stores a batch of source documents and creates one pending
// student per accepted file. Per-file failures are reported, never abort
// the batch.
func (s *StudentService) Upload(ctx context.Context, teacherID, term string, files []*multipart.FileHeader) (*dto.UploadResult, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nenhum arquivo enviado")
	}
	result := &dto.UploadResult{}
	for _, fh := range files {
		student, err := s.uploadOne(ctx, teacherID, term, fh)
		if err != nil {
			s.logger.Warn("upload rejected",
				zap.String("filename", fh.Filename),
				zap.Error(err))
			result.Failures = append(result.Failures, dto.UploadFailure{
				Filename: fh.Filename,
				Reason:   err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, *student)
	}
	return result, nil
}

func (s *StudentService) uploadOne(ctx context.Context, teacherID, term string, fh *multipart.FileHeader) (*models.Student, error) {
	if fh.Size > s.maxFileSize {
		return nil, fmt.Errorf("arquivo excede o limite de %d bytes", s.maxFileSize)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if _, ok := s.allowedExts[ext]; !ok {
		return nil, fmt.Errorf("extensão não permitida: %s", ext)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir arquivo: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("ler arquivo: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if strings.HasPrefix(contentType, "video/") || strings.HasPrefix(contentType, "audio/") || strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("tipo de conteúdo não permitido: %s", contentType)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("reposicionar arquivo: %w", err)
	}

	id := uuid.NewString()
	objectPath := path.Join(teacherID, id+"."+ext)
	if err := s.documents.SaveStream(objectPath, f); err != nil {
		return nil, fmt.Errorf("salvar documento: %w", err)
	}

	student := &models.Student{
		ID:             id,
		TeacherID:      teacherID,
		Name:           nameFromFilename(fh.Filename),
		Term:           term,
		SourceFilePath: objectPath,
		Status:         models.StatusPending,
	}
	if err := s.students.Create(ctx, student); err != nil {
		// the stored document would be orphaned otherwise
		if delErr := s.documents.Delete(objectPath); delErr != nil {
			s.logger.Warn("orphaned document cleanup failed",
				zap.String("path", objectPath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("registrar aluno: %w", err)
	}
	return student, nil
}

// nameFromFilename derives the provisional student name shown until
// extraction finds the real one.
func nameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// List returns a roster page and pagination metadata.
func (s *StudentService) List(ctx context.Context, teacherID string, query dto.ListStudentsQuery) ([]models.Student, *models.Pagination, error) {
	filter := models.StudentFilter{
		TeacherID: teacherID,
		Status:    models.EvaluationStatus(query.Status),
		Term:      query.Term,
		Search:    query.Search,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("status desconhecido: %s", query.Status))
	}
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one student, enforcing ownership.
func (s *StudentService) Get(ctx context.Context, studentID, teacherID string) (*models.Student, error) {
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

// Summary returns per-status roster counts.
func (s *StudentService) Summary(ctx context.Context, teacherID string) ([]models.StatusSummary, error) {
	return s.students.StatusSummary(ctx, teacherID)
}

// UpdateName applies a manual name correction.
func (s *StudentService) UpdateName(ctx context.Context, studentID, teacherID, name string) (*models.Student, error) {
	student, err := s.Get(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}
	if err := s.students.Update(ctx, studentID, repository.UpdateStudentParams{Name: &name}); err != nil {
		return nil, err
	}
	student.Name = name
	return student, nil
}

// Delete removes the student record and everything attached to it.
// Storage object deletions run concurrently and are best effort: the
// database row goes away even when a bucket delete fails.
func (s *StudentService) Delete(ctx context.Context, studentID, teacherID string) error {
	student, err := s.Get(ctx, studentID, teacherID)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	deleteObject := func(bucket interface{ Delete(string) error }, name string) {
		defer wg.Done()
		if err := bucket.Delete(name); err != nil {
			s.logger.Warn("storage delete failed",
				zap.String("student_id", studentID),
				zap.String("path", name),
				zap.Error(err))
		}
	}
	wg.Add(1)
	go deleteObject(s.documents, student.SourceFilePath)
	if student.ProcessedFilePath != nil {
		wg.Add(1)
		go deleteObject(s.reports, *student.ProcessedFilePath)
	}
	wg.Wait()

	if err := s.answers.DeleteByStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.questions.DeleteByStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.logs.DeleteByStudent(ctx, studentID); err != nil {
		return err
	}
	return s.students.Delete(ctx, studentID)
}
