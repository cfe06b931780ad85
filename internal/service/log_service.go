package service

import (
	"context"

	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

// LogService exposes the processing audit trail to the API.
type LogService struct {
	logs     logStore
	students studentStore
}

func NewLogService(logs logStore, students studentStore) *LogService {
	return &LogService{logs: logs, students: students}
}

// List returns a student's processing entries, newest first.
func (s *LogService) List(ctx context.Context, studentID, teacherID string, limit int) ([]models.LogEntry, error) {
	if err := s.authorize(ctx, studentID, teacherID); err != nil {
		return nil, err
	}
	return s.logs.ListByStudent(ctx, studentID, limit)
}

// Clear removes a student's processing history.
func (s *LogService) Clear(ctx context.Context, studentID, teacherID string) error {
	if err := s.authorize(ctx, studentID, teacherID); err != nil {
		return err
	}
	return s.logs.DeleteByStudent(ctx, studentID)
}

func (s *LogService) authorize(ctx context.Context, studentID, teacherID string) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.TeacherID != teacherID {
		return appErrors.ErrForbidden
	}
	return nil
}
