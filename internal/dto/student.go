// Package dto defines the request and response shapes exchanged with handlers.
package dto

import (
	"time"

	"github.com/ravgen/rav-api/internal/models"
)

// ListStudentsQuery captures roster listing parameters.
type ListStudentsQuery struct {
	Status    string `form:"status"`
	Term      string `form:"term"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// UpdateStudentRequest carries manual corrections to a student record.
type UpdateStudentRequest struct {
	Name *string `json:"name" binding:"omitempty,min=3"`
}

// UploadFailure reports one rejected file from a batch upload.
type UploadFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// UploadResult summarizes a batch document upload.
type UploadResult struct {
	Created  []models.Student `json:"created"`
	Failures []UploadFailure  `json:"failures"`
}

// StudentResponse is the roster view of a student record.
type StudentResponse struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Term               string                  `json:"term"`
	Grade              *string                 `json:"grade,omitempty"`
	ClassGroup         *string                 `json:"class_group,omitempty"`
	SpecialNeeds       bool                    `json:"special_needs"`
	Status             models.EvaluationStatus `json:"status"`
	GeneratedNarrative *string                 `json:"generated_narrative,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// NewStudentResponse maps a model onto its API shape.
func NewStudentResponse(s *models.Student) StudentResponse {
	return StudentResponse{
		ID:                 s.ID,
		Name:               s.Name,
		Term:               s.Term,
		Grade:              s.Grade,
		ClassGroup:         s.ClassGroup,
		SpecialNeeds:       s.SpecialNeeds,
		Status:             s.Status,
		GeneratedNarrative: s.GeneratedNarrative,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
