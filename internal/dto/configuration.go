package dto

import "github.com/ravgen/rav-api/internal/models"

// UpsertConfigurationRequest replaces the teacher's report settings.
type UpsertConfigurationRequest struct {
	SchoolYear           *string             `json:"school_year"`
	RegionalCoordination *string             `json:"regional_coordination"`
	SchoolUnit           *string             `json:"school_unit"`
	Block                *string             `json:"block"`
	Grade                *string             `json:"grade"`
	ClassGroup           *string             `json:"class_group"`
	Shift                *string             `json:"shift"`
	Term                 string              `json:"term" binding:"required"`
	TeacherName          *string             `json:"teacher_name"`
	Registration         string              `json:"registration" binding:"required"`
	QuestionMode         models.QuestionMode `json:"question_mode" binding:"required,oneof=fixed dynamic"`
	TemplateID           *string             `json:"template_id" binding:"omitempty,uuid"`
}

// CreateFixedQuestionRequest adds a question to the teacher's bank.
type CreateFixedQuestionRequest struct {
	Text     string              `json:"text" binding:"required,min=5"`
	Type     models.QuestionType `json:"type" binding:"required,oneof=text multiple_choice"`
	Options  []string            `json:"options"`
	FieldKey string              `json:"field_key" binding:"required"`
	Position int                 `json:"position" binding:"min=0"`
}

// UpdateFixedQuestionRequest edits a bank question.
type UpdateFixedQuestionRequest struct {
	Text     *string              `json:"text" binding:"omitempty,min=5"`
	Type     *models.QuestionType `json:"type" binding:"omitempty,oneof=text multiple_choice"`
	Options  []string             `json:"options"`
	FieldKey *string              `json:"field_key"`
	Position *int                 `json:"position"`
	Active   *bool                `json:"active"`
}
