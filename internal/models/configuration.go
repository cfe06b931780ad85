package models

import "time"

// QuestionMode selects where evaluation questions come from.
type QuestionMode string

const (
	QuestionModeFixed   QuestionMode = "fixed"
	QuestionModeDynamic QuestionMode = "dynamic"
)

// Valid reports whether the value is a known mode.
func (m QuestionMode) Valid() bool {
	return m == QuestionModeFixed || m == QuestionModeDynamic
}

// Configuration holds one teacher's report metadata. Read-only during
// pipeline execution; upserted from the configuration form.
type Configuration struct {
	ID                   string       `db:"id" json:"id"`
	TeacherID            string       `db:"teacher_id" json:"teacher_id"`
	SchoolYear           *string      `db:"school_year" json:"school_year,omitempty"`
	RegionalCoordination *string      `db:"regional_coordination" json:"regional_coordination,omitempty"`
	SchoolUnit           *string      `db:"school_unit" json:"school_unit,omitempty"`
	Block                *string      `db:"block" json:"block,omitempty"`
	Grade                *string      `db:"grade" json:"grade,omitempty"`
	ClassGroup           *string      `db:"class_group" json:"class_group,omitempty"`
	Shift                *string      `db:"shift" json:"shift,omitempty"`
	Term                 string       `db:"term" json:"term"`
	TeacherName          *string      `db:"teacher_name" json:"teacher_name,omitempty"`
	Registration         string       `db:"registration" json:"registration"`
	QuestionMode         QuestionMode `db:"question_mode" json:"question_mode"`
	TemplateID           *string      `db:"template_id" json:"template_id,omitempty"`
	UpdatedAt            time.Time    `db:"updated_at" json:"updated_at"`
}

// Template references a teacher-uploaded report layout file.
type Template struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Name      string    `db:"name" json:"name"`
	Term      string    `db:"term" json:"term"`
	FilePath  string    `db:"file_path" json:"file_path"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
