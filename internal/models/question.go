package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType distinguishes free-text from multiple-choice questions.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Catch-all options appended to every multiple-choice question.
const (
	OptionAllOfTheAbove  = "Todas as alternativas acima"
	OptionNoneOfTheAbove = "Nenhuma das alternativas acima"
)

// Question belongs to exactly one student evaluation. Generated
// questions are ephemeral: restarting an evaluation deletes them.
type Question struct {
	ID        string       `db:"id" json:"id"`
	StudentID string       `db:"student_id" json:"student_id"`
	Text      string       `db:"text" json:"text"`
	Type      QuestionType `db:"type" json:"type"`
	Options   OptionList   `db:"options" json:"options,omitempty"`
	FieldKey  string       `db:"field_key" json:"field_key"`
	Position  int          `db:"position" json:"position"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// FixedQuestion is a teacher-owned reusable question template.
type FixedQuestion struct {
	ID        string       `db:"id" json:"id"`
	TeacherID string       `db:"teacher_id" json:"teacher_id"`
	Text      string       `db:"text" json:"text"`
	Type      QuestionType `db:"type" json:"type"`
	Options   OptionList   `db:"options" json:"options,omitempty"`
	FieldKey  string       `db:"field_key" json:"field_key"`
	Position  int          `db:"position" json:"position"`
	Active    bool         `db:"active" json:"active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// OptionList stores the ordered option texts as JSONB.
type OptionList []string

// Value marshals options to JSON for persistence.
func (o OptionList) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	data, err := json.Marshal([]string(o))
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON array into the option list.
func (o *OptionList) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for OptionList", value)
	}
	if len(data) == 0 {
		*o = nil
		return nil
	}
	if err := json.Unmarshal(data, (*[]string)(o)); err != nil {
		return fmt.Errorf("unmarshal options: %w", err)
	}
	return nil
}
