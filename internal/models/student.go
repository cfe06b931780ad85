package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Student is one learner's evaluation record for a single term. The
// record is created on upload and mutated by every pipeline step.
type Student struct {
	ID                 string           `db:"id" json:"id"`
	TeacherID          string           `db:"teacher_id" json:"teacher_id"`
	Name               string           `db:"name" json:"name"`
	Term               string           `db:"term" json:"term"`
	Grade              *string          `db:"grade" json:"grade,omitempty"`
	ClassGroup         *string          `db:"class_group" json:"class_group,omitempty"`
	SpecialNeeds       bool             `db:"special_needs" json:"special_needs"`
	SourceFilePath     string           `db:"source_file_path" json:"source_file_path"`
	ProcessedFilePath  *string          `db:"processed_file_path" json:"processed_file_path,omitempty"`
	Status             EvaluationStatus `db:"status" json:"status"`
	ExtractedEvidence  *string          `db:"extracted_evidence" json:"extracted_evidence,omitempty"`
	PreviousNarrative  *string          `db:"previous_narrative" json:"previous_narrative,omitempty"`
	GeneratedNarrative *string          `db:"generated_narrative" json:"generated_narrative,omitempty"`
	QuestionPayload    *PromptPayload   `db:"question_payload" json:"question_payload,omitempty"`
	NarrativePayload   *PromptPayload   `db:"narrative_payload" json:"narrative_payload,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	TeacherID string
	Search    string
	Status    EvaluationStatus
	Term      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StatusSummary aggregates per-status counts for a teacher's roster.
type StatusSummary struct {
	Status EvaluationStatus `db:"status" json:"status"`
	Count  int              `db:"count" json:"count"`
}

// PromptPayload snapshots one model invocation for audit: what was
// asked and what came back, persisted as JSONB next to the student.
type PromptPayload struct {
	Source            string    `json:"source,omitempty"`
	Prompt            string    `json:"prompt,omitempty"`
	Response          string    `json:"response,omitempty"`
	QuestionsInserted int       `json:"questions_inserted,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// Value marshals the payload to JSON for persistence.
func (p PromptPayload) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal prompt payload: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the struct.
func (p *PromptPayload) Scan(value interface{}) error {
	if value == nil {
		*p = PromptPayload{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for PromptPayload", value)
	}
	if len(data) == 0 {
		*p = PromptPayload{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal prompt payload: %w", err)
	}
	return nil
}
