package models

import "time"

// AnswerNotApplicable is the accepted sentinel for questions the
// teacher marks as not applicable; it counts as a non-empty response.
const AnswerNotApplicable = "Não se aplica"

// Answer is one teacher response to one question of a student's
// current evaluation.
type Answer struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	QuestionID string    `db:"question_id" json:"question_id"`
	Response   string    `db:"response" json:"response"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AnsweredQuestion joins an answer with its originating question text,
// ordered by question position; the shape the narrative prompt needs.
type AnsweredQuestion struct {
	QuestionID   string  `db:"question_id" json:"question_id"`
	QuestionText string  `db:"question_text" json:"question_text"`
	Response     string  `db:"response" json:"response"`
	Note         *string `db:"note" json:"note,omitempty"`
	Position     int     `db:"position" json:"position"`
}
