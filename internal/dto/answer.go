package dto

// AutosaveAnswerRequest is one best-effort draft save for a single question.
type AutosaveAnswerRequest struct {
	QuestionID string  `json:"question_id" binding:"required,uuid"`
	Response   string  `json:"response"`
	Note       *string `json:"note"`
}

// SubmitAnswer is one finalized answer within a submission.
type SubmitAnswer struct {
	QuestionID string  `json:"question_id" binding:"required,uuid"`
	Response   string  `json:"response" binding:"required"`
	Note       *string `json:"note"`
}

// SubmitAnswersRequest finalizes the answer set and starts narrative generation.
type SubmitAnswersRequest struct {
	Answers []SubmitAnswer `json:"answers" binding:"required,min=1,dive"`
}
