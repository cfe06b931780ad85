package models

// EvaluationStatus tracks where a student sits in the report pipeline.
// The persisted status field is the single source of truth; every step
// advances it through ValidTransition rather than writing free strings.
type EvaluationStatus string

const (
	StatusPending            EvaluationStatus = "pending"
	StatusExtractingData     EvaluationStatus = "extracting_data"
	StatusAwaitingQuestions  EvaluationStatus = "awaiting_questions"
	StatusAwaitingAnswers    EvaluationStatus = "awaiting_answers"
	StatusProcessingAnswer   EvaluationStatus = "processing_answer"
	StatusGeneratingDocument EvaluationStatus = "generating_document"
	StatusCompleted          EvaluationStatus = "completed"
	StatusError              EvaluationStatus = "error"
)

var forwardEdges = map[EvaluationStatus]EvaluationStatus{
	StatusPending:            StatusExtractingData,
	StatusExtractingData:     StatusAwaitingQuestions,
	StatusAwaitingQuestions:  StatusAwaitingAnswers,
	StatusAwaitingAnswers:    StatusProcessingAnswer,
	StatusProcessingAnswer:   StatusGeneratingDocument,
	StatusGeneratingDocument: StatusCompleted,
}

// IsTerminal reports whether the status admits no forward transition.
func (s EvaluationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Valid reports whether the value is a known status.
func (s EvaluationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusExtractingData, StatusAwaitingQuestions,
		StatusAwaitingAnswers, StatusProcessingAnswer, StatusGeneratingDocument,
		StatusCompleted, StatusError:
		return true
	}
	return false
}

// ValidTransition reports whether moving from one status to another is
// allowed. Forward moves follow the pipeline edges, error is reachable
// from any non-terminal state, and reset (anything but pending back to
// pending) is always permitted.
func ValidTransition(from, to EvaluationStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if to == StatusPending {
		return from != StatusPending
	}
	if to == StatusError {
		return !from.IsTerminal()
	}
	// Manual continue re-enters awaiting_answers from stalled
	// intermediate states, including awaiting_answers itself when the
	// teacher simply resumes a half-answered evaluation.
	if to == StatusAwaitingAnswers {
		switch from {
		case StatusAwaitingQuestions, StatusExtractingData, StatusAwaitingAnswers, StatusProcessingAnswer, StatusGeneratingDocument:
			return true
		}
	}
	return forwardEdges[from] == to
}
