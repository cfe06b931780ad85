package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransitionForwardEdges(t *testing.T) {
	ordered := []EvaluationStatus{
		StatusPending,
		StatusExtractingData,
		StatusAwaitingQuestions,
		StatusAwaitingAnswers,
		StatusProcessingAnswer,
		StatusGeneratingDocument,
		StatusCompleted,
	}

	for i := 0; i < len(ordered)-1; i++ {
		assert.True(t, ValidTransition(ordered[i], ordered[i+1]),
			"%s -> %s should be allowed", ordered[i], ordered[i+1])
	}

	// No skipping states forward.
	assert.False(t, ValidTransition(StatusPending, StatusAwaitingQuestions))
	assert.False(t, ValidTransition(StatusExtractingData, StatusProcessingAnswer))
	assert.False(t, ValidTransition(StatusAwaitingAnswers, StatusGeneratingDocument))
	assert.False(t, ValidTransition(StatusAwaitingAnswers, StatusCompleted))
}

func TestValidTransitionErrorReachability(t *testing.T) {
	for _, from := range []EvaluationStatus{
		StatusPending, StatusExtractingData, StatusAwaitingQuestions,
		StatusAwaitingAnswers, StatusProcessingAnswer, StatusGeneratingDocument,
	} {
		assert.True(t, ValidTransition(from, StatusError), "error must be reachable from %s", from)
	}

	assert.False(t, ValidTransition(StatusCompleted, StatusError))
	assert.False(t, ValidTransition(StatusError, StatusError))
}

func TestValidTransitionReset(t *testing.T) {
	for _, from := range []EvaluationStatus{
		StatusExtractingData, StatusAwaitingQuestions, StatusAwaitingAnswers,
		StatusProcessingAnswer, StatusGeneratingDocument, StatusCompleted, StatusError,
	} {
		assert.True(t, ValidTransition(from, StatusPending), "reset from %s must be allowed", from)
	}
	assert.False(t, ValidTransition(StatusPending, StatusPending))
}

func TestValidTransitionContinue(t *testing.T) {
	// Stalled intermediate states re-enter awaiting_answers when the
	// question set already exists.
	assert.True(t, ValidTransition(StatusExtractingData, StatusAwaitingAnswers))
	assert.True(t, ValidTransition(StatusProcessingAnswer, StatusAwaitingAnswers))
	assert.True(t, ValidTransition(StatusGeneratingDocument, StatusAwaitingAnswers))
	assert.True(t, ValidTransition(StatusAwaitingAnswers, StatusAwaitingAnswers),
		"resuming a half-answered evaluation must not be rejected")
	assert.False(t, ValidTransition(StatusCompleted, StatusAwaitingAnswers))
	assert.False(t, ValidTransition(StatusPending, StatusAwaitingAnswers))
}

func TestValidTransitionRejectsUnknownStatus(t *testing.T) {
	assert.False(t, ValidTransition("bogus", StatusPending))
	assert.False(t, ValidTransition(StatusPending, "bogus"))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
	assert.False(t, StatusAwaitingAnswers.IsTerminal())
}
