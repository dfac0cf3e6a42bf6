package services

import (
	"errors"
	"fmt"

	apperrors "github.com/coursekit/quiz-authoring-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Session errors
	ErrSessionNotFound = errors.New("editor session not found")
	ErrSessionSaving   = errors.New("a save is already in progress for this session")
	ErrSessionClosed   = errors.New("editor session is closed")

	// State machine errors
	ErrNotInSettings      = errors.New("operation only allowed while editing quiz settings")
	ErrNotInQuestions     = errors.New("operation only allowed while editing questions")
	ErrSettingsIncomplete = errors.New("content reference and title are required before editing questions")

	// Pipeline errors
	ErrQuizIDMissing       = errors.New("quiz create response did not include a quiz id")
	ErrQuestionIDsMismatch = errors.New("server returned a different number of question ids than submitted")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PipelineError summarizes a failed save: which phase broke and why. The
// draft is left untouched so the author can retry.
type PipelineError struct {
	Phase string
	Err   error
}

func (pe *PipelineError) Error() string {
	return fmt.Sprintf("saving quiz failed at %s: %v", pe.Phase, pe.Err)
}

func (pe *PipelineError) Unwrap() error {
	return pe.Err
}

func newPipelineError(phase string, err error) *PipelineError {
	return &PipelineError{Phase: phase, Err: err}
}
