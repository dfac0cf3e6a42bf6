package validator

import (
	"fmt"
	"strings"

	"github.com/coursekit/quiz-authoring-service/internal/models"
)

// DraftError is the single message surfaced to the author when a draft fails
// its pre-save check.
type DraftError struct {
	Reason string
}

func (e *DraftError) Error() string {
	return e.Reason
}

func newDraftError(format string, args ...interface{}) *DraftError {
	return &DraftError{Reason: fmt.Sprintf(format, args...)}
}

// DraftValidator runs the pre-save rule check over a whole quiz draft.
type DraftValidator struct{}

func NewDraftValidator() *DraftValidator {
	return &DraftValidator{}
}

// Validate checks the draft and stops at the first violated rule, so the
// author sees one actionable message rather than a wall of errors. Rule
// order: content reference, title, question count, then each question in
// display order.
//
// Reorder and Categorize structural minimums are kept by the editing
// operations at creation time and are not rechecked here.
func (v *DraftValidator) Validate(d *models.QuizDraft) error {
	if d.ContentID == "" {
		return newDraftError("missing content reference")
	}
	if strings.TrimSpace(d.Title) == "" {
		return newDraftError("quiz title is required")
	}
	if len(d.Questions) == 0 {
		return newDraftError("at least one question required")
	}

	for i, q := range d.Questions {
		if err := v.validateQuestion(i, q); err != nil {
			return err
		}
	}

	return nil
}

func (v *DraftValidator) validateQuestion(index int, q *models.QuestionDraft) error {
	if strings.TrimSpace(q.Text) == "" {
		return newDraftError("question %d: text is required", index+1)
	}

	switch c := q.Content.(type) {
	case *models.ChoiceContent:
		if countNonBlank(c.Answers) < 2 {
			return newDraftError("question %d: at least 2 answers required", index+1)
		}
		if len(c.CorrectAnswers) == 0 {
			return newDraftError("question %d: mark at least one answer as correct", index+1)
		}
	case *models.MultipleContent:
		if countNonBlank(c.Answers) < 2 {
			return newDraftError("question %d: at least 2 answers required", index+1)
		}
		if len(c.CorrectAnswers) == 0 {
			return newDraftError("question %d: mark at least one answer as correct", index+1)
		}
	case *models.FillGapContent:
		if countNonBlank(c.Answers) < 1 {
			return newDraftError("question %d: at least one answer required", index+1)
		}
	}

	return nil
}

// countNonBlank counts entries that survive flattening: blank rows are
// filtered out before persistence, so only non-blank rows satisfy minimums.
func countNonBlank(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
