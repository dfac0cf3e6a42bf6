package draft

import (
	"fmt"
	"sync"

	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/google/uuid"
)

// Store owns the quiz draft of one editing session. It is constructed
// explicitly and handed to the editor; there is no ambient shared draft.
//
// Mutations referencing an unknown question local id are silent no-ops: the
// editing surface is assumed to never produce a dangling reference, but a
// stale request must not crash the session. Removals that would drop a
// payload below its variant's cardinality floor are refused, not errors.
type Store struct {
	mu     sync.Mutex
	draft  *models.QuizDraft
	frozen bool
}

// NewStore creates a store around a blank draft for the given content unit.
func NewStore(contentID string) *Store {
	return &Store{draft: models.NewQuizDraft(contentID)}
}

// Draft returns the owned draft. Callers must treat it as read-only; all
// mutation goes through store operations.
func (s *Store) Draft() *models.QuizDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Freeze disables all mutations while a save is in flight, so the submission
// cannot diverge from what is being persisted.
func (s *Store) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

func (s *Store) Unfreeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
}

func (s *Store) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// ===== QUIZ-LEVEL OPERATIONS =====

func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	s.draft.Title = title
}

func (s *Store) SetDurationMinutes(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen || minutes <= 0 {
		return
	}
	s.draft.DurationMinutes = minutes
}

func (s *Store) SetCanSkip(canSkip bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	s.draft.CanSkip = canSkip
}

// ===== QUESTION LIST OPERATIONS =====

// AddQuestion builds a default question draft for the variant and inserts it
// after insertAfter, or appends when insertAfter is nil. Returns the new
// question's local id.
func (s *Store) AddQuestion(t models.QuestionType, insertAfter *int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return "", ErrStoreFrozen
	}

	content, err := models.DefaultContent(t)
	if err != nil {
		return "", err
	}

	q := &models.QuestionDraft{
		LocalID:         uuid.NewString(),
		Points:          models.DefaultQuestionPoints,
		DurationSeconds: models.QuestionDurationSeconds,
		CanSkip:         true,
		Type:            t,
		Content:         content,
	}

	pos := len(s.draft.Questions)
	if insertAfter != nil {
		if *insertAfter < -1 || *insertAfter >= len(s.draft.Questions) {
			return "", fmt.Errorf("insert position %d out of range", *insertAfter)
		}
		pos = *insertAfter + 1
	}

	s.draft.Questions = append(s.draft.Questions, nil)
	copy(s.draft.Questions[pos+1:], s.draft.Questions[pos:])
	s.draft.Questions[pos] = q

	return q.LocalID, nil
}

func (s *Store) DeleteQuestion(localID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	for i, q := range s.draft.Questions {
		if q.LocalID == localID {
			s.draft.Questions = append(s.draft.Questions[:i], s.draft.Questions[i+1:]...)
			return
		}
	}
}

// MoveQuestion moves the question to the given index, shifting the rest.
// Display order and persistence correlation order move together since both
// are defined by this one slice.
func (s *Store) MoveQuestion(localID string, toIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen || toIndex < 0 || toIndex >= len(s.draft.Questions) {
		return
	}
	from := -1
	for i, q := range s.draft.Questions {
		if q.LocalID == localID {
			from = i
			break
		}
	}
	if from == -1 || from == toIndex {
		return
	}
	q := s.draft.Questions[from]
	s.draft.Questions = append(s.draft.Questions[:from], s.draft.Questions[from+1:]...)
	s.draft.Questions = append(s.draft.Questions, nil)
	copy(s.draft.Questions[toIndex+1:], s.draft.Questions[toIndex:])
	s.draft.Questions[toIndex] = q
}

// ChangeQuestionType replaces the question's content with the new variant's
// default payload. Destructive: payload shapes are incompatible, nothing is
// migrated.
func (s *Store) ChangeQuestionType(localID string, t models.QuestionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return ErrStoreFrozen
	}
	q := s.draft.QuestionByLocalID(localID)
	if q == nil {
		return nil
	}
	if q.Type == t {
		return nil
	}
	content, err := models.DefaultContent(t)
	if err != nil {
		return err
	}
	q.Type = t
	q.Content = content
	return nil
}

// ===== QUESTION FIELD OPERATIONS =====

func (s *Store) SetQuestionText(localID, text string) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		q.Text = text
	})
}

func (s *Store) SetQuestionPoints(localID string, points int) {
	if points <= 0 {
		return
	}
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		q.Points = points
	})
}

func (s *Store) SetQuestionCanSkip(localID string, canSkip bool) {
	s.withQuestion(localID, func(q *models.QuestionDraft) {
		q.CanSkip = canSkip
	})
}

func (s *Store) withQuestion(localID string, fn func(*models.QuestionDraft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	if q := s.draft.QuestionByLocalID(localID); q != nil {
		fn(q)
	}
}
