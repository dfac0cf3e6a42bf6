package models

const (
	// DefaultQuizDuration is the quiz time limit in minutes for new drafts.
	DefaultQuizDuration = 20

	// DefaultQuestionPoints is the weight a new question starts with.
	DefaultQuestionPoints = 1

	// QuestionDurationSeconds is fixed for every question; the authoring
	// surface does not expose per-question timing.
	QuestionDurationSeconds = 30
)

// QuizDraft is the aggregate being authored. It lives in memory for the
// lifetime of one editor session and is never partially persisted: a failed
// save leaves it intact for correction.
type QuizDraft struct {
	// ContentID identifies the owning course-content unit. Supplied when the
	// session opens, immutable afterwards.
	ContentID string `json:"content_id"`

	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	CanSkip         bool   `json:"can_skip"`

	// QuizID is server-assigned; empty until phase 1 of persistence succeeds.
	QuizID string `json:"quiz_id,omitempty"`

	// Questions ordering defines both display order and the index used to
	// correlate drafts with server-assigned question ids during persistence.
	Questions []*QuestionDraft `json:"questions"`
}

// QuestionDraft is one question of the draft, tagged by Type.
type QuestionDraft struct {
	// LocalID is a client-only identity, unique within the draft. It is
	// regenerated on hydration and never sent to the server.
	LocalID string `json:"local_id"`

	Text            string          `json:"text"`
	Points          int             `json:"points"`
	DurationSeconds int             `json:"duration_seconds"`
	CanSkip         bool            `json:"can_skip"`
	Type            QuestionType    `json:"question_type"`
	Content         QuestionContent `json:"content"`
}

func NewQuizDraft(contentID string) *QuizDraft {
	return &QuizDraft{
		ContentID:       contentID,
		DurationMinutes: DefaultQuizDuration,
		CanSkip:         true,
		Questions:       []*QuestionDraft{},
	}
}

// QuestionByLocalID returns the question with the given local id, or nil.
func (d *QuizDraft) QuestionByLocalID(localID string) *QuestionDraft {
	for _, q := range d.Questions {
		if q.LocalID == localID {
			return q
		}
	}
	return nil
}
