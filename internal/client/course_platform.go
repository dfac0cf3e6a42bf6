package client

import "context"

// CoursePlatform is the boundary to the upstream course platform. The three
// write operations form the persistence pipeline's phases; GetQuiz backs
// hydration when an existing quiz is opened for editing.
//
// CreateQuestions returns server-assigned ids that are order-correlated with
// the submitted slice. The platform gives no explicit keys back, so callers
// must verify the lengths match before pairing them up.
type CoursePlatform interface {
	CreateQuiz(ctx context.Context, req *CreateQuizRequest) (*CreateQuizResponse, error)
	CreateQuestions(ctx context.Context, req *CreateQuestionsRequest) (*CreateQuestionsResponse, error)
	CreateOptions(ctx context.Context, req *CreateOptionsRequest) error
	GetQuiz(ctx context.Context, quizID string) (*Quiz, error)
}

// ===== WRITE CONTRACTS =====

type CreateQuizRequest struct {
	ContentID       string `json:"contentId"`
	DurationMinutes int    `json:"durationMinutes"`
	CanSkip         bool   `json:"canSkip"`
}

type CreateQuizResponse struct {
	QuizID string `json:"quizId"`
}

type QuestionRecord struct {
	QuizID   string `json:"quizId"`
	Text     string `json:"text"`
	Title    string `json:"title"`
	Points   int    `json:"points"`
	Duration string `json:"duration"` // HH:MM:SS
	CanSkip  bool   `json:"canSkip"`
	Type     string `json:"questionType"`
	// Categories carries the variant display title, single-element by
	// contract with the platform.
	Categories []string `json:"categories"`
}

type CreateQuestionsRequest struct {
	Questions []QuestionRecord `json:"questions"`
}

type CreateQuestionsResponse struct {
	QuestionIDs []string `json:"questionIds"`
}

type OptionRecord struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
	Order      int    `json:"order"`
	GapText    string `json:"gapText"`
	Category   string `json:"category"`
}

type CreateOptionsRequest struct {
	Options []OptionRecord `json:"options"`
}

// ===== READ CONTRACT (hydration) =====

type Quiz struct {
	QuizID    string         `json:"quizId"`
	Duration  int            `json:"duration"`
	CanSkip   bool           `json:"canSkip"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	QuestionRate int             `json:"questionRate"`
	Type         string          `json:"questionType"`
	Content      QuestionContent `json:"content"`
}

type QuestionContent struct {
	Answers        []string       `json:"answers,omitempty"`
	Items          []string       `json:"items,omitempty"`
	Categories     []QuizCategory `json:"categories,omitempty"`
	CorrectAnswers []int          `json:"correctAnswers,omitempty"`
}

type QuizCategory struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}
