package draft

import (
	"fmt"

	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/google/uuid"
)

// NewStoreFromQuiz hydrates a store from a previously persisted quiz so it
// can be edited again. Server question ids are not kept: local ids are
// regenerated, and a save writes the quiz back through the full pipeline.
func NewStoreFromQuiz(contentID string, quiz *client.Quiz) (*Store, error) {
	d := models.NewQuizDraft(contentID)
	d.QuizID = quiz.QuizID
	d.CanSkip = quiz.CanSkip
	if quiz.Duration > 0 {
		d.DurationMinutes = quiz.Duration
	}

	for i, q := range quiz.Questions {
		t, ok := models.QuestionTypeFromAPI(q.Type)
		if !ok {
			return nil, fmt.Errorf("question %d: unknown question type %q", i, q.Type)
		}

		content, err := hydrateContent(t, q.Content)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}

		points := q.QuestionRate
		if points <= 0 {
			points = models.DefaultQuestionPoints
		}

		d.Questions = append(d.Questions, &models.QuestionDraft{
			LocalID:         uuid.NewString(),
			Text:            q.Text,
			Points:          points,
			DurationSeconds: models.QuestionDurationSeconds,
			CanSkip:         true,
			Type:            t,
			Content:         content,
		})
	}

	return &Store{draft: d}, nil
}

func hydrateContent(t models.QuestionType, src client.QuestionContent) (models.QuestionContent, error) {
	switch t {
	case models.Choice:
		return &models.ChoiceContent{
			Answers:        padAnswers(src.Answers, t.MinEntries()),
			CorrectAnswers: append([]int{}, src.CorrectAnswers...),
		}, nil
	case models.Multiple:
		return &models.MultipleContent{
			Answers:        padAnswers(src.Answers, t.MinEntries()),
			CorrectAnswers: append([]int{}, src.CorrectAnswers...),
		}, nil
	case models.FillGap:
		return &models.FillGapContent{Answers: padAnswers(src.Answers, t.MinEntries())}, nil
	case models.Reorder:
		return &models.ReorderContent{Items: padAnswers(src.Items, t.MinEntries())}, nil
	case models.Categorize:
		content := &models.CategorizeContent{}
		for _, c := range src.Categories {
			content.Categories = append(content.Categories, models.Category{
				Name:  c.Name,
				Items: padAnswers(c.Items, 1),
			})
		}
		if len(content.Categories) == 0 {
			content.Categories = []models.Category{{Name: "", Items: []string{""}}}
		}
		return content, nil
	default:
		return nil, fmt.Errorf("unsupported question type: %s", t)
	}
}

// padAnswers copies the source rows and tops them up to the editing floor so
// sub-operations keep their invariants even on sparse server data.
func padAnswers(src []string, floor int) []string {
	out := append([]string{}, src...)
	for len(out) < floor {
		out = append(out, "")
	}
	return out
}
