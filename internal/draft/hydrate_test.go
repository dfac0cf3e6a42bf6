package draft

import (
	"testing"

	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreFromQuiz(t *testing.T) {
	quiz := &client.Quiz{
		QuizID:   "quiz-9",
		Duration: 45,
		CanSkip:  false,
		Questions: []client.QuizQuestion{
			{
				ID:           "srv-1",
				Text:         "Capital of France?",
				QuestionRate: 3,
				Type:         "choice",
				Content: client.QuestionContent{
					Answers:        []string{"Paris", "London"},
					CorrectAnswers: []int{0},
				},
			},
			{
				ID:   "srv-2",
				Text: "Sort the steps",
				Type: "reorder",
				Content: client.QuestionContent{
					Items: []string{"one", "two", "three"},
				},
			},
			{
				ID:   "srv-3",
				Text: "Group them",
				Type: "categorize",
				Content: client.QuestionContent{
					Categories: []client.QuizCategory{{Name: "A", Items: []string{"x"}}},
				},
			},
		},
	}

	s, err := NewStoreFromQuiz("content-7", quiz)
	require.NoError(t, err)

	d := s.Draft()
	assert.Equal(t, "content-7", d.ContentID)
	assert.Equal(t, "quiz-9", d.QuizID)
	assert.Equal(t, 45, d.DurationMinutes)
	assert.False(t, d.CanSkip)
	require.Len(t, d.Questions, 3)

	first := d.Questions[0]
	assert.NotEmpty(t, first.LocalID, "local ids are regenerated on hydration")
	assert.NotEqual(t, "srv-1", first.LocalID)
	assert.Equal(t, 3, first.Points)
	choice := first.Content.(*models.ChoiceContent)
	assert.Equal(t, []string{"Paris", "London"}, choice.Answers)
	assert.Equal(t, []int{0}, choice.CorrectAnswers)

	reorder := d.Questions[1].Content.(*models.ReorderContent)
	assert.Equal(t, []string{"one", "two", "three"}, reorder.Items)
	assert.Equal(t, models.DefaultQuestionPoints, d.Questions[1].Points)

	cat := d.Questions[2].Content.(*models.CategorizeContent)
	require.Len(t, cat.Categories, 1)
	assert.Equal(t, "A", cat.Categories[0].Name)
}

func TestNewStoreFromQuiz_PadsToFloor(t *testing.T) {
	quiz := &client.Quiz{
		QuizID: "quiz-1",
		Questions: []client.QuizQuestion{
			{ID: "srv-1", Text: "sparse", Type: "choice", Content: client.QuestionContent{
				Answers: []string{"only one"},
			}},
		},
	}

	s, err := NewStoreFromQuiz("content-1", quiz)
	require.NoError(t, err)

	c := s.Draft().Questions[0].Content.(*models.ChoiceContent)
	assert.Equal(t, []string{"only one", ""}, c.Answers)
}

func TestNewStoreFromQuiz_UnknownType(t *testing.T) {
	quiz := &client.Quiz{
		QuizID: "quiz-1",
		Questions: []client.QuizQuestion{
			{ID: "srv-1", Text: "?", Type: "essay"},
		},
	}

	_, err := NewStoreFromQuiz("content-1", quiz)
	assert.Error(t, err)
}
