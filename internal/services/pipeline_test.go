package services

import (
	"context"
	"testing"
	"time"

	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/metrics"
	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCoursePlatform is a mock implementation of client.CoursePlatform
type MockCoursePlatform struct {
	mock.Mock
}

func (m *MockCoursePlatform) CreateQuiz(ctx context.Context, req *client.CreateQuizRequest) (*client.CreateQuizResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CreateQuizResponse), args.Error(1)
}

func (m *MockCoursePlatform) CreateQuestions(ctx context.Context, req *client.CreateQuestionsRequest) (*client.CreateQuestionsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.CreateQuestionsResponse), args.Error(1)
}

func (m *MockCoursePlatform) CreateOptions(ctx context.Context, req *client.CreateOptionsRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCoursePlatform) GetQuiz(ctx context.Context, quizID string) (*client.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Quiz), args.Error(1)
}

func newTestPipeline(platform client.CoursePlatform) *PersistencePipeline {
	return NewPersistencePipeline(
		platform,
		utils.NewDevelopmentLogger(),
		metrics.New(prometheus.NewRegistry()),
		time.Second,
	)
}

func choiceDraft() *models.QuizDraft {
	d := models.NewQuizDraft("content-1")
	d.Title = "Quiz A"
	d.Questions = []*models.QuestionDraft{
		{
			LocalID:         "q1",
			Text:            "Capital of France?",
			Points:          1,
			DurationSeconds: models.QuestionDurationSeconds,
			CanSkip:         true,
			Type:            models.Choice,
			Content: &models.ChoiceContent{
				Answers:        []string{"Paris", "London"},
				CorrectAnswers: []int{0},
			},
		},
	}
	return d
}

func TestPipeline_Save_EndToEnd(t *testing.T) {
	platform := new(MockCoursePlatform)

	platform.On("CreateQuiz", mock.Anything, &client.CreateQuizRequest{
		ContentID:       "content-1",
		DurationMinutes: models.DefaultQuizDuration,
		CanSkip:         true,
	}).Return(&client.CreateQuizResponse{QuizID: "quiz-1"}, nil).Once()

	platform.On("CreateQuestions", mock.Anything, mock.MatchedBy(func(req *client.CreateQuestionsRequest) bool {
		if len(req.Questions) != 1 {
			return false
		}
		q := req.Questions[0]
		return q.QuizID == "quiz-1" &&
			q.Text == "Capital of France?" &&
			q.Title == q.Text &&
			q.Duration == "00:00:30" &&
			q.Type == "choice" &&
			len(q.Categories) == 1 && q.Categories[0] == "Single choice"
	})).Return(&client.CreateQuestionsResponse{QuestionIDs: []string{"srv-1"}}, nil).Once()

	platform.On("CreateOptions", mock.Anything, mock.MatchedBy(func(req *client.CreateOptionsRequest) bool {
		if len(req.Options) != 2 {
			return false
		}
		return req.Options[0].QuestionID == "srv-1" &&
			req.Options[0].Text == "Paris" && req.Options[0].IsCorrect &&
			req.Options[1].Text == "London" && !req.Options[1].IsCorrect
	})).Return(nil).Once()

	quizID, err := newTestPipeline(platform).Save(context.Background(), choiceDraft())
	require.NoError(t, err)
	assert.Equal(t, "quiz-1", quizID)
	platform.AssertExpectations(t)
}

func TestPipeline_Save_MissingQuizIDAborts(t *testing.T) {
	platform := new(MockCoursePlatform)
	platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(&client.CreateQuizResponse{}, nil).Once()

	_, err := newTestPipeline(platform).Save(context.Background(), choiceDraft())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuizIDMissing)

	var pipelineErr *PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.Equal(t, PhaseCreateQuiz, pipelineErr.Phase)

	platform.AssertNotCalled(t, "CreateQuestions", mock.Anything, mock.Anything)
	platform.AssertNotCalled(t, "CreateOptions", mock.Anything, mock.Anything)
}

func TestPipeline_Save_QuestionIDCountMismatchIsFatal(t *testing.T) {
	platform := new(MockCoursePlatform)
	platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(&client.CreateQuizResponse{QuizID: "quiz-1"}, nil).Once()
	platform.On("CreateQuestions", mock.Anything, mock.Anything).
		Return(&client.CreateQuestionsResponse{QuestionIDs: []string{}}, nil).Once()

	_, err := newTestPipeline(platform).Save(context.Background(), choiceDraft())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuestionIDsMismatch)

	platform.AssertNotCalled(t, "CreateOptions", mock.Anything, mock.Anything)
}

func TestPipeline_Save_EmptyOptionBatchSkipped(t *testing.T) {
	d := choiceDraft()
	d.Questions = append(d.Questions, &models.QuestionDraft{
		LocalID:         "q2",
		Text:            "all blank",
		Points:          1,
		DurationSeconds: models.QuestionDurationSeconds,
		Type:            models.FillGap,
		Content:         &models.FillGapContent{Answers: []string{"", " "}},
	})

	platform := new(MockCoursePlatform)
	platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(&client.CreateQuizResponse{QuizID: "quiz-1"}, nil).Once()
	platform.On("CreateQuestions", mock.Anything, mock.Anything).
		Return(&client.CreateQuestionsResponse{QuestionIDs: []string{"srv-1", "srv-2"}}, nil).Once()
	// Only the Choice question produces a batch; no empty batch for srv-2.
	platform.On("CreateOptions", mock.Anything, mock.MatchedBy(func(req *client.CreateOptionsRequest) bool {
		return len(req.Options) == 2 && req.Options[0].QuestionID == "srv-1"
	})).Return(nil).Once()

	_, err := newTestPipeline(platform).Save(context.Background(), d)
	require.NoError(t, err)
	platform.AssertExpectations(t)
	platform.AssertNumberOfCalls(t, "CreateOptions", 1)
}

func TestPipeline_Save_OptionPhaseFailure(t *testing.T) {
	platform := new(MockCoursePlatform)
	platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(&client.CreateQuizResponse{QuizID: "quiz-1"}, nil).Once()
	platform.On("CreateQuestions", mock.Anything, mock.Anything).
		Return(&client.CreateQuestionsResponse{QuestionIDs: []string{"srv-1"}}, nil).Once()
	platform.On("CreateOptions", mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	_, err := newTestPipeline(platform).Save(context.Background(), choiceDraft())
	require.Error(t, err)

	var pipelineErr *PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.Equal(t, PhaseCreateOptions, pipelineErr.Phase)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:30", formatDuration(30))
	assert.Equal(t, "00:02:05", formatDuration(125))
	assert.Equal(t, "01:00:00", formatDuration(3600))
}
