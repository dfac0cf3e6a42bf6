package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/coursekit/quiz-authoring-service/internal/cache"
	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/events"
	"github.com/coursekit/quiz-authoring-service/internal/metrics"
	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/coursekit/quiz-authoring-service/internal/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-memory cache.CacheService for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	payload, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type testEditor struct {
	service   EditorService
	platform  *MockCoursePlatform
	publisher *events.MockEventPublisher
	cache     *memoryCache
}

func newTestEditor(t *testing.T) *testEditor {
	t.Helper()
	platform := new(MockCoursePlatform)
	publisher := &events.MockEventPublisher{}
	memCache := newMemoryCache()

	service := NewEditorService(
		platform,
		newTestPipeline(platform),
		validator.New(),
		publisher,
		memCache,
		time.Minute,
		utils.NewDevelopmentLogger(),
		metrics.New(prometheus.NewRegistry()),
	)

	return &testEditor{
		service:   service,
		platform:  platform,
		publisher: publisher,
		cache:     memCache,
	}
}

func openSession(t *testing.T, e *testEditor) string {
	t.Helper()
	snapshot, err := e.service.OpenSession(context.Background(), &OpenSessionRequest{ContentID: "content-1"})
	require.NoError(t, err)
	require.Equal(t, StateSettings, snapshot.State)
	return snapshot.SessionID
}

func openSessionInQuestions(t *testing.T, e *testEditor) string {
	t.Helper()
	sessionID := openSession(t, e)
	title := "Quiz A"
	_, err := e.service.UpdateSettings(sessionID, &UpdateSettingsRequest{Title: &title})
	require.NoError(t, err)
	_, err = e.service.AdvanceToQuestions(sessionID)
	require.NoError(t, err)
	return sessionID
}

// ===== STATE MACHINE =====

func TestAdvance_GatedOnTitle(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSession(t, e)

	_, err := e.service.AdvanceToQuestions(sessionID)
	assert.ErrorIs(t, err, ErrSettingsIncomplete)

	title := "Quiz A"
	_, err = e.service.UpdateSettings(sessionID, &UpdateSettingsRequest{Title: &title})
	require.NoError(t, err)

	snapshot, err := e.service.AdvanceToQuestions(sessionID)
	require.NoError(t, err)
	assert.Equal(t, StateQuestions, snapshot.State)
}

func TestBack_AlwaysAllowedAndNonDestructive(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSessionInQuestions(t, e)

	_, err := e.service.AddQuestion(sessionID, &AddQuestionRequest{Type: models.Choice})
	require.NoError(t, err)

	snapshot, err := e.service.BackToSettings(sessionID)
	require.NoError(t, err)
	assert.Equal(t, StateSettings, snapshot.State)
	assert.Len(t, snapshot.Draft.Questions, 1)
}

func TestQuestionOps_RequireQuestionsState(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSession(t, e)

	_, err := e.service.AddQuestion(sessionID, &AddQuestionRequest{Type: models.Choice})
	assert.ErrorIs(t, err, ErrNotInQuestions)

	err = e.service.DeleteQuestion(sessionID, "any")
	assert.ErrorIs(t, err, ErrNotInQuestions)
}

func TestSettingsOps_RequireSettingsState(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSessionInQuestions(t, e)

	title := "new"
	_, err := e.service.UpdateSettings(sessionID, &UpdateSettingsRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotInSettings)
}

func TestSave_OnlyFromQuestions(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSession(t, e)

	_, err := e.service.Save(context.Background(), sessionID)
	assert.ErrorIs(t, err, ErrNotInQuestions)
}

func TestUnknownSession(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.service.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// ===== EDITING =====

func TestContentOperations_EndToEnd(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSessionInQuestions(t, e)

	localID, err := e.service.AddQuestion(sessionID, &AddQuestionRequest{Type: models.Choice})
	require.NoError(t, err)

	text := "Capital of France?"
	require.NoError(t, e.service.UpdateQuestion(sessionID, localID, &UpdateQuestionRequest{Text: &text}))

	ops := []*ContentOperation{
		{Action: OpSetAnswer, Index: 0, Text: "Paris"},
		{Action: OpSetAnswer, Index: 1, Text: "London"},
		{Action: OpSetCorrectAnswers, Indexes: []int{0}},
	}
	for _, op := range ops {
		require.NoError(t, e.service.ApplyContentOperation(sessionID, localID, op))
	}

	snapshot, err := e.service.GetSession(sessionID)
	require.NoError(t, err)
	q := snapshot.Draft.QuestionByLocalID(localID)
	content := q.Content.(*models.ChoiceContent)
	assert.Equal(t, []string{"Paris", "London"}, content.Answers)
	assert.Equal(t, []int{0}, content.CorrectAnswers)

	err = e.service.ApplyContentOperation(sessionID, localID, &ContentOperation{Action: "explode"})
	assert.Error(t, err)
}

// ===== SAVE =====

func setupValidChoiceQuiz(t *testing.T, e *testEditor) string {
	t.Helper()
	sessionID := openSessionInQuestions(t, e)

	localID, err := e.service.AddQuestion(sessionID, &AddQuestionRequest{Type: models.Choice})
	require.NoError(t, err)

	text := "Capital of France?"
	require.NoError(t, e.service.UpdateQuestion(sessionID, localID, &UpdateQuestionRequest{Text: &text}))
	require.NoError(t, e.service.ApplyContentOperation(sessionID, localID, &ContentOperation{Action: OpSetAnswer, Index: 0, Text: "Paris"}))
	require.NoError(t, e.service.ApplyContentOperation(sessionID, localID, &ContentOperation{Action: OpSetAnswer, Index: 1, Text: "London"}))
	require.NoError(t, e.service.ApplyContentOperation(sessionID, localID, &ContentOperation{Action: OpSetCorrectAnswers, Indexes: []int{0}}))
	return sessionID
}

func TestSave_Success_ClosesSessionAndPublishes(t *testing.T) {
	e := newTestEditor(t)
	sessionID := setupValidChoiceQuiz(t, e)

	e.platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(&client.CreateQuizResponse{QuizID: "quiz-1"}, nil).Once()
	e.platform.On("CreateQuestions", mock.Anything, mock.Anything).
		Return(&client.CreateQuestionsResponse{QuestionIDs: []string{"srv-1"}}, nil).Once()
	e.platform.On("CreateOptions", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := e.service.Save(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "quiz-1", result.QuizID)

	// Session is gone after a successful save.
	_, err = e.service.GetSession(sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Refresh signal published.
	require.Len(t, e.publisher.Events, 1)
	assert.Equal(t, "content-1", e.publisher.Events[0].ContentID)
	assert.Equal(t, "quiz-1", e.publisher.Events[0].QuizID)
	assert.Equal(t, 1, e.publisher.Events[0].QuestionCount)
}

func TestSave_ValidationFailure_KeepsSessionEditable(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSessionInQuestions(t, e)

	// No questions yet: validation fails before any network call.
	_, err := e.service.Save(context.Background(), sessionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one question required")
	e.platform.AssertNotCalled(t, "CreateQuiz", mock.Anything, mock.Anything)

	// Session still open and editable.
	_, err = e.service.AddQuestion(sessionID, &AddQuestionRequest{Type: models.FillGap})
	assert.NoError(t, err)
}

func TestSave_PipelineFailure_DraftIntactForRetry(t *testing.T) {
	e := newTestEditor(t)
	sessionID := setupValidChoiceQuiz(t, e)

	e.platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	_, err := e.service.Save(context.Background(), sessionID)
	require.Error(t, err)
	assert.Empty(t, e.publisher.Events)

	snapshot, err := e.service.GetSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, StateQuestions, snapshot.State)
	assert.False(t, snapshot.Saving)
	require.Len(t, snapshot.Draft.Questions, 1)
	assert.Empty(t, snapshot.Draft.QuizID)

	// Retry succeeds against a recovered platform.
	e.platform.On("CreateQuiz", mock.Anything, mock.Anything).
		Return(&client.CreateQuizResponse{QuizID: "quiz-2"}, nil).Once()
	e.platform.On("CreateQuestions", mock.Anything, mock.Anything).
		Return(&client.CreateQuestionsResponse{QuestionIDs: []string{"srv-1"}}, nil).Once()
	e.platform.On("CreateOptions", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := e.service.Save(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "quiz-2", result.QuizID)
}

// ===== HYDRATION =====

func TestOpenSession_HydratesAndCaches(t *testing.T) {
	e := newTestEditor(t)

	quiz := &client.Quiz{
		QuizID:   "quiz-1",
		Duration: 30,
		CanSkip:  true,
		Questions: []client.QuizQuestion{
			{ID: "srv-1", Text: "q", Type: "fill_gap", Content: client.QuestionContent{Answers: []string{"x"}}},
		},
	}
	e.platform.On("GetQuiz", mock.Anything, "quiz-1").Return(quiz, nil).Once()

	snapshot, err := e.service.OpenSession(context.Background(), &OpenSessionRequest{
		ContentID: "content-1",
		QuizID:    "quiz-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "quiz-1", snapshot.Draft.QuizID)
	assert.Equal(t, 30, snapshot.Draft.DurationMinutes)
	require.Len(t, snapshot.Draft.Questions, 1)

	// Second open is served from the cache; GetQuiz stays at one call.
	_, err = e.service.OpenSession(context.Background(), &OpenSessionRequest{
		ContentID: "content-1",
		QuizID:    "quiz-1",
	})
	require.NoError(t, err)
	e.platform.AssertNumberOfCalls(t, "GetQuiz", 1)
}

func TestCloseSession_DiscardsDraft(t *testing.T) {
	e := newTestEditor(t)
	sessionID := openSession(t, e)

	require.NoError(t, e.service.CloseSession(sessionID))
	_, err := e.service.GetSession(sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// ===== EXPORT =====

func TestExportDraft_ProducesWorkbook(t *testing.T) {
	e := newTestEditor(t)
	sessionID := setupValidChoiceQuiz(t, e)

	data, err := e.service.ExportDraft(sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
