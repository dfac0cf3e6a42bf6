package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coursekit/quiz-authoring-service/internal/cache"
	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/draft"
	"github.com/coursekit/quiz-authoring-service/internal/events"
	"github.com/coursekit/quiz-authoring-service/internal/metrics"
	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/coursekit/quiz-authoring-service/internal/validator"
	"github.com/google/uuid"
)

// EditorState is the authoring workflow position of a session. The editor
// opens on quiz settings, moves forward to the question list, and only saves
// from there.
type EditorState string

const (
	StateSettings  EditorState = "settings"
	StateQuestions EditorState = "questions"
	StateClosed    EditorState = "closed"
)

// EditorService hosts quiz authoring sessions: one session owns one draft
// store for its whole lifetime. A successful save closes the session; a
// failed save keeps it open with the draft intact.
type EditorService interface {
	OpenSession(ctx context.Context, req *OpenSessionRequest) (*SessionSnapshot, error)
	GetSession(sessionID string) (*SessionSnapshot, error)
	CloseSession(sessionID string) error

	UpdateSettings(sessionID string, req *UpdateSettingsRequest) (*SessionSnapshot, error)
	AdvanceToQuestions(sessionID string) (*SessionSnapshot, error)
	BackToSettings(sessionID string) (*SessionSnapshot, error)

	AddQuestion(sessionID string, req *AddQuestionRequest) (string, error)
	UpdateQuestion(sessionID, localID string, req *UpdateQuestionRequest) error
	DeleteQuestion(sessionID, localID string) error
	ChangeQuestionType(sessionID, localID string, t models.QuestionType) error
	MoveQuestion(sessionID, localID string, toIndex int) error
	ApplyContentOperation(sessionID, localID string, op *ContentOperation) error

	Save(ctx context.Context, sessionID string) (*SaveResult, error)
	ExportDraft(sessionID string) ([]byte, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type OpenSessionRequest struct {
	ContentID string `json:"content_id" validate:"required"`
	// QuizID opens an existing quiz for editing instead of a blank draft.
	QuizID string `json:"quiz_id"`
}

type UpdateSettingsRequest struct {
	Title           *string `json:"title"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0"`
	CanSkip         *bool   `json:"can_skip"`
}

type AddQuestionRequest struct {
	Type models.QuestionType `json:"question_type" validate:"required,question_type"`
	// InsertAfter places the new question after the given index; nil appends.
	InsertAfter *int `json:"insert_after"`
}

type UpdateQuestionRequest struct {
	Text    *string `json:"text"`
	Points  *int    `json:"points" validate:"omitempty,gt=0"`
	CanSkip *bool   `json:"can_skip"`
}

// Content operation actions, dispatched per variant by the draft store.
const (
	OpAddAnswer          = "add_answer"
	OpSetAnswer          = "set_answer"
	OpRemoveAnswer       = "remove_answer"
	OpSetCorrectAnswers  = "set_correct_answers"
	OpAddItem            = "add_item"
	OpSetItem            = "set_item"
	OpRemoveItem         = "remove_item"
	OpMoveItem           = "move_item"
	OpAddCategory        = "add_category"
	OpSetCategoryName    = "set_category_name"
	OpRemoveCategory     = "remove_category"
	OpAddCategoryItem    = "add_category_item"
	OpSetCategoryItem    = "set_category_item"
	OpRemoveCategoryItem = "remove_category_item"
)

// ContentOperation is one targeted edit of a question's variant payload.
type ContentOperation struct {
	Action        string `json:"action" validate:"required"`
	Index         int    `json:"index"`
	ToIndex       int    `json:"to_index"`
	CategoryIndex int    `json:"category_index"`
	ItemIndex     int    `json:"item_index"`
	Text          string `json:"text"`
	Indexes       []int  `json:"indexes"`
}

type SessionSnapshot struct {
	SessionID string            `json:"session_id"`
	State     EditorState       `json:"state"`
	Saving    bool              `json:"saving"`
	Draft     *models.QuizDraft `json:"draft"`
}

type SaveResult struct {
	QuizID string `json:"quiz_id"`
}

// ===== SERVICE =====

type editorSession struct {
	id    string
	store *draft.Store

	mu     sync.Mutex
	state  EditorState
	saving bool
}

type editorService struct {
	mu       sync.RWMutex
	sessions map[string]*editorSession

	platform  client.CoursePlatform
	pipeline  *PersistencePipeline
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
	cacheTTL  time.Duration
	logger    utils.Logger
	metrics   *metrics.Metrics
}

func NewEditorService(
	platform client.CoursePlatform,
	pipeline *PersistencePipeline,
	v *validator.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	logger utils.Logger,
	m *metrics.Metrics,
) EditorService {
	return &editorService{
		sessions:  make(map[string]*editorSession),
		platform:  platform,
		pipeline:  pipeline,
		validator: v,
		publisher: publisher,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		logger:    logger,
		metrics:   m,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *editorService) OpenSession(ctx context.Context, req *OpenSessionRequest) (*SessionSnapshot, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	var store *draft.Store
	if req.QuizID == "" {
		store = draft.NewStore(req.ContentID)
	} else {
		quiz, err := s.loadQuiz(ctx, req.QuizID)
		if err != nil {
			return nil, fmt.Errorf("failed to load quiz %s: %w", req.QuizID, err)
		}
		store, err = draft.NewStoreFromQuiz(req.ContentID, quiz)
		if err != nil {
			return nil, fmt.Errorf("failed to hydrate quiz %s: %w", req.QuizID, err)
		}
	}

	session := &editorSession{
		id:    uuid.NewString(),
		store: store,
		state: StateSettings,
	}

	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()

	s.metrics.SessionsOpened.Inc()
	s.logger.Info("Editor session opened",
		"session_id", session.id,
		"content_id", req.ContentID,
		"hydrated", req.QuizID != "")

	return session.snapshot(), nil
}

func (s *editorService) GetSession(sessionID string) (*SessionSnapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// CloseSession cancels a session and discards its draft. Close is refused
// while a save is in flight: the pipeline must settle first so the submission
// cannot be abandoned halfway.
func (s *editorService) CloseSession(sessionID string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	if session.saving {
		session.mu.Unlock()
		return ErrSessionSaving
	}
	session.state = StateClosed
	session.mu.Unlock()

	s.removeSession(sessionID)
	s.logger.Info("Editor session cancelled", "session_id", sessionID)
	return nil
}

// ===== SETTINGS PHASE =====

func (s *editorService) UpdateSettings(sessionID string, req *UpdateSettingsRequest) (*SessionSnapshot, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	session, err := s.sessionInState(sessionID, StateSettings)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		session.store.SetTitle(*req.Title)
	}
	if req.DurationMinutes != nil {
		session.store.SetDurationMinutes(*req.DurationMinutes)
	}
	if req.CanSkip != nil {
		session.store.SetCanSkip(*req.CanSkip)
	}

	return session.snapshot(), nil
}

// AdvanceToQuestions moves the session forward. The gate mirrors what the
// question list needs to exist: a content reference and a title.
func (s *editorService) AdvanceToQuestions(sessionID string) (*SessionSnapshot, error) {
	session, err := s.sessionInState(sessionID, StateSettings)
	if err != nil {
		return nil, err
	}

	d := session.store.Draft()
	if d.ContentID == "" || d.Title == "" {
		return nil, ErrSettingsIncomplete
	}

	session.mu.Lock()
	session.state = StateQuestions
	session.mu.Unlock()

	return session.snapshot(), nil
}

// BackToSettings is always allowed; going back is non-destructive.
func (s *editorService) BackToSettings(sessionID string) (*SessionSnapshot, error) {
	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.state = StateSettings
	session.mu.Unlock()

	return session.snapshot(), nil
}

// ===== QUESTIONS PHASE =====

func (s *editorService) AddQuestion(sessionID string, req *AddQuestionRequest) (string, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return "", err
	}

	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return "", err
	}

	return session.store.AddQuestion(req.Type, req.InsertAfter)
}

func (s *editorService) UpdateQuestion(sessionID, localID string, req *UpdateQuestionRequest) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}

	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return err
	}

	if req.Text != nil {
		session.store.SetQuestionText(localID, *req.Text)
	}
	if req.Points != nil {
		session.store.SetQuestionPoints(localID, *req.Points)
	}
	if req.CanSkip != nil {
		session.store.SetQuestionCanSkip(localID, *req.CanSkip)
	}
	return nil
}

func (s *editorService) DeleteQuestion(sessionID, localID string) error {
	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return err
	}
	session.store.DeleteQuestion(localID)
	return nil
}

func (s *editorService) ChangeQuestionType(sessionID, localID string, t models.QuestionType) error {
	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return err
	}
	return session.store.ChangeQuestionType(localID, t)
}

func (s *editorService) MoveQuestion(sessionID, localID string, toIndex int) error {
	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return err
	}
	session.store.MoveQuestion(localID, toIndex)
	return nil
}

func (s *editorService) ApplyContentOperation(sessionID, localID string, op *ContentOperation) error {
	if err := s.validator.ValidateStruct(op); err != nil {
		return err
	}

	session, err := s.sessionInState(sessionID, StateQuestions)
	if err != nil {
		return err
	}

	store := session.store
	switch op.Action {
	case OpAddAnswer:
		store.AddAnswer(localID)
	case OpSetAnswer:
		store.SetAnswer(localID, op.Index, op.Text)
	case OpRemoveAnswer:
		store.RemoveAnswer(localID, op.Index)
	case OpSetCorrectAnswers:
		store.SetCorrectAnswers(localID, op.Indexes)
	case OpAddItem:
		store.AddItem(localID)
	case OpSetItem:
		store.SetItem(localID, op.Index, op.Text)
	case OpRemoveItem:
		store.RemoveItem(localID, op.Index)
	case OpMoveItem:
		store.MoveItem(localID, op.Index, op.ToIndex)
	case OpAddCategory:
		store.AddCategory(localID)
	case OpSetCategoryName:
		store.SetCategoryName(localID, op.CategoryIndex, op.Text)
	case OpRemoveCategory:
		store.RemoveCategory(localID, op.CategoryIndex)
	case OpAddCategoryItem:
		store.AddCategoryItem(localID, op.CategoryIndex)
	case OpSetCategoryItem:
		store.SetCategoryItem(localID, op.CategoryIndex, op.ItemIndex, op.Text)
	case OpRemoveCategoryItem:
		store.RemoveCategoryItem(localID, op.CategoryIndex, op.ItemIndex)
	default:
		return fmt.Errorf("unknown content operation: %s", op.Action)
	}
	return nil
}

// ===== SAVE =====

// Save validates the draft and runs the persistence pipeline. The draft is
// frozen for the duration so the in-flight submission cannot diverge from
// what is being persisted. Success closes the session and publishes the
// refresh signal; failure leaves the session in the question list with the
// draft untouched.
func (s *editorService) Save(ctx context.Context, sessionID string) (*SaveResult, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.state != StateQuestions {
		session.mu.Unlock()
		if session.state == StateClosed {
			return nil, ErrSessionClosed
		}
		return nil, ErrNotInQuestions
	}
	if session.saving {
		session.mu.Unlock()
		return nil, ErrSessionSaving
	}

	d := session.store.Draft()
	if err := s.validator.Draft().Validate(d); err != nil {
		session.mu.Unlock()
		return nil, err
	}

	session.saving = true
	session.store.Freeze()
	session.mu.Unlock()

	s.logger.InfoContext(ctx, "Saving quiz",
		"session_id", sessionID,
		"content_id", d.ContentID,
		"questions", len(d.Questions))

	quizID, err := s.pipeline.Save(ctx, d)

	session.mu.Lock()
	defer session.mu.Unlock()
	session.saving = false

	if err != nil {
		session.store.Unfreeze()
		s.logger.LogError(err, "Quiz save failed", "session_id", sessionID)
		return nil, err
	}

	d.QuizID = quizID
	session.state = StateClosed
	s.removeSession(sessionID)

	s.invalidateQuiz(ctx, quizID)
	s.publishSaved(ctx, d)

	return &SaveResult{QuizID: quizID}, nil
}

// ===== INTERNALS =====

func (s *editorService) session(sessionID string) (*editorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *editorService) sessionInState(sessionID string, state EditorState) (*editorSession, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != state {
		switch state {
		case StateSettings:
			return nil, ErrNotInSettings
		default:
			return nil, ErrNotInQuestions
		}
	}
	return session, nil
}

func (s *editorService) removeSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	s.metrics.SessionsClosed.Inc()
}

func (s *editorService) loadQuiz(ctx context.Context, quizID string) (*client.Quiz, error) {
	key := quizCacheKey(quizID)

	var cached client.Quiz
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	quiz, err := s.platform.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, quiz, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache quiz", "quiz_id", quizID, "error", err)
	}
	return quiz, nil
}

func (s *editorService) invalidateQuiz(ctx context.Context, quizID string) {
	if err := s.cache.Delete(ctx, quizCacheKey(quizID)); err != nil {
		s.logger.Warn("failed to invalidate quiz cache", "quiz_id", quizID, "error", err)
	}
}

func (s *editorService) publishSaved(ctx context.Context, d *models.QuizDraft) {
	event := events.NewQuizSavedEvent(d.ContentID, d.QuizID, len(d.Questions))
	if err := s.publisher.PublishQuizSaved(ctx, event); err != nil {
		// The quiz is persisted; a missed refresh signal is not a save failure.
		s.logger.LogError(err, "Failed to publish quiz saved event", "quiz_id", d.QuizID)
	}
}

func quizCacheKey(quizID string) string {
	return "quiz:" + quizID
}

func (s *editorSession) snapshot() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &SessionSnapshot{
		SessionID: s.id,
		State:     s.state,
		Saving:    s.saving,
		Draft:     s.store.Draft(),
	}
}
