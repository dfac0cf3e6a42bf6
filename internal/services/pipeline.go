package services

import (
	"context"
	"fmt"
	"time"

	"github.com/coursekit/quiz-authoring-service/internal/client"
	"github.com/coursekit/quiz-authoring-service/internal/metrics"
	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
)

// Pipeline phases, in execution order. Names are also the metric labels.
const (
	PhaseCreateQuiz      = "create_quiz"
	PhaseCreateQuestions = "create_questions"
	PhaseCreateOptions   = "create_options"
)

// PersistencePipeline writes a validated draft to the course platform in
// three strictly sequential phases: create the quiz, create its questions,
// then create each question's options. Question ids come back from phase 2
// order-correlated with the submitted list, so nothing here may reorder the
// draft's questions between phases.
//
// Any phase failing aborts the remaining phases. Records already created on
// the platform are not rolled back; the author retries from a draft that is
// still intact.
type PersistencePipeline struct {
	platform     client.CoursePlatform
	logger       utils.Logger
	metrics      *metrics.Metrics
	phaseTimeout time.Duration
}

func NewPersistencePipeline(platform client.CoursePlatform, logger utils.Logger, m *metrics.Metrics, phaseTimeout time.Duration) *PersistencePipeline {
	return &PersistencePipeline{
		platform:     platform,
		logger:       logger,
		metrics:      m,
		phaseTimeout: phaseTimeout,
	}
}

// Save runs all three phases and returns the server-assigned quiz id.
func (p *PersistencePipeline) Save(ctx context.Context, d *models.QuizDraft) (string, error) {
	p.metrics.SavesAttempted.Inc()

	quizID, err := p.createQuiz(ctx, d)
	if err != nil {
		p.metrics.SavesFailed.WithLabelValues(PhaseCreateQuiz).Inc()
		return "", newPipelineError(PhaseCreateQuiz, err)
	}

	questionIDs, err := p.createQuestions(ctx, d, quizID)
	if err != nil {
		p.metrics.SavesFailed.WithLabelValues(PhaseCreateQuestions).Inc()
		return "", newPipelineError(PhaseCreateQuestions, err)
	}

	if err := p.createOptions(ctx, d, questionIDs); err != nil {
		p.metrics.SavesFailed.WithLabelValues(PhaseCreateOptions).Inc()
		return "", newPipelineError(PhaseCreateOptions, err)
	}

	p.metrics.SavesSucceeded.Inc()
	p.logger.InfoContext(ctx, "quiz persisted",
		"quiz_id", quizID,
		"content_id", d.ContentID,
		"questions", len(d.Questions))

	return quizID, nil
}

// ===== PHASE 1 =====

func (p *PersistencePipeline) createQuiz(ctx context.Context, d *models.QuizDraft) (string, error) {
	phaseCtx, cancel, done := p.startPhase(ctx, PhaseCreateQuiz)
	defer cancel()
	defer done()

	resp, err := p.platform.CreateQuiz(phaseCtx, &client.CreateQuizRequest{
		ContentID:       d.ContentID,
		DurationMinutes: d.DurationMinutes,
		CanSkip:         d.CanSkip,
	})
	if err != nil {
		return "", err
	}
	if resp.QuizID == "" {
		return "", ErrQuizIDMissing
	}
	return resp.QuizID, nil
}

// ===== PHASE 2 =====

func (p *PersistencePipeline) createQuestions(ctx context.Context, d *models.QuizDraft, quizID string) ([]string, error) {
	phaseCtx, cancel, done := p.startPhase(ctx, PhaseCreateQuestions)
	defer cancel()
	defer done()

	req := &client.CreateQuestionsRequest{
		Questions: make([]client.QuestionRecord, 0, len(d.Questions)),
	}
	for _, q := range d.Questions {
		req.Questions = append(req.Questions, client.QuestionRecord{
			QuizID:     quizID,
			Text:       q.Text,
			Title:      q.Text,
			Points:     q.Points,
			Duration:   formatDuration(q.DurationSeconds),
			CanSkip:    q.CanSkip,
			Type:       q.Type.APIType(),
			Categories: []string{q.Type.Title()},
		})
	}

	resp, err := p.platform.CreateQuestions(phaseCtx, req)
	if err != nil {
		return nil, err
	}

	// The platform returns no explicit keys; position is the only link back
	// to our questions. A count mismatch would silently misalign options to
	// the wrong questions, so it is fatal here.
	if len(resp.QuestionIDs) != len(d.Questions) {
		return nil, fmt.Errorf("%w: sent %d, got %d",
			ErrQuestionIDsMismatch, len(d.Questions), len(resp.QuestionIDs))
	}

	return resp.QuestionIDs, nil
}

// ===== PHASE 3 =====

func (p *PersistencePipeline) createOptions(ctx context.Context, d *models.QuizDraft, questionIDs []string) error {
	for i, q := range d.Questions {
		records := FlattenOptions(q, questionIDs[i])
		if len(records) == 0 {
			// Nothing to store for this question; no empty batches.
			continue
		}

		if err := p.sendOptionBatch(ctx, records); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

func (p *PersistencePipeline) sendOptionBatch(ctx context.Context, records []client.OptionRecord) error {
	phaseCtx, cancel, done := p.startPhase(ctx, PhaseCreateOptions)
	defer cancel()
	defer done()

	return p.platform.CreateOptions(phaseCtx, &client.CreateOptionsRequest{Options: records})
}

func (p *PersistencePipeline) startPhase(ctx context.Context, phase string) (context.Context, context.CancelFunc, func()) {
	start := time.Now()
	phaseCtx, cancel := context.WithTimeout(ctx, p.phaseTimeout)
	return phaseCtx, cancel, func() {
		p.metrics.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	}
}

// formatDuration renders a per-question duration as HH:MM:SS, the format the
// question endpoint expects.
func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
