package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// QuizSavedEvent announces that a quiz finished all persistence phases.
// Consumers owning the content unit refresh their view of it.
type QuizSavedEvent struct {
	ID            string    `json:"id"`
	ContentID     string    `json:"content_id"`
	QuizID        string    `json:"quiz_id"`
	QuestionCount int       `json:"question_count"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewQuizSavedEvent(contentID, quizID string, questionCount int) *QuizSavedEvent {
	return &QuizSavedEvent{
		ID:            uuid.NewString(),
		ContentID:     contentID,
		QuizID:        quizID,
		QuestionCount: questionCount,
		Source:        "quiz-authoring-service",
		Timestamp:     time.Now().UTC(),
	}
}

// EventPublisher defines the interface for publishing authoring events.
type EventPublisher interface {
	PublishQuizSaved(ctx context.Context, event *QuizSavedEvent) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka.
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher.
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

func (p *KafkaEventPublisher) PublishQuizSaved(ctx context.Context, event *QuizSavedEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz saved event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_type", "quiz.saved")
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish quiz saved event",
			"event_id", event.ID,
			"quiz_id", event.QuizID,
			"error", err)
		return fmt.Errorf("failed to publish quiz saved event: %w", err)
	}

	p.logger.Info("Published quiz saved event",
		"event_id", event.ID,
		"quiz_id", event.QuizID,
		"topic", p.topicName)

	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher is a mock implementation for testing.
type MockEventPublisher struct {
	Events []QuizSavedEvent
}

func (p *MockEventPublisher) PublishQuizSaved(_ context.Context, event *QuizSavedEvent) error {
	p.Events = append(p.Events, *event)
	return nil
}

func (p *MockEventPublisher) Close() error {
	return nil
}
