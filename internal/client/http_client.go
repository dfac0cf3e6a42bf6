package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coursekit/quiz-authoring-service/internal/utils"
)

// HTTPClient talks to the course platform over its JSON HTTP API. Every call
// runs under a bounded timeout so a stalled phase surfaces as that phase's
// failure instead of hanging the save.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     utils.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger utils.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) CreateQuiz(ctx context.Context, req *CreateQuizRequest) (*CreateQuizResponse, error) {
	var resp CreateQuizResponse
	if err := c.post(ctx, "/quizzes", req, &resp); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) CreateQuestions(ctx context.Context, req *CreateQuestionsRequest) (*CreateQuestionsResponse, error) {
	var resp CreateQuestionsResponse
	if err := c.post(ctx, "/questions", req, &resp); err != nil {
		return nil, fmt.Errorf("create questions: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) CreateOptions(ctx context.Context, req *CreateOptionsRequest) error {
	// Fire-and-forget acknowledgement; nothing useful comes back.
	if err := c.post(ctx, "/options", req, nil); err != nil {
		return fmt.Errorf("create options: %w", err)
	}
	return nil
}

func (c *HTTPClient) GetQuiz(ctx context.Context, quizID string) (*Quiz, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quizzes/"+quizID, nil)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	var quiz Quiz
	if err := c.do(httpReq, &quiz); err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	return &quiz, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("course platform call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
