// Package qa is a thin client for the remote question-answering service.
package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RichardoC/Chat-i/internal/models"
	"go.uber.org/zap"
)

// ErrNetwork wraps transport-level failures (offline, DNS, timeout) so
// callers can distinguish them from HTTP-level errors.
var ErrNetwork = errors.New("network failure")

// HTTPError is a non-2xx response from the backend, with the body retained
// for display.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Body)
}

// Client talks to the QA backend. The base URL and bearer token come from
// configuration; the token may be empty, in which case no Authorization
// header is sent.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// History fetches all history records for a user. A 404 means the user has
// no history yet and yields an empty result, not an error.
func (c *Client) History(ctx context.Context, userID string) ([]models.HistoryRecord, error) {
	url := fmt.Sprintf("%s/api/qa/history/user/%s", c.baseURL, userID)

	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("no history for user", zap.String("userId", userID))
		return nil, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var records []models.HistoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}
	return records, nil
}

// DeleteHistory removes one conversation's history on the backend.
func (c *Client) DeleteHistory(ctx context.Context, conversationID string) error {
	url := fmt.Sprintf("%s/api/qa/history/%s", c.baseURL, conversationID)

	resp, err := c.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// Ask sends a question and returns the assistant's answer. The backend
// responds with the answer as plain text, not wrapped in JSON.
func (c *Client) Ask(ctx context.Context, req models.QARequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	c.logger.Debug("sending question",
		zap.Int64("userId", req.UserID),
		zap.String("sessionId", req.SessionID))

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/qa/ask", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return string(answer), nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
