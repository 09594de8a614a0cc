package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/scheduler"
)

// Client talks to a running scheduler API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// State is the body of GET /state
type State struct {
	RunID string `json:"run_id"`
	scheduler.Snapshot
}

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scheduler returned status %d: %s", e.Code, e.Message)
}

// New creates a client for the API at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RunCycle advances the remote simulation by one cycle
func (c *Client) RunCycle(ctx context.Context) (scheduler.StepResult, error) {
	var result scheduler.StepResult
	err := c.do(ctx, http.MethodPost, "/cycles", nil, &result)
	return result, err
}

// State fetches the current workers, jobs and efficiency
func (c *Client) State(ctx context.Context) (State, error) {
	var state State
	err := c.do(ctx, http.MethodGet, "/state", nil, &state)
	return state, err
}

// CreateWorker registers a worker with the remote fleet
func (c *Client) CreateWorker(ctx context.Context, req models.CreateWorkerRequest) (models.Worker, error) {
	var worker models.Worker
	err := c.do(ctx, http.MethodPost, "/workers", req, &worker)
	return worker, err
}

// RemoveWorker decommissions a remote worker
func (c *Client) RemoveWorker(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workers/"+url.PathEscape(id), nil, nil)
}

// InjectJob queues a job on the remote simulation
func (c *Client) InjectJob(ctx context.Context, req models.InjectJobRequest) (models.Job, error) {
	var job models.Job
	err := c.do(ctx, http.MethodPost, "/jobs", req, &job)
	return job, err
}

// ClearCompleted drops finished jobs and returns how many were removed
func (c *Client) ClearCompleted(ctx context.Context) (int, error) {
	var body map[string]int
	if err := c.do(ctx, http.MethodDelete, "/jobs/completed", nil, &body); err != nil {
		return 0, err
	}
	return body["cleared"], nil
}

// Reset restarts the remote simulation and returns the new run id
func (c *Client) Reset(ctx context.Context) (string, error) {
	var body map[string]string
	if err := c.do(ctx, http.MethodPost, "/reset", nil, &body); err != nil {
		return "", err
	}
	return body["run_id"], nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		message := strings.TrimSpace(string(bodyBytes))
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
