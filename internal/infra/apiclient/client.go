// Package apiclient implements the task store ports against a running
// mdboard server.
package apiclient

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

	"github.com/runoshun/mdboard/internal/api"
	"github.com/runoshun/mdboard/internal/domain"
)

// Ensure Client implements domain.TaskStore.
var _ domain.TaskStore = (*Client)(nil)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// Client talks to the HTTP API.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a Client for the server at baseURL (e.g. "http://127.0.0.1:7420").
// A nil httpClient uses one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// StatusError is a non-2xx response from the server.
// Err holds the matching domain error when the server reported one.
type StatusError struct {
	Err        error
	Code       string
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// LoadBoard fetches the board, asking the server to revalidate its cache.
func (c *Client) LoadBoard(ctx context.Context) (*domain.Board, error) {
	var board domain.Board
	if err := c.do(ctx, http.MethodGet, "/api/board?refresh=true", nil, &board); err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	return &board, nil
}

// LoadTask fetches a task, returning nil when it does not exist.
func (c *Client) LoadTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	return &task, nil
}

// Create creates a task on the server.
func (c *Client) Create(ctx context.Context, in domain.CreateTaskInput) (*domain.Task, error) {
	req := api.CreateRequest{
		Order:    in.Order,
		Title:    in.Title,
		Status:   in.Status,
		Priority: in.Priority,
		Assignee: in.Assignee,
		Due:      in.Due,
		Content:  in.Content,
		Labels:   in.Labels,
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update patches a task on the server.
func (c *Client) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	req := api.PatchRequest{
		Title:    patch.Title,
		Status:   patch.Status,
		Priority: patch.Priority,
		Labels:   patch.Labels,
		Assignee: patch.Assignee,
		Due:      patch.Due,
		Order:    patch.Order,
		Content:  patch.Content,
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete deletes a task on the server.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// Move moves a task to the exact status and order given.
func (c *Client) Move(ctx context.Context, in domain.MoveTaskInput) (*domain.Task, error) {
	req := api.MoveRequest{
		Renumber: in.Renumber,
		Status:   in.NewStatus,
		Order:    in.NewOrder,
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, taskPath(in.TaskID)+"/move", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// do sends body as JSON and decodes a successful response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	serr := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}

	var body api.ErrorResponse
	if json.Unmarshal(data, &body) != nil || body.Error == "" {
		if resp.StatusCode == http.StatusNotFound {
			serr.Err = domain.ErrTaskNotFound
		}
		return serr
	}
	serr.Code = body.Code
	serr.Message = body.Error
	if body.Code == api.CodeValidation {
		serr.Err = &domain.ValidationError{Fields: body.Fields}
	} else {
		serr.Err = api.SentinelForCode(body.Code)
	}
	return serr
}

func isNotFound(err error) bool {
	serr, ok := err.(*StatusError)
	return ok && serr.StatusCode == http.StatusNotFound
}
