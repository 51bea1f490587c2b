// Package remote talks to the to-do API and adapts it to board.Store.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client wraps http.Client with helpers for the API's JSON and form routes.
type Client struct {
	BaseURL string
	Bearer  string
	HTTP    *http.Client
}

// New creates a Client. A non-positive timeout uses DefaultTimeout.
func New(baseURL, bearer string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Bearer:  bearer,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Tasks lists the caller's tasks in position order.
func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	var out []Task
	if err := c.getJSON(ctx, "/api/tasks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask adds a task. key is sent as Idempotency-Key so a retried create
// is applied once; an empty key gets a fresh one.
func (c *Client) CreateTask(ctx context.Context, text, color, key string) (Task, error) {
	if key == "" {
		key = uuid.NewString()
	}
	var out Task
	err := c.sendJSON(ctx, http.MethodPost, "/api/tasks", createTaskRequest{Task: text, Color: color},
		map[string]string{"Idempotency-Key": key}, &out)
	return out, err
}

func (c *Client) Reorder(ctx context.Context, ids []string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/reorder", reorderRequest{TaskIDs: ids}, nil, nil)
}

func (c *Client) TaskDetails(ctx context.Context, id string) (TaskDetails, error) {
	var out TaskDetails
	err := c.getJSON(ctx, "/api/task-details/"+url.PathEscape(id), &out)
	return out, err
}

func (c *Client) AddTag(ctx context.Context, id, tag string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/tags/"+url.PathEscape(id), tagRequest{TagName: tag}, nil, nil)
}

func (c *Client) RemoveTag(ctx context.Context, id, tag string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/tags/"+url.PathEscape(id), tagRequest{TagName: tag}, nil, nil)
}

// Tags returns the tag vocabulary the server accepts.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var out []string
	err := c.getJSON(ctx, "/api/tags", &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (domain.Progress, error) {
	var out domain.Progress
	err := c.getJSON(ctx, "/api/stats", &out)
	return out, err
}

// SetDueDate sets or, with an empty date, clears the due date.
func (c *Client) SetDueDate(ctx context.Context, id, date string) error {
	return c.postForm(ctx, "/set-duedate/"+url.PathEscape(id), url.Values{"due_date": {date}})
}

func (c *Client) EditTask(ctx context.Context, id, text string) error {
	return c.postForm(ctx, "/edit/"+url.PathEscape(id), url.Values{"new_task_text": {text}})
}

func (c *Client) SetColor(ctx context.Context, id, color string) error {
	return c.postForm(ctx, "/color/"+url.PathEscape(id), url.Values{"color": {color}})
}

func (c *Client) ToggleDone(ctx context.Context, id string) error {
	return c.postForm(ctx, "/toggle/"+url.PathEscape(id), nil)
}

func (c *Client) TogglePin(ctx context.Context, id string) error {
	return c.postForm(ctx, "/pin/"+url.PathEscape(id), nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.postForm(ctx, "/delete/"+url.PathEscape(id), nil)
}

func (c *Client) ClearCompleted(ctx context.Context) error {
	return c.postForm(ctx, "/clear-completed", nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	data, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", headers, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil, nil)
}

// do sends the request and maps failures onto the domain error taxonomy:
// transport errors and 5xx answers are NetworkErrors, 4xx answers are
// ServerRejectedErrors carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, headers map[string]string, out any) error {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.Bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("server error %d: %s", resp.StatusCode, errorMessage(data))}
	case resp.StatusCode >= http.StatusBadRequest:
		return &domain.ServerRejectedError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func errorMessage(data []byte) string {
	var msg messageResponse
	if err := sonic.Unmarshal(data, &msg); err == nil && msg.Message != "" {
		return msg.Message
	}
	return strings.TrimSpace(string(data))
}
