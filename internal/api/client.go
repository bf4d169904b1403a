// Package api implements the JSON-over-HTTP client for the task backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the bounded wait applied to every request.
const DefaultTimeout = 15 * time.Second

// ErrNoUserID is returned when a user-scoped call is attempted with an
// empty user id. Guarding here keeps a bad id out of the request path.
var ErrNoUserID = errors.New("user id is required")

// TokenSource supplies the current bearer token, or "" when absent.
// *token.Store satisfies it.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the task backend. All methods are safe to call from
// multiple goroutines; state (base URL, timeout, token source) is fixed
// at construction.
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	http    *http.Client
}

// New creates a client for the given base URL. A non-positive timeout
// falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		tokens:  tokens,
		http:    &http.Client{},
	}
}

// do performs one request against baseURL+endpoint. A non-nil body is
// sent as JSON; a non-nil out receives the decoded response body. Authed
// calls attach the bearer token and abort with ErrNoToken when it is
// absent. Outcomes map to the error taxonomy: deadline exceeded becomes
// *TimeoutError, other transport failures *NetworkError, and non-2xx
// statuses *ProtocolError carrying the server's detail message when the
// error body parses.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if tok == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Method: method, Endpoint: endpoint, Timeout: c.timeout}
		}
		return &NetworkError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.protocolError(method, endpoint, resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// protocolError builds a *ProtocolError from a non-2xx response,
// preferring the backend's {"detail": ...} message.
func (c *Client) protocolError(method, endpoint string, resp *http.Response) error {
	perr := &ProtocolError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		perr.Detail = body.Detail
	}
	return perr
}

// userPath builds a user-scoped endpoint path.
func userPath(userID string, parts ...string) string {
	segs := append([]string{url.PathEscape(userID)}, parts...)
	return "/" + strings.Join(segs, "/")
}

// Signup registers a new user and returns the issued token.
func (c *Client) Signup(ctx context.Context, in SignupInput) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", in, &out, false)
	return out, err
}

// Login authenticates an existing user and returns the issued token.
func (c *Client) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", in, &out, false)
	return out, err
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/user/", nil, &out, true)
	return out, err
}

// ListTasks fetches all tasks owned by the given user.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}
	var out []Task
	err := c.do(ctx, http.MethodGet, userPath(userID, "tasks"), nil, &out, true)
	return out, err
}

// CreateTask creates a task and returns it with its server-assigned id.
func (c *Client) CreateTask(ctx context.Context, userID string, in CreateTaskInput) (Task, error) {
	if userID == "" {
		return Task{}, ErrNoUserID
	}
	var out Task
	err := c.do(ctx, http.MethodPost, userPath(userID, "tasks"), in, &out, true)
	return out, err
}

// UpdateTask edits a task's fields and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, userID, taskID string, in UpdateTaskInput) (Task, error) {
	if userID == "" {
		return Task{}, ErrNoUserID
	}
	var out Task
	err := c.do(ctx, http.MethodPut, userPath(userID, "tasks", url.PathEscape(taskID)), in, &out, true)
	return out, err
}

// ToggleComplete flips a task's completion state server-side and returns
// the task in its new state.
func (c *Client) ToggleComplete(ctx context.Context, userID, taskID string) (Task, error) {
	if userID == "" {
		return Task{}, ErrNoUserID
	}
	var out Task
	err := c.do(ctx, http.MethodPatch, userPath(userID, "tasks", url.PathEscape(taskID), "complete"), nil, &out, true)
	return out, err
}

// DeleteTask deletes a task. The backend answers 204 with no body.
func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		return ErrNoUserID
	}
	return c.do(ctx, http.MethodDelete, userPath(userID, "tasks", url.PathEscape(taskID)), nil, nil, true)
}

// PendingCount asks the backend how many of the user's tasks are pending.
func (c *Client) PendingCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrNoUserID
	}
	var out struct {
		Pending int `json:"pending"`
	}
	err := c.do(ctx, http.MethodGet, userPath(userID, "pending-tasks"), nil, &out, true)
	return out.Pending, err
}

// CompletedCount asks the backend how many of the user's tasks are completed.
func (c *Client) CompletedCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrNoUserID
	}
	var out struct {
		Completed int `json:"completed"`
	}
	err := c.do(ctx, http.MethodGet, userPath(userID, "completed-tasks"), nil, &out, true)
	return out.Completed, err
}
