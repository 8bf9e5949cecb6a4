// Package api is the HTTP binding of the remote goal service.
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

	"github.com/theirongolddev/yeargoals/internal/engine"
	"github.com/theirongolddev/yeargoals/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "github.com/theirongolddev/yeargoals/1.0"
)

var (
	// ErrUnauthorized indicates the bearer token is missing, expired or invalid.
	ErrUnauthorized = errors.New("api: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the server throttled the request.
	ErrRateLimited = errors.New("api: rate limited")
	// ErrNetwork wraps transport failures: the server could not be reached.
	ErrNetwork = errors.New("api: network error")
	// ErrMalformed indicates a response body that could not be decoded.
	ErrMalformed = errors.New("api: malformed response")
	// ErrNoBaseURL is returned by NewClient when no server is configured.
	ErrNoBaseURL = errors.New("api: no base URL configured")
)

// StatusError is a non-success response. Message is the server's own
// explanation when it sent one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (HTTP %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// Client talks JSON to the goal service.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

var _ engine.Remote = (*Client)(nil)

// NewClient creates a client for baseURL. A zero timeout uses the default.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		timeout: timeout,
		http:    &http.Client{},
	}, nil
}

// ListGoals returns every goal owned by the token's user.
func (c *Client) ListGoals(ctx context.Context) ([]model.Goal, error) {
	var raw []GoalResponse
	if err := c.do(ctx, http.MethodGet, "/goals", nil, &raw); err != nil {
		return nil, err
	}
	goals := make([]model.Goal, 0, len(raw))
	for _, r := range raw {
		goals = append(goals, parseGoal(r))
	}
	return goals, nil
}

// GetAnalytics returns the activity feed and summary counters.
func (c *Client) GetAnalytics(ctx context.Context) (model.AnalyticsFeed, error) {
	var raw AnalyticsResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/activity", nil, &raw); err != nil {
		return model.AnalyticsFeed{}, err
	}
	return parseAnalytics(raw), nil
}

// CreateGoal creates a goal.
func (c *Client) CreateGoal(ctx context.Context, in engine.NewGoal) (model.Goal, error) {
	body := createGoalRequest{
		Title:         in.Title,
		Description:   in.Description,
		Type:          string(in.Type),
		Category:      string(in.Category),
		Year:          in.Year,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
	}
	var raw GoalResponse
	if err := c.do(ctx, http.MethodPost, "/goals", body, &raw); err != nil {
		return model.Goal{}, err
	}
	if raw.ID == "" {
		return model.Goal{}, missingID("goal")
	}
	return parseGoal(raw), nil
}

// UpdateGoal replaces a goal's editable fields.
func (c *Client) UpdateGoal(ctx context.Context, goalID string, edit engine.GoalEdit) (model.Goal, error) {
	body := updateGoalRequest{
		Title:         edit.Title,
		Description:   edit.Description,
		Category:      string(edit.Category),
		TargetAmount:  edit.TargetAmount,
		CurrentAmount: edit.CurrentAmount,
	}
	var raw GoalResponse
	if err := c.do(ctx, http.MethodPut, path("goals", goalID), body, &raw); err != nil {
		return model.Goal{}, err
	}
	if raw.ID == "" {
		return model.Goal{}, missingID("goal")
	}
	return parseGoal(raw), nil
}

// DeleteGoal deletes a goal.
func (c *Client) DeleteGoal(ctx context.Context, goalID string) error {
	return c.do(ctx, http.MethodDelete, path("goals", goalID), nil, nil)
}

// AddMonth adds a month to a plan goal.
func (c *Client) AddMonth(ctx context.Context, goalID, name string, order int) (model.Month, error) {
	var raw MonthResponse
	err := c.do(ctx, http.MethodPost, path("goals", goalID, "months"), monthRequest{Name: name, Order: order}, &raw)
	if err != nil {
		return model.Month{}, err
	}
	if raw.ID == "" {
		return model.Month{}, missingID("month")
	}
	return parseMonth(raw), nil
}

// DeleteMonth removes a month and its tasks.
func (c *Client) DeleteMonth(ctx context.Context, goalID, monthID string) error {
	return c.do(ctx, http.MethodDelete, path("goals", goalID, "months", monthID), nil, nil)
}

// AddTask adds a task to a month.
func (c *Client) AddTask(ctx context.Context, goalID, monthID, text string) (model.Task, error) {
	var raw TaskResponse
	err := c.do(ctx, http.MethodPost, path("goals", goalID, "months", monthID, "tasks"), textRequest{Text: text}, &raw)
	if err != nil {
		return model.Task{}, err
	}
	if raw.ID == "" {
		return model.Task{}, missingID("task")
	}
	return parseTask(raw), nil
}

// ToggleTask flips a task's completion on the server.
func (c *Client) ToggleTask(ctx context.Context, goalID, taskID string) (model.Task, error) {
	var raw TaskResponse
	if err := c.do(ctx, http.MethodPatch, path("goals", goalID, "tasks", taskID, "toggle"), nil, &raw); err != nil {
		return model.Task{}, err
	}
	if raw.ID == "" {
		return model.Task{}, missingID("task")
	}
	return parseTask(raw), nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, goalID, monthID, taskID string) error {
	return c.do(ctx, http.MethodDelete, path("goals", goalID, "months", monthID, "tasks", taskID), nil, nil)
}

// AddSubGoal adds a checklist item.
func (c *Client) AddSubGoal(ctx context.Context, goalID, text string) (model.SubGoal, error) {
	var raw SubGoalResponse
	if err := c.do(ctx, http.MethodPost, path("goals", goalID, "subgoals"), textRequest{Text: text}, &raw); err != nil {
		return model.SubGoal{}, err
	}
	if raw.ID == "" {
		return model.SubGoal{}, missingID("sub-goal")
	}
	return parseSubGoal(raw), nil
}

// ToggleSubGoal flips a checklist item on the server.
func (c *Client) ToggleSubGoal(ctx context.Context, goalID, subGoalID string) (model.SubGoal, error) {
	var raw SubGoalResponse
	if err := c.do(ctx, http.MethodPatch, path("goals", goalID, "subgoals", subGoalID, "toggle"), nil, &raw); err != nil {
		return model.SubGoal{}, err
	}
	if raw.ID == "" {
		return model.SubGoal{}, missingID("sub-goal")
	}
	return parseSubGoal(raw), nil
}

// DeleteSubGoal removes a checklist item.
func (c *Client) DeleteSubGoal(ctx context.Context, goalID, subGoalID string) error {
	return c.do(ctx, http.MethodDelete, path("goals", goalID, "subgoals", subGoalID), nil, nil)
}

// missingID reports a reply that decoded but does not identify the entity
// it describes.
func missingID(kind string) error {
	return fmt.Errorf("%w: %s without id", ErrMalformed, kind)
}

// path joins escaped segments into "/a/b/c".
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// do sends one request. When out is nil the body is discarded; otherwise an
// empty body, including a 204, is ErrMalformed.
func (c *Client) do(ctx context.Context, method, p string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, p, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Status: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(data, &er) == nil {
			se.Message = er.Message
		}
		return se
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s %s: empty body (HTTP %d)", ErrMalformed, method, p, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformed, method, p, err)
	}
	return nil
}
