// Package aiclient talks to the external AI proxy over HTTP JSON. The
// proxy handles task planning, weekly reports, chat, and theme
// recommendation; the daemon only forwards requests and surfaces typed
// errors. Responses are never retried or cached.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dayline-app/dayline/internal/model"
)

const (
	defaultTimeout = 60 * time.Second
	quotaTimeout   = 20 * time.Second
)

// QuotaError reports that the user's plan quota for a feature is spent.
type QuotaError struct {
	Feature string `json:"feature"`
	Used    int    `json:"used"`
	Quota   int    `json:"quota"`
	Tier    string `json:"user_tier"`
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("aiclient: quota exceeded for %s (%d/%d, tier %s)", e.Feature, e.Used, e.Quota, e.Tier)
}

// TransportError covers every non-quota failure: connection errors,
// timeouts, and non-2xx responses.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aiclient: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("aiclient: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures the client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type PlanRequest struct {
	Date        model.Date `json:"date"`
	Description string     `json:"description"`
}

type PlannedBlock struct {
	TimeBlockID string `json:"time_block_id"`
	Name        string `json:"name"`
	TaskType    string `json:"task_type"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type PlanResponse struct {
	Blocks []PlannedBlock `json:"blocks"`
	Notes  string         `json:"notes,omitempty"`
}

// PlanDay asks the proxy to lay out time blocks for a free-form day
// description.
func (c *Client) PlanDay(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	var resp PlanResponse
	if err := c.post(ctx, "plan_day", "/api/v1/plan", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type WeeklyReportRequest struct {
	WeekStart      model.Date `json:"week_start"`
	WeekEnd        model.Date `json:"week_end"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	CompletionRate float64    `json:"completion_rate"`
	FocusMinutes   int        `json:"focus_minutes"`
}

type WeeklyReportResponse struct {
	Markdown string `json:"markdown"`
}

// WeeklyReport renders the week's numbers into a narrative markdown
// report.
func (c *Client) WeeklyReport(ctx context.Context, req WeeklyReportRequest) (*WeeklyReportResponse, error) {
	var resp WeeklyReportResponse
	if err := c.post(ctx, "weekly_report", "/api/v1/report/weekly", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, "chat", "/api/v1/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type QuotaStatus struct {
	Tier     string         `json:"user_tier"`
	Features map[string]int `json:"features"`
	Used     map[string]int `json:"used"`
}

// QuotaStatus fetches the remaining plan quota. It uses a short timeout
// so a slow proxy never stalls the UI.
func (c *Client) QuotaStatus(ctx context.Context) (*QuotaStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, quotaTimeout)
	defer cancel()
	var resp QuotaStatus
	if err := c.get(ctx, "quota_status", "/api/v1/quota", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports whether the proxy answers at all.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "health", "/api/v1/health", &resp)
}

type ThemeRequest struct {
	Mood string `json:"mood"`
}

type ThemeResponse struct {
	Name   string            `json:"name"`
	Colors map[string]string `json:"colors"`
}

func (c *Client) RecommendTheme(ctx context.Context, req ThemeRequest) (*ThemeResponse, error) {
	var resp ThemeResponse
	if err := c.post(ctx, "recommend_theme", "/api/v1/theme", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusForbidden {
		if qe := parseQuotaError(body); qe != nil {
			return qe
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

func parseQuotaError(body []byte) *QuotaError {
	var payload struct {
		QuotaExceeded bool `json:"quota_exceeded"`
		QuotaError
	}
	if err := json.Unmarshal(body, &payload); err != nil || !payload.QuotaExceeded {
		return nil
	}
	return &payload.QuotaError
}
