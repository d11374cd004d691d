package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/google/uuid"
)

// ProjectScope selects which project catalog endpoint to read.
type ProjectScope string

const (
	ProjectsAll ProjectScope = "all"
	ProjectsMy  ProjectScope = "my"
)

// StageResponse is the normalized result of a create or update call.
// Entries holds the server's canonical records; Raw is the untouched body.
type StageResponse struct {
	Entries []domain.TimeEntry
	Raw     json.RawMessage
}

// SubmitRequest submits staged entries for approval. Each entry must carry
// its WeekStart.
type SubmitRequest struct {
	Entries []domain.TimeEntry
	Link    string
}

// Client is the persistence collaborator for timesheet entries.
type Client interface {
	// CreateEntries stages new entries. The server accepts a batch.
	CreateEntries(ctx context.Context, entries []domain.TimeEntry) (*StageResponse, error)

	// UpdateEntry stages changes to an existing record.
	UpdateEntry(ctx context.Context, id string, entry domain.TimeEntry) (*StageResponse, error)

	// SubmitEntries sends staged entries for approval.
	SubmitEntries(ctx context.Context, req SubmitRequest) error

	ListUsersWithTimesheets(ctx context.Context) ([]domain.UserSummary, error)
	ListEntriesForUser(ctx context.Context, userID string) ([]domain.TimeEntry, error)
	ListProjects(ctx context.Context, scope ProjectScope) ([]domain.Project, error)
}

// TokenSource supplies the bearer credential for each request.
type TokenSource interface {
	BearerToken() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) BearerToken() string { return string(t) }

// HTTPClient implements Client over the timesheet REST API.
type HTTPClient struct {
	cfg      Config
	http     *http.Client
	tokens   TokenSource
	observer Observer
}

// NewHTTPClient creates a Client that talks to cfg.BaseURL.
func NewHTTPClient(cfg Config, tokens TokenSource, observer Observer) *HTTPClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		tokens:   tokens,
		observer: observer,
	}
}

func (c *HTTPClient) CreateEntries(ctx context.Context, entries []domain.TimeEntry) (*StageResponse, error) {
	body := createRequest{Timesheet: make([]wireEntry, 0, len(entries))}
	for _, e := range entries {
		body.Timesheet = append(body.Timesheet, toWire(e))
	}
	var resp stageResponse
	raw, err := c.do(ctx, OpCreate, http.MethodPatch, "/timesheet/update", body, &resp)
	if err != nil {
		return nil, err
	}
	staged, err := decodeStaged(resp.UpdatedTimesheet)
	if err != nil {
		return nil, err
	}
	return &StageResponse{Entries: staged, Raw: raw}, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id string, entry domain.TimeEntry) (*StageResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("updating entry: id is required")
	}
	entry.ID = id
	var resp stageResponse
	raw, err := c.do(ctx, OpUpdate, http.MethodPatch, "/timesheet/update/"+url.PathEscape(id), updateRequest{Timesheet: toWire(entry)}, &resp)
	if err != nil {
		return nil, err
	}
	staged, err := decodeStaged(resp.UpdatedTimesheet)
	if err != nil {
		return nil, err
	}
	return &StageResponse{Entries: staged, Raw: raw}, nil
}

func (c *HTTPClient) SubmitEntries(ctx context.Context, req SubmitRequest) error {
	body := submitRequest{
		WeeklyTimesheets: make([]wireEntry, 0, len(req.Entries)),
		Link:             domain.CoalesceStr(req.Link, c.cfg.SubmitLink, DefaultSubmitLink),
	}
	for _, e := range req.Entries {
		body.WeeklyTimesheets = append(body.WeeklyTimesheets, toWire(e))
	}
	_, err := c.do(ctx, OpSubmit, http.MethodPost, "/timesheet/submit/all", body, nil)
	return err
}

func (c *HTTPClient) ListUsersWithTimesheets(ctx context.Context) ([]domain.UserSummary, error) {
	var resp usersResponse
	if _, err := c.do(ctx, OpListUsers, http.MethodGet, "/timesheet/users-with-timesheets", nil, &resp); err != nil {
		return nil, err
	}
	users := make([]domain.UserSummary, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, domain.UserSummary{ID: string(u.ID), Name: u.Name})
	}
	return users, nil
}

func (c *HTTPClient) ListEntriesForUser(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("listing entries: user id is required")
	}
	var resp entriesResponse
	path := "/timesheet/user/" + url.PathEscape(userID) + "/all-projects"
	if _, err := c.do(ctx, OpListEntries, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	entries := make([]domain.TimeEntry, 0, len(resp.Timesheets))
	for _, w := range resp.Timesheets {
		entries = append(entries, fromWire(w))
	}
	return entries, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context, scope ProjectScope) ([]domain.Project, error) {
	path := "/project/my"
	if scope == ProjectsAll {
		path = "/project/all"
	}
	var resp projectsResponse
	if _, err := c.do(ctx, OpListProjects, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	projects := make([]domain.Project, 0, len(resp.Projects))
	for _, p := range resp.Projects {
		projects = append(projects, fromWireProject(p))
	}
	return projects, nil
}

// do issues one API call, retrying reads on transient failures, and decodes
// the JSON body into out when out is non-nil. It returns the raw body.
func (c *HTTPClient) do(ctx context.Context, op Operation, method, path string, body, out any) (json.RawMessage, error) {
	token := c.tokens.BearerToken()
	if token == "" {
		return nil, ErrMissingCredential
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		payload = data
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	attempts := 1
	if method == http.MethodGet {
		attempts += c.cfg.MaxRetries
	}

	start := time.Now()
	requestID := uuid.New().String()
	var (
		raw     []byte
		status  int
		lastErr error
	)
	for i := 0; i < attempts; i++ {
		raw, status, lastErr = c.roundTrip(ctx, method, path, token, requestID, payload)
		if lastErr == nil || ctx.Err() != nil || !retryable(lastErr) {
			break
		}
	}

	if lastErr == nil && out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	switch {
	case lastErr == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		lastErr = ErrTimeout
	case ctx.Err() != nil:
		lastErr = ctx.Err()
	case isConnectionError(lastErr):
		lastErr = ErrUnavailable
	}

	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		Method:    method,
		Path:      path,
		Status:    status,
		RequestID: requestID,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   lastErr == nil,
		ErrorCode: errorCode(lastErr),
	})

	if lastErr != nil {
		return nil, lastErr
	}
	return raw, nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path, token, requestID string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, statusError(resp.StatusCode, data)
	}
	return data, resp.StatusCode, nil
}

func statusError(code int, body []byte) *StatusError {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		return &StatusError{Code: code, Message: domain.CoalesceStr(er.Message, er.Error)}
	}
	return &StatusError{Code: code}
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
