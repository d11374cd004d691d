package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/domain"
)

// fakeClient is an in-memory api.Client. Zero-value fields echo requests back.
type fakeClient struct {
	mu sync.Mutex

	createCalls [][]domain.TimeEntry
	updateCalls []domain.TimeEntry
	submitCalls []api.SubmitRequest
	scopes      []api.ProjectScope
	userCalls   int
	entryCalls  []string

	createErr error
	updateErr error
	submitErr error
	listErr   error

	// gate, when set, blocks write calls until it is closed.
	gate    chan struct{}
	entered chan struct{}

	serverID string
	users    []domain.UserSummary
	entries  map[string][]domain.TimeEntry
	projects map[api.ProjectScope][]domain.Project
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		serverID: "ts-1",
		entries:  map[string][]domain.TimeEntry{},
		projects: map[api.ProjectScope][]domain.Project{},
	}
}

func (f *fakeClient) wait(ctx context.Context) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
		}
	}
}

func (f *fakeClient) CreateEntries(ctx context.Context, entries []domain.TimeEntry) (*api.StageResponse, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, entries)
	err := f.createErr
	f.mu.Unlock()
	f.wait(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(entries))
	for _, e := range entries {
		e.ID = f.serverID
		e.ApprovalStatus = domain.ApprovalNotSubmitted
		out = append(out, e)
	}
	raw, _ := json.Marshal(map[string]any{"updatedTimesheet": []map[string]string{{"id": f.serverID}}})
	return &api.StageResponse{Entries: out, Raw: raw}, nil
}

func (f *fakeClient) UpdateEntry(ctx context.Context, id string, entry domain.TimeEntry) (*api.StageResponse, error) {
	f.mu.Lock()
	entry.ID = id
	f.updateCalls = append(f.updateCalls, entry)
	err := f.updateErr
	f.mu.Unlock()
	f.wait(ctx)
	if err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(map[string]any{"updatedTimesheet": map[string]string{"id": id}})
	return &api.StageResponse{Entries: []domain.TimeEntry{entry}, Raw: raw}, nil
}

func (f *fakeClient) SubmitEntries(ctx context.Context, req api.SubmitRequest) error {
	f.mu.Lock()
	f.submitCalls = append(f.submitCalls, req)
	err := f.submitErr
	f.mu.Unlock()
	f.wait(ctx)
	return err
}

func (f *fakeClient) ListUsersWithTimesheets(context.Context) ([]domain.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeClient) ListEntriesForUser(_ context.Context, userID string) ([]domain.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entryCalls = append(f.entryCalls, userID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries[userID], nil
}

func (f *fakeClient) ListProjects(_ context.Context, scope api.ProjectScope) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scope)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.projects[scope], nil
}

func (f *fakeClient) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createCalls) + len(f.updateCalls) + len(f.submitCalls)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}
