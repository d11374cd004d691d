package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
)

// LifecycleState is the position of the entry form in draft → staged → submitted.
type LifecycleState int

const (
	StateDraft LifecycleState = iota
	StateStaged
	StateSubmitted
)

func (s LifecycleState) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateStaged:
		return "staged"
	case StateSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Action names a user-triggered operation that can be in flight.
type Action string

const (
	ActionStage  Action = "stage"
	ActionSubmit Action = "submit"
)

// FormContext is what the hosting surface knows about the form it opened.
type FormContext struct {
	Identity         *identity.Identity
	Embedded         bool
	PreventAutoClose bool

	// OnSave receives the raw server response of every successful save.
	OnSave func(raw json.RawMessage)

	// Refresh asks the surrounding surface to reload its listing. tab is true
	// after a submit, when the surface should also switch to the submitted view.
	Refresh func(tab bool)

	Clock func() time.Time
}

func (fc FormContext) now() time.Time {
	if fc.Clock != nil {
		return fc.Clock()
	}
	return time.Now()
}

func (fc FormContext) role() domain.Role {
	if fc.Identity == nil {
		return domain.RoleGeneral
	}
	return fc.Identity.Role
}

// StageResult is returned by a successful Stage.
type StageResult struct {
	Entries []domain.TimeEntry
	Raw     json.RawMessage

	// Close reports whether the form should close itself.
	Close bool
}

// SubmitResult is returned by a successful Submit.
type SubmitResult struct {
	Entry domain.TimeEntry
	Close bool
}

type LifecycleOption func(*EntryLifecycle)

// WithUseCaseObserver records stage and submit calls.
func WithUseCaseObserver(obs UseCaseObserver) LifecycleOption {
	return func(l *EntryLifecycle) {
		if obs != nil {
			l.observer = obs
		}
	}
}

// WithSubmitLink overrides the route hint sent with submissions.
func WithSubmitLink(link string) LifecycleOption {
	return func(l *EntryLifecycle) {
		l.submitLink = link
	}
}

// EntryLifecycle drives a single time-entry form from draft to submission.
// It is safe for concurrent use; each action allows one outstanding call.
type EntryLifecycle struct {
	client     api.Client
	catalog    *ProjectCatalog
	observer   UseCaseObserver
	submitLink string

	mu         sync.Mutex
	fc         FormContext
	state      LifecycleState
	draft      domain.EntryCandidate
	staged     []domain.TimeEntry
	editMode   bool
	inFlight   map[Action]bool
	closed     bool
	generation int
}

func NewEntryLifecycle(client api.Client, catalog *ProjectCatalog, opts ...LifecycleOption) *EntryLifecycle {
	l := &EntryLifecycle{
		client:   client,
		catalog:  catalog,
		observer: NoopUseCaseObserver{},
		inFlight: map[Action]bool{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResetDraft opens a fresh form. The date field is seeded from contextDate,
// or today when contextDate is missing or unparseable. Any staged entry and
// any outstanding response from the previous form are dropped.
func (l *EntryLifecycle) ResetDraft(fc FormContext, contextDate any) {
	date := domain.CanonicalDateOr(contextDate, fc.now())

	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset(fc)
	l.draft = domain.EntryCandidate{DateOfWork: domain.FormatDate(date)}
	l.state = StateDraft
}

// ResetFromRecord opens the form on an existing record. A record that has not
// been submitted is staged immediately so it can be submitted without saving
// first. A record already submitted, pending or approved opens as Submitted.
func (l *EntryLifecycle) ResetFromRecord(fc FormContext, record domain.TimeEntry) {
	draft := record.Candidate()
	if draft.DateOfWork == "" {
		draft.DateOfWork = domain.FormatDate(domain.CanonicalDateOr(nil, fc.now()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset(fc)
	l.draft = draft
	l.editMode = true
	if record.ApprovalStatus.IsSubmitted() {
		l.state = StateSubmitted
		return
	}
	l.staged = []domain.TimeEntry{record}
	l.state = StateStaged
}

func (l *EntryLifecycle) reset(fc FormContext) {
	l.fc = fc
	l.staged = nil
	l.editMode = false
	l.closed = false
	l.inFlight = map[Action]bool{}
	l.generation++
}

// Teardown closes the form. Responses still outstanding are discarded.
func (l *EntryLifecycle) Teardown() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *EntryLifecycle) Draft() domain.EntryCandidate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draft
}

// SetDraft replaces the form buffer. The record id cannot be changed once set.
func (l *EntryLifecycle) SetDraft(c domain.EntryCandidate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.draft.ID != "" {
		c.ID = l.draft.ID
	}
	l.draft = c
}

func (l *EntryLifecycle) State() LifecycleState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *EntryLifecycle) EditMode() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.editMode
}

// Staged returns a copy of the staged buffer.
func (l *EntryLifecycle) Staged() []domain.TimeEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.TimeEntry(nil), l.staged...)
}

// Busy reports whether action is awaiting a server response.
func (l *EntryLifecycle) Busy(action Action) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight[action]
}

// CanSubmit reports whether Submit has something to send.
func (l *EntryLifecycle) CanSubmit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateStaged && len(l.staged) > 0 && !l.inFlight[ActionSubmit]
}

// Stage validates the draft and saves it to the server. A draft that carries
// a record id is updated in place; otherwise a new record is created.
func (l *EntryLifecycle) Stage(ctx context.Context) (res StageResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		l.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "stage_entry",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return StageResult{}, ErrFormClosed
	}
	if l.state == StateSubmitted {
		l.mu.Unlock()
		return StageResult{}, ErrAlreadySubmitted
	}
	if l.inFlight[ActionStage] {
		l.mu.Unlock()
		return StageResult{}, ErrActionInFlight
	}
	if v := domain.ValidateEntry(l.draft); !v.OK {
		l.mu.Unlock()
		return StageResult{}, v.Err()
	}

	entry := l.draft.ToEntry()
	if p, ok := l.catalog.Resolve(entry.ProjectID); ok {
		entry.ProjectName = p.Name
	}
	fc := l.fc
	if entry.OwnerID == "" && fc.Identity != nil {
		entry.OwnerID = fc.Identity.UserID
	}
	editMode := l.editMode
	gen := l.generation
	l.inFlight[ActionStage] = true
	l.mu.Unlock()

	fields["project_id"] = entry.ProjectID
	fields["edit"] = editMode || entry.ID != ""

	var resp *api.StageResponse
	var callErr error
	if editMode || entry.ID != "" {
		resp, callErr = l.client.UpdateEntry(ctx, entry.ID, entry)
	} else {
		resp, callErr = l.client.CreateEntries(ctx, []domain.TimeEntry{entry})
	}

	l.mu.Lock()
	// A reset gave the new form its own in-flight set.
	if gen != l.generation {
		l.mu.Unlock()
		return StageResult{}, ErrFormClosed
	}
	l.inFlight[ActionStage] = false
	if l.closed {
		l.mu.Unlock()
		return StageResult{}, ErrFormClosed
	}
	if callErr != nil {
		l.mu.Unlock()
		return StageResult{}, &PersistenceError{Op: "save entry", Err: callErr}
	}

	staged := []domain.TimeEntry{entry}
	var raw json.RawMessage
	if resp != nil {
		raw = resp.Raw
		if len(resp.Entries) > 0 {
			staged = resp.Entries
		}
	}
	l.staged = staged
	l.state = StateStaged
	if l.draft.ID == "" {
		l.draft.ID = staged[0].ID
	}
	res = StageResult{
		Entries: append([]domain.TimeEntry(nil), staged...),
		Raw:     raw,
		Close: ShouldAutoCloseOnSave(AutoCloseInput{
			EditMode:         editMode,
			Role:             fc.role(),
			Embedded:         fc.Embedded,
			PreventAutoClose: fc.PreventAutoClose,
		}),
	}
	l.mu.Unlock()

	fields["entry_id"] = staged[0].ID
	fields["close"] = res.Close
	if fc.OnSave != nil {
		fc.OnSave(raw)
	}
	if fc.Refresh != nil {
		fc.Refresh(false)
	}
	return res, nil
}

// Submit sends the first staged entry for approval with its week start.
func (l *EntryLifecycle) Submit(ctx context.Context) (res SubmitResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		l.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "submit_entry",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return SubmitResult{}, ErrFormClosed
	}
	if l.state == StateSubmitted {
		l.mu.Unlock()
		return SubmitResult{}, ErrAlreadySubmitted
	}
	if l.inFlight[ActionSubmit] {
		l.mu.Unlock()
		return SubmitResult{}, ErrActionInFlight
	}
	if len(l.staged) == 0 {
		l.mu.Unlock()
		return SubmitResult{}, ErrNoStagedEntry
	}
	entry := l.staged[0]
	if !(entry.HoursOfWork > 0) {
		l.mu.Unlock()
		return SubmitResult{}, ErrStagedHoursInvalid
	}
	if entry.DateOfWork.IsZero() {
		if d, derr := domain.CanonicalDate(l.draft.DateOfWork); derr == nil {
			entry.DateOfWork = d
		}
	}
	entry = entry.WithWeekStart()
	fc := l.fc
	if entry.OwnerID == "" && fc.Identity != nil {
		entry.OwnerID = fc.Identity.UserID
	}
	gen := l.generation
	l.inFlight[ActionSubmit] = true
	l.mu.Unlock()

	fields["entry_id"] = entry.ID
	fields["week_start"] = domain.FormatDate(*entry.WeekStart)

	callErr := l.client.SubmitEntries(ctx, api.SubmitRequest{
		Entries: []domain.TimeEntry{entry},
		Link:    l.submitLink,
	})

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return SubmitResult{}, ErrFormClosed
	}
	l.inFlight[ActionSubmit] = false
	if l.closed {
		l.mu.Unlock()
		return SubmitResult{}, ErrFormClosed
	}
	if callErr != nil {
		l.mu.Unlock()
		return SubmitResult{}, &PersistenceError{Op: "submit entry", Err: callErr}
	}
	l.staged = nil
	l.state = StateSubmitted
	l.mu.Unlock()

	if fc.Refresh != nil {
		fc.Refresh(true)
	}
	return SubmitResult{Entry: entry, Close: true}, nil
}
