package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

func contributor() *identity.Identity {
	return &identity.Identity{UserID: "u1", Name: "Dana", Role: domain.RoleGeneral, Token: "tok"}
}

func formFor(id *identity.Identity) FormContext {
	return FormContext{Identity: id, Clock: func() time.Time { return fixedNow }}
}

func validDraft() domain.EntryCandidate {
	return domain.EntryCandidate{
		ProjectID:   "P1",
		Activity:    "Meeting",
		DateOfWork:  "2024-06-12",
		HoursOfWork: "2.5",
	}
}

func newLifecycle(t *testing.T, client *fakeClient) *EntryLifecycle {
	t.Helper()
	l := NewEntryLifecycle(client, nil)
	l.ResetDraft(formFor(contributor()), nil)
	return l
}

func TestResetDraft_SeedsDateFromContext(t *testing.T) {
	l := NewEntryLifecycle(newFakeClient(), nil)

	l.ResetDraft(formFor(contributor()), "2024-03-05")
	assert.Equal(t, "2024-03-05", l.Draft().DateOfWork)
	assert.Equal(t, StateDraft, l.State())

	l.ResetDraft(formFor(contributor()), "not a date")
	assert.Equal(t, "2024-06-12", l.Draft().DateOfWork, "invalid context date falls back to today")

	l.ResetDraft(formFor(contributor()), nil)
	assert.Equal(t, "2024-06-12", l.Draft().DateOfWork)
	assert.Empty(t, l.Draft().ProjectID)
	assert.Empty(t, l.Staged())
	assert.False(t, l.EditMode())
}

func TestStage_ScenarioA_CreateThenSubmit(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	res, err := l.Stage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateStaged, l.State())
	require.Len(t, client.createCalls, 1)
	require.Len(t, client.createCalls[0], 1)
	assert.Equal(t, "u1", client.createCalls[0][0].OwnerID)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "ts-1", res.Entries[0].ID)

	sub, err := l.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, sub.Close)
	assert.Equal(t, StateSubmitted, l.State())
	assert.Empty(t, l.Staged())

	require.Len(t, client.submitCalls, 1)
	sent := client.submitCalls[0].Entries
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].WeekStart)
	assert.Equal(t, "2024-06-10", domain.FormatDate(*sent[0].WeekStart))
	assert.Equal(t, "ts-1", sent[0].ID)
}

func TestStage_ScenarioB_ZeroHoursStaysDraft(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	draft := validDraft()
	draft.HoursOfWork = "0"
	l.SetDraft(draft)

	_, err := l.Stage(context.Background())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, domain.FieldHoursOfWork)
	assert.Len(t, verr.Fields, 1)
	assert.Equal(t, StateDraft, l.State())
	assert.Zero(t, client.writeCount())
}

func TestStage_ReportsEveryInvalidField(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(domain.EntryCandidate{HoursOfWork: "-1"})

	_, err := l.Stage(context.Background())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
	assert.Zero(t, client.writeCount())
}

func TestSubmit_ScenarioC_NothingStaged(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	_, err := l.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNoStagedEntry)
	assert.Equal(t, NoticeNotSaved, Notice(err))
	assert.Equal(t, StateDraft, l.State())
	assert.Zero(t, client.writeCount())
}

func TestStage_RoundTripKeepsFields(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())
	require.NoError(t, err)

	staged := l.Staged()
	require.Len(t, staged, 1)
	assert.Equal(t, "P1", staged[0].ProjectID)
	assert.Equal(t, "2024-06-12", domain.FormatDate(staged[0].DateOfWork))
	assert.Equal(t, domain.ActivityMeeting, staged[0].Activity)
	assert.Equal(t, 2.5, staged[0].HoursOfWork)
}

func TestStage_SecondSaveUpdatesCreatedRecord(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())
	require.NoError(t, err)

	draft := l.Draft()
	assert.Equal(t, "ts-1", draft.ID)
	draft.HoursOfWork = "4"
	l.SetDraft(draft)

	_, err = l.Stage(context.Background())
	require.NoError(t, err)
	assert.Len(t, client.createCalls, 1)
	require.Len(t, client.updateCalls, 1)
	assert.Equal(t, "ts-1", client.updateCalls[0].ID)
	assert.Equal(t, 4.0, client.updateCalls[0].HoursOfWork)
}

func TestStage_FallsBackToLocalEntryWhenServerEchoesNothing(t *testing.T) {
	client := &emptyEchoClient{fakeClient: newFakeClient()}
	l := NewEntryLifecycle(client, nil)
	l.ResetDraft(formFor(contributor()), nil)
	l.SetDraft(validDraft())

	res, err := l.Stage(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "P1", res.Entries[0].ProjectID)
	assert.Equal(t, StateStaged, l.State())
}

type emptyEchoClient struct{ *fakeClient }

func (c *emptyEchoClient) CreateEntries(ctx context.Context, entries []domain.TimeEntry) (*api.StageResponse, error) {
	if _, err := c.fakeClient.CreateEntries(ctx, entries); err != nil {
		return nil, err
	}
	return &api.StageResponse{Entries: []domain.TimeEntry{}}, nil
}

func TestStage_ResolvesProjectNameFromCatalog(t *testing.T) {
	client := newFakeClient()
	client.projects[api.ProjectsMy] = []domain.Project{{ID: "P1", Name: "Harbor Lease", Status: domain.ProjectActive}}
	catalog := NewProjectCatalog(client)
	require.NoError(t, catalog.Load(context.Background(), contributor()))

	l := NewEntryLifecycle(client, catalog)
	l.ResetDraft(formFor(contributor()), nil)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Harbor Lease", client.createCalls[0][0].ProjectName)
}

func TestStage_UnknownProjectPassesRawID(t *testing.T) {
	client := newFakeClient()
	l := NewEntryLifecycle(client, NewProjectCatalog(client))
	l.ResetDraft(formFor(contributor()), nil)
	draft := validDraft()
	draft.ProjectID = "P-unknown"
	l.SetDraft(draft)

	_, err := l.Stage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "P-unknown", client.createCalls[0][0].ProjectID)
	assert.Empty(t, client.createCalls[0][0].ProjectName)
}

func TestStage_InvokesCallbacks(t *testing.T) {
	client := newFakeClient()
	var saved []json.RawMessage
	var refreshes []bool
	fc := formFor(contributor())
	fc.OnSave = func(raw json.RawMessage) { saved = append(saved, raw) }
	fc.Refresh = func(tab bool) { refreshes = append(refreshes, tab) }

	l := NewEntryLifecycle(client, nil)
	l.ResetDraft(fc, nil)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Contains(t, string(saved[0]), "ts-1")
	assert.Equal(t, []bool{false}, refreshes)

	_, err = l.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, refreshes)
	assert.Len(t, saved, 1, "submit does not report a save")
}

func TestStage_AutoCloseOnlyForStandaloneContributor(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		mutate  func(*FormContext)
		wantEnd bool
	}{
		{name: "contributor", role: domain.RoleGeneral, wantEnd: true},
		{name: "manager", role: domain.RoleProjectManager},
		{name: "embedded", role: domain.RoleGeneral, mutate: func(fc *FormContext) { fc.Embedded = true }},
		{name: "suppressed", role: domain.RoleGeneral, mutate: func(fc *FormContext) { fc.PreventAutoClose = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := contributor()
			id.Role = tt.role
			fc := formFor(id)
			if tt.mutate != nil {
				tt.mutate(&fc)
			}
			l := NewEntryLifecycle(newFakeClient(), nil)
			l.ResetDraft(fc, nil)
			l.SetDraft(validDraft())

			res, err := l.Stage(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, res.Close)
		})
	}
}

func TestStage_PersistenceFailureKeepsState(t *testing.T) {
	client := newFakeClient()
	client.createErr = api.ErrUnavailable
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, api.ErrUnavailable)
	assert.Equal(t, StateDraft, l.State())
	assert.Empty(t, l.Staged())
	assert.Empty(t, l.Draft().ID)

	client.createErr = nil
	_, err = l.Stage(context.Background())
	require.NoError(t, err, "failure leaves the form retryable")
	assert.Equal(t, StateStaged, l.State())
}

func TestSubmit_PersistenceFailureStaysStaged(t *testing.T) {
	client := newFakeClient()
	client.submitErr = &api.StatusError{Code: 500, Message: "boom"}
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())
	_, err := l.Stage(context.Background())
	require.NoError(t, err)

	_, err = l.Submit(context.Background())

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, StateStaged, l.State())
	assert.Len(t, l.Staged(), 1)
}

func TestResetFromRecord_EnablesImmediateSubmit(t *testing.T) {
	client := newFakeClient()
	record := domain.TimeEntry{
		ID:          "ts-9",
		ProjectID:   "P2",
		Activity:    domain.ActivityConsulting,
		DateOfWork:  time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		HoursOfWork: 3,
		OwnerID:     "u1",
	}
	l := NewEntryLifecycle(client, nil)
	l.ResetFromRecord(formFor(contributor()), record)

	assert.Equal(t, StateStaged, l.State())
	assert.True(t, l.EditMode())
	assert.True(t, l.CanSubmit())
	assert.Equal(t, "ts-9", l.Draft().ID)
	assert.Equal(t, "3", l.Draft().HoursOfWork)

	_, err := l.Submit(context.Background())
	require.NoError(t, err)
	sent := client.submitCalls[0].Entries[0]
	assert.Equal(t, "2024-06-10", domain.FormatDate(*sent.WeekStart), "Sunday belongs to the week starting the previous Monday")
}

func TestResetFromRecord_StageUpdatesAndStaysOpen(t *testing.T) {
	client := newFakeClient()
	l := NewEntryLifecycle(client, nil)
	l.ResetFromRecord(formFor(contributor()), domain.TimeEntry{
		ID: "ts-9", ProjectID: "P2", Activity: domain.ActivityOther,
		DateOfWork: fixedNow, HoursOfWork: 1,
	})

	res, err := l.Stage(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Close, "edits never auto-close")
	assert.Empty(t, client.createCalls)
	require.Len(t, client.updateCalls, 1)
	assert.Equal(t, "ts-9", client.updateCalls[0].ID)
}

func TestSubmit_StagedZeroHoursRejected(t *testing.T) {
	client := newFakeClient()
	l := NewEntryLifecycle(client, nil)
	l.ResetFromRecord(formFor(contributor()), domain.TimeEntry{ID: "ts-3", ProjectID: "P1", DateOfWork: fixedNow})

	_, err := l.Submit(context.Background())

	assert.ErrorIs(t, err, ErrStagedHoursInvalid)
	assert.Equal(t, NoticeHoursInvalid, Notice(err))
	assert.Empty(t, client.submitCalls)
	assert.Equal(t, StateStaged, l.State())
}

func TestSubmit_OnlyFirstStagedEntrySent(t *testing.T) {
	client := &multiEchoClient{fakeClient: newFakeClient()}
	l := NewEntryLifecycle(client, nil)
	l.ResetDraft(formFor(contributor()), nil)
	l.SetDraft(validDraft())
	_, err := l.Stage(context.Background())
	require.NoError(t, err)
	require.Len(t, l.Staged(), 2)

	_, err = l.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, client.submitCalls[0].Entries, 1)
	assert.Equal(t, "first", client.submitCalls[0].Entries[0].ID)
}

type multiEchoClient struct{ *fakeClient }

func (c *multiEchoClient) CreateEntries(ctx context.Context, entries []domain.TimeEntry) (*api.StageResponse, error) {
	first, second := entries[0], entries[0]
	first.ID, second.ID = "first", "second"
	return &api.StageResponse{Entries: []domain.TimeEntry{first, second}}, nil
}

func TestStage_SecondCallWhileInFlightRejected(t *testing.T) {
	client := newFakeClient()
	client.gate = make(chan struct{})
	client.entered = make(chan struct{})
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	done := make(chan error, 1)
	go func() {
		_, err := l.Stage(context.Background())
		done <- err
	}()
	<-client.entered

	assert.True(t, l.Busy(ActionStage))
	assert.False(t, l.Busy(ActionSubmit))
	_, err := l.Stage(context.Background())
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(client.gate)
	require.NoError(t, <-done)
	assert.False(t, l.Busy(ActionStage))
	assert.Len(t, client.createCalls, 1)
}

func TestSubmit_SecondCallWhileInFlightRejected(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())
	_, err := l.Stage(context.Background())
	require.NoError(t, err)

	client.gate = make(chan struct{})
	client.entered = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := l.Submit(context.Background())
		done <- err
	}()
	<-client.entered

	assert.False(t, l.CanSubmit())
	_, err = l.Submit(context.Background())
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(client.gate)
	require.NoError(t, <-done)
	assert.Len(t, client.submitCalls, 1)
}

func TestTeardown_DiscardsLateResponse(t *testing.T) {
	client := newFakeClient()
	client.gate = make(chan struct{})
	client.entered = make(chan struct{})
	saves := 0
	fc := formFor(contributor())
	fc.OnSave = func(json.RawMessage) { saves++ }
	fc.Refresh = func(bool) { saves++ }

	l := NewEntryLifecycle(client, nil)
	l.ResetDraft(fc, nil)
	l.SetDraft(validDraft())

	done := make(chan error, 1)
	go func() {
		_, err := l.Stage(context.Background())
		done <- err
	}()
	<-client.entered
	l.Teardown()
	close(client.gate)

	assert.ErrorIs(t, <-done, ErrFormClosed)
	assert.Equal(t, StateDraft, l.State())
	assert.Empty(t, l.Staged())
	assert.Zero(t, saves)

	_, err := l.Stage(context.Background())
	assert.ErrorIs(t, err, ErrFormClosed)
}

func TestResetDraft_DiscardsResponseFromPreviousForm(t *testing.T) {
	client := newFakeClient()
	client.gate = make(chan struct{})
	client.entered = make(chan struct{})
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	done := make(chan error, 1)
	go func() {
		_, err := l.Stage(context.Background())
		done <- err
	}()
	<-client.entered
	l.ResetDraft(formFor(contributor()), "2024-07-01")
	close(client.gate)

	assert.ErrorIs(t, <-done, ErrFormClosed)
	assert.Equal(t, StateDraft, l.State())
	assert.Empty(t, l.Staged())
	assert.Equal(t, "2024-07-01", l.Draft().DateOfWork)
}

func TestStage_ObservesUseCase(t *testing.T) {
	obs := &recordingObserver{}
	client := newFakeClient()
	l := NewEntryLifecycle(client, nil, WithUseCaseObserver(obs))
	l.ResetDraft(formFor(contributor()), nil)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())
	require.NoError(t, err)
	_, err = l.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, obs.events, 2)
	assert.Equal(t, "stage_entry", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, "ts-1", obs.events[0].Fields["entry_id"])
	assert.Equal(t, "submit_entry", obs.events[1].Name)
	assert.Equal(t, "2024-06-10", obs.events[1].Fields["week_start"])
}

func TestSubmit_UsesConfiguredLink(t *testing.T) {
	client := newFakeClient()
	l := NewEntryLifecycle(client, nil, WithSubmitLink("/approvals"))
	l.ResetDraft(formFor(contributor()), nil)
	l.SetDraft(validDraft())
	_, err := l.Stage(context.Background())
	require.NoError(t, err)

	_, err = l.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/approvals", client.submitCalls[0].Link)
}

func TestNotice(t *testing.T) {
	assert.Empty(t, Notice(nil))
	assert.Equal(t, "save entry: boom", Notice(&PersistenceError{Op: "save entry", Err: errors.New("boom")}))
	assert.True(t, IsInformational(ErrNoStagedEntry))
	assert.True(t, IsInformational(domain.ValidationResult{FieldErrors: map[domain.Field]string{domain.FieldActivity: domain.ReasonActivityRequired}}.Err()))
	assert.False(t, IsInformational(&PersistenceError{Op: "x", Err: api.ErrTimeout}))
}

func TestStage_RejectedOnceSubmitted(t *testing.T) {
	client := newFakeClient()
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	_, err := l.Stage(context.Background())
	require.NoError(t, err)
	_, err = l.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateSubmitted, l.State())

	_, err = l.Stage(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.True(t, IsInformational(err))
	assert.Equal(t, NoticeSubmitted, Notice(err))
	assert.Equal(t, StateSubmitted, l.State())
	assert.Empty(t, client.updateCalls)
	assert.Len(t, client.createCalls, 1)
	assert.False(t, l.CanSubmit())

	_, err = l.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, client.submitCalls, 1)
}

func TestResetFromRecord_SubmittedRecordsOpenSubmitted(t *testing.T) {
	cases := map[domain.ApprovalStatus]LifecycleState{
		domain.ApprovalSubmitted:    StateSubmitted,
		domain.ApprovalPending:      StateSubmitted,
		domain.ApprovalApproved:     StateSubmitted,
		"Approved":                  StateSubmitted,
		domain.ApprovalRejected:     StateStaged,
		domain.ApprovalNotSubmitted: StateStaged,
		"":                          StateStaged,
	}
	for status, want := range cases {
		t.Run(string(status), func(t *testing.T) {
			client := newFakeClient()
			l := NewEntryLifecycle(client, nil)
			l.ResetFromRecord(formFor(contributor()), domain.TimeEntry{
				ID: "ts-9", ProjectID: "P1", Activity: domain.ActivityMeeting,
				DateOfWork: fixedNow, HoursOfWork: 2, ApprovalStatus: status,
			})

			assert.Equal(t, want, l.State())
			assert.Equal(t, want == StateStaged, l.CanSubmit())
			if want != StateSubmitted {
				return
			}
			assert.Empty(t, l.Staged())

			_, err := l.Submit(context.Background())
			assert.ErrorIs(t, err, ErrAlreadySubmitted)
			_, err = l.Stage(context.Background())
			assert.ErrorIs(t, err, ErrAlreadySubmitted)
			assert.Zero(t, client.writeCount())
		})
	}
}

func TestResetDraft_NewFormNotBlockedByPreviousCall(t *testing.T) {
	client := newFakeClient()
	client.gate = make(chan struct{})
	client.entered = make(chan struct{})
	l := newLifecycle(t, client)
	l.SetDraft(validDraft())

	stale := make(chan error, 1)
	go func() {
		_, err := l.Stage(context.Background())
		stale <- err
	}()
	<-client.entered
	require.True(t, l.Busy(ActionStage))

	l.ResetDraft(formFor(contributor()), nil)
	assert.False(t, l.Busy(ActionStage))
	l.SetDraft(validDraft())

	fresh := make(chan error, 1)
	go func() {
		_, err := l.Stage(context.Background())
		fresh <- err
	}()
	<-client.entered
	assert.True(t, l.Busy(ActionStage))
	close(client.gate)

	assert.ErrorIs(t, <-stale, ErrFormClosed)
	require.NoError(t, <-fresh)
	assert.False(t, l.Busy(ActionStage))
	assert.Equal(t, StateStaged, l.State())
}
