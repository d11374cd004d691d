package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/domain"
)

// TimesheetBrowser lists users with timesheets and the entries of one user.
// Every call goes to the server; nothing is cached.
type TimesheetBrowser struct {
	client   api.Client
	observer UseCaseObserver
}

func NewTimesheetBrowser(client api.Client, observers ...UseCaseObserver) *TimesheetBrowser {
	return &TimesheetBrowser{
		client:   client,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (b *TimesheetBrowser) ListEligibleUsers(ctx context.Context) (users []domain.UserSummary, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		b.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "list_users",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"count": len(users)},
		})
	}()

	users, err = b.client.ListUsersWithTimesheets(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	if users == nil {
		users = []domain.UserSummary{}
	}
	return users, nil
}

// ListEntriesFor returns the entries logged by userID across all projects.
// A user with no entries yields an empty, non-nil slice.
func (b *TimesheetBrowser) ListEntriesFor(ctx context.Context, userID string) (entries []domain.TimeEntry, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		b.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "list_entries",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"user_id": userID, "count": len(entries)},
		})
	}()

	entries, err = b.client.ListEntriesForUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list entries", Err: err}
	}
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	return entries, nil
}

var badgeLabels = map[domain.ApprovalStatus]string{
	domain.ApprovalNotSubmitted: "Not Submitted",
	domain.ApprovalSubmitted:    "Submitted",
	domain.ApprovalPending:      "Pending",
	domain.ApprovalApproved:     "Approved",
	domain.ApprovalRejected:     "Rejected",
}

// StatusBadge returns the display label for an approval status. A missing
// status reads "Not Submitted"; unknown statuses are shown as sent.
func StatusBadge(status domain.ApprovalStatus) string {
	key := domain.ApprovalStatus(strings.NewReplacer("-", "", "_", "", " ", "").Replace(
		strings.ToLower(strings.TrimSpace(string(status))),
	)).OrDefault()
	if label, ok := badgeLabels[key]; ok {
		return label
	}
	return string(status)
}

// StatusTotal is the hours logged under one approval status.
type StatusTotal struct {
	Status  domain.ApprovalStatus
	Label   string
	Entries int
	Hours   float64
}

// Summary totals a listing for the browser footer.
type Summary struct {
	Entries    int
	TotalHours float64
	ByStatus   []StatusTotal
}

// Summarize totals entries per approval status. Statuses appear in lifecycle
// order followed by any unrecognized ones in order of first appearance.
func Summarize(entries []domain.TimeEntry) Summary {
	order := []domain.ApprovalStatus{
		domain.ApprovalNotSubmitted,
		domain.ApprovalSubmitted,
		domain.ApprovalPending,
		domain.ApprovalApproved,
		domain.ApprovalRejected,
	}
	totals := map[string]*StatusTotal{}
	var extra []string

	var s Summary
	for _, e := range entries {
		label := StatusBadge(e.ApprovalStatus)
		t, ok := totals[label]
		if !ok {
			t = &StatusTotal{Status: e.ApprovalStatus.OrDefault(), Label: label}
			totals[label] = t
			if !isKnownLabel(label) {
				extra = append(extra, label)
			}
		}
		t.Entries++
		t.Hours += e.HoursOfWork
		s.Entries++
		s.TotalHours += e.HoursOfWork
	}

	for _, st := range order {
		if t, ok := totals[badgeLabels[st]]; ok {
			t.Status = st
			s.ByStatus = append(s.ByStatus, *t)
		}
	}
	for _, label := range extra {
		s.ByStatus = append(s.ByStatus, *totals[label])
	}
	return s
}

func isKnownLabel(label string) bool {
	for _, l := range badgeLabels {
		if l == label {
			return true
		}
	}
	return false
}
