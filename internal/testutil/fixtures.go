package testutil

import (
	"testing"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Entry options
type EntryOption func(*domain.TimeEntry)

func WithEntryID(id string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.ID = id
	}
}

func WithProject(id, name string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.ProjectID = id
		e.ProjectName = name
	}
}

func WithActivity(a domain.Activity) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Activity = a
	}
}

func WithDate(d time.Time) EntryOption {
	return func(e *domain.TimeEntry) {
		e.DateOfWork = d
	}
}

func WithHours(h float64) EntryOption {
	return func(e *domain.TimeEntry) {
		e.HoursOfWork = h
	}
}

func WithOwner(userID string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.OwnerID = userID
	}
}

func WithApproval(s domain.ApprovalStatus) EntryOption {
	return func(e *domain.TimeEntry) {
		e.ApprovalStatus = s
	}
}

func WithDescription(s string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.PrivateDescription = s
	}
}

// NewTestEntry returns a persisted two-hour meeting logged today.
func NewTestEntry(opts ...EntryOption) domain.TimeEntry {
	y, m, d := time.Now().UTC().Date()
	e := domain.TimeEntry{
		ID:             uuid.New().String(),
		ProjectID:      "P1",
		ProjectName:    "Test Project",
		Activity:       domain.ActivityMeeting,
		DateOfWork:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		HoursOfWork:    2,
		OwnerID:        "u1",
		ApprovalStatus: domain.ApprovalNotSubmitted,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithProjectID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ID = id
	}
}

func WithClient(name string) ProjectOption {
	return func(p *domain.Project) {
		p.ClientName = name
	}
}

func NewTestProject(name string, opts ...ProjectOption) domain.Project {
	p := domain.Project{
		ID:     uuid.New().String(),
		Name:   name,
		Status: domain.ProjectActive,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewTestToken signs a bearer token carrying the claims the identity
// provider issues. The signing key is irrelevant to the client.
func NewTestToken(t *testing.T, userID, name string, role domain.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"name":       name,
		"roleAccess": string(role),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}
