package domain

import "strings"

type Activity string

const (
	ActivityConsulting    Activity = "Consulting"
	ActivityDocumentation Activity = "Documentation"
	ActivityMeeting       Activity = "Meeting"
	ActivityOther         Activity = "Other"
)

// Activities is the closed set of accepted activities, in display order.
var Activities = []Activity{
	ActivityConsulting,
	ActivityDocumentation,
	ActivityMeeting,
	ActivityOther,
}

// ValidActivity reports whether s names one of the accepted activities.
func ValidActivity(s string) bool {
	for _, a := range Activities {
		if string(a) == s {
			return true
		}
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalNotSubmitted ApprovalStatus = "notsubmitted"
	ApprovalSubmitted    ApprovalStatus = "submitted"
	ApprovalPending      ApprovalStatus = "pending"
	ApprovalApproved     ApprovalStatus = "approved"
	ApprovalRejected     ApprovalStatus = "rejected"
)

// OrDefault returns ApprovalNotSubmitted when the server sent no status.
func (s ApprovalStatus) OrDefault() ApprovalStatus {
	if s == "" {
		return ApprovalNotSubmitted
	}
	return s
}

// IsSubmitted reports whether the entry has been sent for approval: it is
// submitted, pending or approved. Case and separators are ignored.
func (s ApprovalStatus) IsSubmitted() bool {
	switch normalizeStatus(string(s)) {
	case ApprovalSubmitted, ApprovalPending, ApprovalApproved:
		return true
	}
	return false
}

func normalizeStatus(s string) ApprovalStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	return ApprovalStatus(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s))
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPending   ProjectStatus = "pending"
	ProjectOnHold    ProjectStatus = "onhold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectRejected  ProjectStatus = "rejected"
)

// Role values are stored normalized to lower snake case. ParseRole also
// accepts the unseparated spellings "projectmanager" and "operationaldirector".
type Role string

const (
	RoleAdmin               Role = "admin"
	RoleDirector            Role = "director"
	RoleOperationalDirector Role = "operational_director"
	RoleProjectManager      Role = "project_manager"
	RoleGeneral             Role = "general"
)

// ParseRole normalizes a role string as issued by the identity provider.
// "Project Manager", "project-manager" and "PROJECT_MANAGER" all map to
// RoleProjectManager. Unknown values are returned normalized but unmatched.
func ParseRole(s string) Role {
	r := strings.ToLower(strings.TrimSpace(s))
	r = strings.NewReplacer(" ", "_", "-", "_").Replace(r)
	switch r {
	case "projectmanager":
		return RoleProjectManager
	case "operationaldirector":
		return RoleOperationalDirector
	case "user", "employee":
		return RoleGeneral
	}
	return Role(r)
}

// IsPrivileged reports whether the role may browse and log time beyond its own.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleOperationalDirector, RoleProjectManager:
		return true
	}
	return false
}

// HasElevatedVisibility reports whether the role sees owner-only controls on
// every entry regardless of who logged it.
func (r Role) HasElevatedVisibility() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleOperationalDirector:
		return true
	}
	return false
}
