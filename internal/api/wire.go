package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// flexString accepts a JSON string, number, or null. The backend is not
// consistent about numeric versus string identifiers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number, numeric string, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("hours must be numeric: %w", err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type wireProject struct {
	ID          flexString `json:"id"`
	ProjectName string     `json:"projectname"`
	ClientName  string     `json:"clientname,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// wireEntry is the JSON shape of a timesheet record. The server names hours
// "time" and sends the work date as "date"; "dateOfWork" is echoed on writes.
type wireEntry struct {
	ID                 flexString   `json:"id,omitempty"`
	ProjectID          flexString   `json:"projectId,omitempty"`
	Matter             flexString   `json:"matter,omitempty"`
	Activity           string       `json:"activity,omitempty"`
	Task               string       `json:"task,omitempty"`
	PrivateDescription string       `json:"privateDescription"`
	DateOfWork         string       `json:"dateOfWork,omitempty"`
	Date               string       `json:"date,omitempty"`
	Time               flexFloat    `json:"time"`
	WeekStart          string       `json:"weekStart,omitempty"`
	UserID             flexString   `json:"userId,omitempty"`
	ApprovalStatus     string       `json:"approvalStatus,omitempty"`
	EntryType          string       `json:"entryType,omitempty"`
	Project            *wireProject `json:"project,omitempty"`
}

func toWire(e domain.TimeEntry) wireEntry {
	date := domain.FormatDate(e.DateOfWork)
	w := wireEntry{
		ID:                 flexString(e.ID),
		ProjectID:          flexString(e.ProjectID),
		Activity:           string(e.Activity),
		PrivateDescription: e.PrivateDescription,
		DateOfWork:         date,
		Date:               date,
		Time:               flexFloat(e.HoursOfWork),
		UserID:             flexString(e.OwnerID),
		ApprovalStatus:     string(e.ApprovalStatus),
		EntryType:          e.EntryType,
	}
	if e.WeekStart != nil {
		w.WeekStart = domain.FormatDate(*e.WeekStart)
	}
	return w
}

func fromWire(w wireEntry) domain.TimeEntry {
	e := domain.TimeEntry{
		ID:                 string(w.ID),
		ProjectID:          domain.CoalesceStr(string(w.ProjectID), string(w.Matter)),
		Activity:           domain.Activity(domain.CoalesceStr(w.Activity, w.Task)),
		PrivateDescription: w.PrivateDescription,
		HoursOfWork:        float64(w.Time),
		OwnerID:            string(w.UserID),
		ApprovalStatus:     domain.ApprovalStatus(w.ApprovalStatus),
		EntryType:          w.EntryType,
	}
	if w.Project != nil {
		e.ProjectID = domain.CoalesceStr(e.ProjectID, string(w.Project.ID))
		e.ProjectName = w.Project.ProjectName
	}
	if d, err := domain.CanonicalDate(domain.CoalesceStr(w.Date, w.DateOfWork)); err == nil {
		e.DateOfWork = d
	}
	if ws, err := domain.CanonicalDate(w.WeekStart); err == nil {
		e.WeekStart = &ws
	}
	return e
}

func fromWireProject(w wireProject) domain.Project {
	return domain.Project{
		ID:         string(w.ID),
		Name:       w.ProjectName,
		ClientName: w.ClientName,
		Status:     domain.ProjectStatus(strings.ToLower(w.Status)),
	}
}

type createRequest struct {
	Timesheet []wireEntry `json:"timesheet"`
}

type updateRequest struct {
	Timesheet wireEntry `json:"timesheet"`
}

type stageResponse struct {
	UpdatedTimesheet json.RawMessage `json:"updatedTimesheet"`
}

type submitRequest struct {
	WeeklyTimesheets []wireEntry `json:"weeklyTimesheets"`
	Link             string      `json:"link"`
}

type usersResponse struct {
	Users []struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	} `json:"users"`
}

type entriesResponse struct {
	Timesheets []wireEntry `json:"timesheets"`
}

type projectsResponse struct {
	Projects []wireProject `json:"projects"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// decodeStaged normalizes the updatedTimesheet field, which the create
// endpoint sends as an array and the update endpoint as a single object.
func decodeStaged(raw json.RawMessage) ([]domain.TimeEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []domain.TimeEntry{}, nil
	}
	var wires []wireEntry
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &wires); err != nil {
			return nil, fmt.Errorf("%w: updatedTimesheet: %v", ErrInvalidResponse, err)
		}
	case '{':
		var one wireEntry
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: updatedTimesheet: %v", ErrInvalidResponse, err)
		}
		wires = append(wires, one)
	default:
		return nil, fmt.Errorf("%w: updatedTimesheet is neither an object nor an array", ErrInvalidResponse)
	}
	entries := make([]domain.TimeEntry, 0, len(wires))
	for _, w := range wires {
		entries = append(entries, fromWire(w))
	}
	return entries, nil
}
