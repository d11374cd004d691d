package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/gorilla/mux"
)

// Record is a timesheet row as the server stores it, keyed by wire field name.
type Record map[string]any

// String returns the field as text, or "" when it is absent or null.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Submission is one body received by the submit endpoint.
type Submission struct {
	WeeklyTimesheets []Record `json:"weeklyTimesheets"`
	Link             string   `json:"link"`
}

// RequestLog is a request received by the fake backend.
type RequestLog struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

type injectedFailure struct {
	status  int
	message string
}

// FakeBackend is an in-memory timesheet server for client and CLI tests.
// Its API lives under URL()+"/api".
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	nextID      int
	records     []Record
	users       map[string]string
	projects    []domain.Project
	myProjects  []domain.Project
	submissions []Submission
	requests    []RequestLog
	failures    map[string]injectedFailure
}

// NewFakeBackend starts a fake backend that is shut down with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		users:    map[string]string{},
		failures: map[string]injectedFailure{},
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(b.logRequest, b.requireBearer, b.injectFailures)
	api.HandleFunc("/timesheet/update", b.createEntries).Methods("PATCH")
	api.HandleFunc("/timesheet/update/{id}", b.updateEntry).Methods("PATCH")
	api.HandleFunc("/timesheet/submit/all", b.submitAll).Methods("POST")
	api.HandleFunc("/timesheet/users-with-timesheets", b.listUsers).Methods("GET")
	api.HandleFunc("/timesheet/user/{id}/all-projects", b.listEntries).Methods("GET")
	api.HandleFunc("/project/all", b.listProjects(false)).Methods("GET")
	api.HandleFunc("/project/my", b.listProjects(true)).Methods("GET")

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// APIURL is the base URL the client should be configured with.
func (b *FakeBackend) APIURL() string {
	return b.Server.URL + "/api"
}

// AddUser registers a user name shown by the users listing.
func (b *FakeBackend) AddUser(id, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[id] = name
}

// AddEntry stores an existing entry as the server would.
func (b *FakeBackend) AddEntry(e domain.TimeEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec := Record{
		"id":                 e.ID,
		"projectId":          e.ProjectID,
		"activity":           string(e.Activity),
		"privateDescription": e.PrivateDescription,
		"date":               domain.FormatDate(e.DateOfWork),
		"time":               e.HoursOfWork,
		"userId":             e.OwnerID,
		"approvalStatus":     string(e.ApprovalStatus),
		"entryType":          e.EntryType,
	}
	if e.ProjectName != "" {
		rec["project"] = map[string]any{"id": e.ProjectID, "projectname": e.ProjectName}
	}
	b.records = append(b.records, rec)
}

// SetProjects sets the full catalog and the subset returned to the caller
// as their own projects.
func (b *FakeBackend) SetProjects(all, mine []domain.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects = all
	b.myProjects = mine
}

// FailNext makes the next request whose path ends with suffix fail.
func (b *FakeBackend) FailNext(suffix string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[suffix] = injectedFailure{status: status, message: message}
}

func (b *FakeBackend) Records() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Record(nil), b.records...)
}

func (b *FakeBackend) Submissions() []Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Submission(nil), b.submissions...)
}

func (b *FakeBackend) Requests() []RequestLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RequestLog(nil), b.requests...)
}

// RequestCount returns how many requests reached the backend.
func (b *FakeBackend) RequestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *FakeBackend) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		b.mu.Lock()
		b.requests = append(b.requests, RequestLog{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if strings.TrimSpace(token) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		var (
			fail injectedFailure
			hit  bool
		)
		for suffix, f := range b.failures {
			if strings.HasSuffix(r.URL.Path, suffix) {
				fail, hit = f, true
				delete(b.failures, suffix)
				break
			}
		}
		b.mu.Unlock()
		if hit {
			writeJSON(w, fail.status, map[string]string{"message": fail.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) createEntries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Timesheet []Record `json:"timesheet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	b.mu.Lock()
	created := make([]Record, 0, len(req.Timesheet))
	for _, rec := range req.Timesheet {
		b.nextID++
		rec["id"] = fmt.Sprintf("ts-%d", b.nextID)
		rec["approvalStatus"] = string(domain.ApprovalNotSubmitted)
		b.records = append(b.records, rec)
		created = append(created, rec)
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"updatedTimesheet": created})
}

func (b *FakeBackend) updateEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Timesheet Record `json:"timesheet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, rec := range b.records {
		if rec.String("id") != id {
			continue
		}
		for k, v := range req.Timesheet {
			rec[k] = v
		}
		rec["id"] = id
		b.records[i] = rec
		writeJSON(w, http.StatusOK, map[string]any{"updatedTimesheet": rec})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Timesheet not found"})
}

func (b *FakeBackend) submitAll(w http.ResponseWriter, r *http.Request) {
	var req Submission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	b.mu.Lock()
	b.submissions = append(b.submissions, req)
	for _, sub := range req.WeeklyTimesheets {
		for _, rec := range b.records {
			if rec.String("id") == sub.String("id") {
				rec["approvalStatus"] = string(domain.ApprovalSubmitted)
				rec["weekStart"] = sub["weekStart"]
			}
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Timesheets submitted"})
}

func (b *FakeBackend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	seen := map[string]bool{}
	users := []map[string]string{}
	for _, rec := range b.records {
		id := rec.String("userId")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, map[string]string{"id": id, "name": b.users[id]})
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (b *FakeBackend) listEntries(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	out := []Record{}
	for _, rec := range b.records {
		if rec.String("userId") == id {
			out = append(out, rec)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"timesheets": out})
}

func (b *FakeBackend) listProjects(mine bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		src := b.projects
		if mine {
			src = b.myProjects
		}
		out := make([]map[string]string, 0, len(src))
		for _, p := range src {
			out = append(out, map[string]string{
				"id":          p.ID,
				"projectname": p.Name,
				"clientname":  p.ClientName,
				"status":      string(p.Status),
			})
		}
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"projects": out})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
