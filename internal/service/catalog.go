package service

import (
	"context"
	"sync"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
)

// ScopeFor returns the project listing a role loads into the entry form.
// Admins pick from every project; all other roles pick from their own.
func ScopeFor(role domain.Role) api.ProjectScope {
	if role == domain.RoleAdmin {
		return api.ProjectsAll
	}
	return api.ProjectsMy
}

// ProjectCatalog holds the projects the current user may log time against.
// A nil *ProjectCatalog resolves nothing.
type ProjectCatalog struct {
	client api.Client

	mu       sync.RWMutex
	projects []domain.Project
	byID     map[string]domain.Project
}

func NewProjectCatalog(client api.Client) *ProjectCatalog {
	return &ProjectCatalog{client: client, byID: map[string]domain.Project{}}
}

// Load replaces the catalog with the projects visible to id.
func (c *ProjectCatalog) Load(ctx context.Context, id *identity.Identity) error {
	role := domain.RoleGeneral
	if id != nil {
		role = id.Role
	}
	projects, err := c.client.ListProjects(ctx, ScopeFor(role))
	if err != nil {
		return &PersistenceError{Op: "list projects", Err: err}
	}

	byID := make(map[string]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.projects = projects
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// Resolve looks up a project by id, terminal projects included.
func (c *ProjectCatalog) Resolve(id string) (domain.Project, bool) {
	if c == nil || id == "" {
		return domain.Project{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Selectable returns the projects that still accept time, in server order.
func (c *ProjectCatalog) Selectable() []domain.Project {
	if c == nil {
		return []domain.Project{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Project, 0, len(c.projects))
	for _, p := range c.projects {
		if !p.IsTerminal() {
			out = append(out, p)
		}
	}
	return out
}

// IsSelectable reports whether id names a loaded, non-terminal project.
func (c *ProjectCatalog) IsSelectable(id string) bool {
	p, ok := c.Resolve(id)
	return ok && !p.IsTerminal()
}

// All returns every loaded project, terminal ones included.
func (c *ProjectCatalog) All() []domain.Project {
	if c == nil {
		return []domain.Project{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Project{}, c.projects...)
}
