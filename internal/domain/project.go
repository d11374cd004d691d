package domain

// Project is a matter that hours can be logged against.
type Project struct {
	ID         string
	Name       string
	ClientName string
	Status     ProjectStatus
}

// IsTerminal reports whether the project no longer accepts time entries.
func (p *Project) IsTerminal() bool {
	return p.Status == ProjectCompleted || p.Status == ProjectRejected
}

// DisplayName returns the project name, falling back to its ID.
func (p *Project) DisplayName() string {
	return CoalesceStr(p.Name, p.ID)
}

// UserSummary identifies a user in browse listings.
type UserSummary struct {
	ID   string
	Name string
}
