package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/alexanderramin/timesheet/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type browserKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultBrowserKeys() browserKeyMap {
	return browserKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Refresh, k.Quit}
}

// usersLoadedMsg signals that the user list has been fetched.
type usersLoadedMsg struct {
	users []domain.UserSummary
	err   error
}

// entriesLoadedMsg signals that one user's entries have been fetched.
type entriesLoadedMsg struct {
	userID  string
	entries []domain.TimeEntry
	err     error
}

// browserModel lists users with timesheets and, once one is opened, their
// entries. Opening a user always fetches afresh.
type browserModel struct {
	browser *service.TimesheetBrowser
	viewer  *identity.Identity
	now     func() time.Time
	keys    browserKeyMap

	users    []domain.UserSummary
	cursor   int
	selected *domain.UserSummary
	entries  []domain.TimeEntry
	loading  bool
	err      error
}

func newBrowserModel(browser *service.TimesheetBrowser, viewer *identity.Identity, now func() time.Time) *browserModel {
	return &browserModel{
		browser: browser,
		viewer:  viewer,
		now:     now,
		keys:    defaultBrowserKeys(),
		loading: true,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadUsers()
}

func (m *browserModel) loadUsers() tea.Cmd {
	browser := m.browser
	return func() tea.Msg {
		users, err := browser.ListEligibleUsers(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

func (m *browserModel) loadEntries(userID string) tea.Cmd {
	browser := m.browser
	return func() tea.Msg {
		entries, err := browser.ListEntriesFor(context.Background(), userID)
		return entriesLoadedMsg{userID: userID, entries: entries, err: err}
	}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.users = msg.users
			if m.cursor >= len(m.users) {
				m.cursor = 0
			}
		}
		return m, nil

	case entriesLoadedMsg:
		// A late response for a user we already left is dropped.
		if m.selected == nil || m.selected.ID != msg.userID {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.entries = msg.entries
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *browserModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.err = nil
		if m.selected != nil {
			return m, m.loadEntries(m.selected.ID)
		}
		return m, m.loadUsers()

	case m.selected != nil && key.Matches(msg, m.keys.Back):
		m.selected = nil
		m.entries = nil
		m.loading = false
		m.err = nil
		return m, nil

	case m.selected == nil && key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case m.selected == nil && key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.users)-1 {
			m.cursor++
		}

	case m.selected == nil && key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.users) {
			u := m.users[m.cursor]
			m.selected = &u
			m.entries = nil
			m.loading = true
			m.err = nil
			return m, m.loadEntries(u.ID)
		}
	}
	return m, nil
}

func (m *browserModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.selected != nil:
		name := domain.CoalesceStr(m.selected.Name, m.selected.ID)
		b.WriteString("  " + formatter.Header("Timesheet: "+name) + "\n\n")
		switch {
		case m.loading:
			b.WriteString("  " + formatter.Dim("Loading entries...") + "\n")
		case m.err != nil:
			b.WriteString("  " + formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
		case len(m.entries) == 0:
			b.WriteString("  " + formatter.Dim("No time entries.") + "\n")
		default:
			b.WriteString(indent(renderEntries(m.entries, m.viewer, m.selected.ID, m.now()), "  ") + "\n")
		}

	default:
		b.WriteString("  " + formatter.Header("Users with timesheets") + "\n\n")
		switch {
		case m.loading:
			b.WriteString("  " + formatter.Dim("Loading users...") + "\n")
		case m.err != nil:
			b.WriteString("  " + formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
		case len(m.users) == 0:
			b.WriteString("  " + formatter.Dim("No users have logged time yet.") + "\n")
		default:
			for i, u := range m.users {
				cursor := "  "
				nameStyle := formatter.StyleFg
				if i == m.cursor {
					cursor = formatter.StyleGreen.Render("▸ ")
					nameStyle = formatter.StyleBold
				}
				fmt.Fprintf(&b, "  %s%s  %s\n", cursor, nameStyle.Render(domain.CoalesceStr(u.Name, u.ID)), formatter.Dim(u.ID))
			}
		}
	}

	b.WriteString("\n  " + m.helpLine() + "\n")
	return b.String()
}

func (m *browserModel) helpLine() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, k := range m.keys.ShortHelp() {
		if m.selected == nil && k.Help().Desc == "back" {
			continue
		}
		parts = append(parts, formatter.StyleHeader.Render(k.Help().Key)+" "+formatter.Dim(k.Help().Desc))
	}
	return strings.Join(parts, "  ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
