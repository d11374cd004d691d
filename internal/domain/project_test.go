package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject_IsTerminal(t *testing.T) {
	cases := map[ProjectStatus]bool{
		ProjectActive:    false,
		ProjectPending:   false,
		ProjectOnHold:    false,
		ProjectCompleted: true,
		ProjectRejected:  true,
		"":               false,
	}
	for status, want := range cases {
		p := &Project{ID: "P1", Status: status}
		assert.Equal(t, want, p.IsTerminal(), "status %q", status)
	}
}

func TestProject_DisplayName(t *testing.T) {
	assert.Equal(t, "Website", (&Project{ID: "P1", Name: "Website"}).DisplayName())
	assert.Equal(t, "P1", (&Project{ID: "P1"}).DisplayName())
}
