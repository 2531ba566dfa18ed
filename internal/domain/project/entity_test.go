package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() NewProjectParams {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return NewProjectParams{
		ID:            "p-1",
		Title:         "PLC Panel Wiring",
		Branch:        "Electrical",
		Supervisor:    "R. Iyer",
		DurationWeeks: 4,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 28),
		TotalSlots:    5,
	}
}

func TestNewProject(t *testing.T) {
	p, err := NewProject(validParams())
	require.NoError(t, err)
	assert.Equal(t, 0, p.TakenSlots)
	assert.Equal(t, 5, p.AvailableSlots())
	assert.True(t, p.HasCapacity())
}

func TestNewProject_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewProjectParams)
		want   error
	}{
		{"empty title", func(p *NewProjectParams) { p.Title = "  " }, ErrInvalidTitle},
		{"bad duration", func(p *NewProjectParams) { p.DurationWeeks = 5 }, ErrInvalidDuration},
		{"zero slots", func(p *NewProjectParams) { p.TotalSlots = 0 }, ErrInvalidSlots},
		{"negative slots", func(p *NewProjectParams) { p.TotalSlots = -2 }, ErrInvalidSlots},
		{"window inverted", func(p *NewProjectParams) { p.EndDate = p.StartDate.AddDate(0, 0, -1) }, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := NewProject(params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProject_Eligibility(t *testing.T) {
	p, err := NewProject(validParams())
	require.NoError(t, err)

	assert.True(t, p.EligibleFor("Electrical"))
	assert.False(t, p.EligibleFor("Mechanical"))
}
