// Package project contains the allocation target of the training hub: a
// capacity-limited project inside a batch window that trainees reserve
// slots on. Slot accounting is the hot shared state of the workflow; the
// capacity invariant is enforced by the repository's atomic reservation.
package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Project is an allocation target: a supervised project with a fixed number
// of slots inside a batch window. Created by administrators, independent of
// any trainee's lifecycle.
type Project struct {
	// ID is the internal identifier (UUID in string form).
	ID string

	// Title is the project title shown to trainees.
	Title string

	// Branch is the discipline tag; only trainees of the same branch are
	// eligible.
	Branch trainee.Branch

	// Supervisor is the staff member in charge.
	Supervisor string

	// DurationWeeks is the training duration (4 or 6 weeks).
	DurationWeeks int

	// StartDate and EndDate bound the batch window.
	StartDate time.Time
	EndDate   time.Time

	// TotalSlots is the capacity of the project.
	TotalSlots int

	// TakenSlots is the current occupancy. Invariant: 0 <= taken <= total,
	// maintained only through atomic Reserve/Release operations.
	TakenSlots int

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is the time of the last mutation.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrProjectNotFound - no project with the given identifier.
	ErrProjectNotFound = fmt.Errorf("project not found: %w", shared.ErrNotFound)

	// ErrProjectFull - all slots taken; the reservation was rejected
	// without any mutation.
	ErrProjectFull = fmt.Errorf("project is full: %w", shared.ErrCapacityFull)

	// ErrInvalidTitle - title missing or too long.
	ErrInvalidTitle = errors.New("invalid title: must be 1-150 chars")

	// ErrInvalidDuration - duration outside the offered 4/6 week formats.
	ErrInvalidDuration = errors.New("invalid duration: must be 4 or 6 weeks")

	// ErrInvalidSlots - capacity must be positive.
	ErrInvalidSlots = errors.New("invalid slots: must be positive")

	// ErrInvalidWindow - batch window end precedes start.
	ErrInvalidWindow = errors.New("invalid batch window: end before start")

	// ErrNoSlotsTaken - release called on a project with zero occupancy.
	ErrNoSlotsTaken = errors.New("no slots taken")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewProjectParams contains the parameters for creating a project.
type NewProjectParams struct {
	ID            string
	Title         string
	Branch        trainee.Branch
	Supervisor    string
	DurationWeeks int
	StartDate     time.Time
	EndDate       time.Time
	TotalSlots    int
}

// NewProject creates a project with all fields validated. A new project
// starts with zero slots taken.
func NewProject(params NewProjectParams) (*Project, error) {
	if params.ID == "" {
		return nil, errors.New("project id is required")
	}

	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 150 {
		return nil, ErrInvalidTitle
	}

	if !params.Branch.IsValid() {
		return nil, trainee.ErrInvalidBranch
	}

	if params.DurationWeeks != 4 && params.DurationWeeks != 6 {
		return nil, ErrInvalidDuration
	}

	if params.TotalSlots <= 0 {
		return nil, ErrInvalidSlots
	}

	if !params.EndDate.IsZero() && params.EndDate.Before(params.StartDate) {
		return nil, ErrInvalidWindow
	}

	now := time.Now().UTC()

	return &Project{
		ID:            params.ID,
		Title:         title,
		Branch:        params.Branch,
		Supervisor:    strings.TrimSpace(params.Supervisor),
		DurationWeeks: params.DurationWeeks,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		TotalSlots:    params.TotalSlots,
		TakenSlots:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// AvailableSlots returns the number of open slots.
func (p *Project) AvailableSlots() int {
	return p.TotalSlots - p.TakenSlots
}

// HasCapacity reports whether at least one slot is open.
func (p *Project) HasCapacity() bool {
	return p.TakenSlots < p.TotalSlots
}

// EligibleFor reports whether a trainee of the given branch may request
// this project.
func (p *Project) EligibleFor(branch trainee.Branch) bool {
	return p.Branch == branch
}

// String returns a short representation for logging.
func (p *Project) String() string {
	return fmt.Sprintf("Project{ID: %s, Title: %s, Slots: %d/%d}",
		p.ID, p.Title, p.TakenSlots, p.TotalSlots)
}

// Clone creates a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}

	clone := *p
	return &clone
}
