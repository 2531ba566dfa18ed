package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PROJECT COMMAND
// Administrative: opens a project batch with a fixed slot capacity.
// ══════════════════════════════════════════════════════════════════════════════

// CreateProjectCommand contains the data needed to create a project.
type CreateProjectCommand struct {
	// Title is the project title shown to trainees.
	Title string

	// Branch is the engineering branch the project admits.
	Branch string

	// Supervisor is the staff member in charge.
	Supervisor string

	// DurationWeeks is the training duration: 4 or 6.
	DurationWeeks int

	// StartDate and EndDate bound the batch window.
	StartDate time.Time
	EndDate   time.Time

	// TotalSlots is the capacity of the batch.
	TotalSlots int
}

// Validate validates the command.
func (c CreateProjectCommand) Validate() error {
	if c.Title == "" {
		return errors.New("create_project: title is required")
	}
	if c.Branch == "" {
		return errors.New("create_project: branch is required")
	}
	if c.TotalSlots <= 0 {
		return errors.New("create_project: total_slots must be positive")
	}
	return nil
}

// CreateProjectResult contains the result of the creation.
type CreateProjectResult struct {
	// ProjectID is the internal ID of the created project.
	ProjectID string

	// AvailableSlots is the initial free capacity.
	AvailableSlots int
}

// CreateProjectHandler handles the CreateProjectCommand.
type CreateProjectHandler struct {
	projectRepo project.Repository
	idGen       IDGenerator
}

// NewCreateProjectHandler creates a new CreateProjectHandler.
func NewCreateProjectHandler(projectRepo project.Repository, idGen IDGenerator) *CreateProjectHandler {
	return &CreateProjectHandler{
		projectRepo: projectRepo,
		idGen:       idGen,
	}
}

// Handle executes the create project command.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*CreateProjectResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_project: validation failed: %w", err)
	}

	p, err := project.NewProject(project.NewProjectParams{
		ID:            h.idGen.GenerateID(),
		Title:         cmd.Title,
		Branch:        trainee.Branch(cmd.Branch),
		Supervisor:    cmd.Supervisor,
		DurationWeeks: cmd.DurationWeeks,
		StartDate:     cmd.StartDate,
		EndDate:       cmd.EndDate,
		TotalSlots:    cmd.TotalSlots,
	})
	if err != nil {
		return nil, fmt.Errorf("create_project: %w", err)
	}

	if err := h.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create_project: failed to save project: %w", err)
	}

	return &CreateProjectResult{
		ProjectID:      p.ID,
		AvailableSlots: p.AvailableSlots(),
	}, nil
}
