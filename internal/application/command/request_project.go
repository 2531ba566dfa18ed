package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST PROJECT COMMAND
// FeeVerified -> ProjectRequested. Atomically claims one slot of the target
// project and records a pending selection. One selection per trainee, ever:
// a trainee who already holds one gets AlreadySelected regardless of which
// project it points to.
// ══════════════════════════════════════════════════════════════════════════════

// RequestProjectCommand contains the data needed to request a project slot.
type RequestProjectCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// ProjectID is the project the trainee wants to join.
	ProjectID string
}

// Validate validates the command.
func (c RequestProjectCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("request_project: trainee_id is required")
	}
	if c.ProjectID == "" {
		return errors.New("request_project: project_id is required")
	}
	return nil
}

// RequestProjectResult contains the result of the request.
type RequestProjectResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// SelectionID is the ID of the created selection.
	SelectionID string

	// ProjectID is the reserved project.
	ProjectID string

	// RemainingSlots is the project's free capacity after the reservation.
	RemainingSlots int

	// State is the lifecycle state after the transition.
	State trainee.State
}

// RequestProjectHandler handles the RequestProjectCommand.
type RequestProjectHandler struct {
	uow            UnitOfWork
	idGen          IDGenerator
	eventPublisher shared.EventPublisher
}

// NewRequestProjectHandler creates a new RequestProjectHandler.
func NewRequestProjectHandler(
	uow UnitOfWork,
	idGen IDGenerator,
	eventPublisher shared.EventPublisher,
) *RequestProjectHandler {
	return &RequestProjectHandler{
		uow:            uow,
		idGen:          idGen,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the request project command.
func (h *RequestProjectHandler) Handle(ctx context.Context, cmd RequestProjectCommand) (*RequestProjectResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("request_project: validation failed: %w", err)
	}

	result := &RequestProjectResult{TraineeID: cmd.TraineeID, ProjectID: cmd.ProjectID}
	var events []shared.Event

	err := h.uow.RunInTx(ctx, cmd.TraineeID, func(s Stores) error {
		t, err := s.Trainees.GetByID(ctx, cmd.TraineeID)
		if err != nil {
			return err
		}

		state, err := currentState(ctx, s, t)
		if err != nil {
			return err
		}
		if state != trainee.StateFeeVerified {
			// An existing selection outranks the generic transition error
			// so the caller sees AlreadySelected, not InvalidTransition.
			if _, selErr := s.Enrollment.GetSelectionByTrainee(ctx, t.ID); selErr == nil {
				return shared.NewDomainError("enrollment", "RequestProject",
					shared.ErrAlreadySelected, "trainee already holds a project selection")
			}
			return trainee.Guard("request_project", trainee.StateFeeVerified, state)
		}

		p, err := s.Projects.GetByID(ctx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if !p.EligibleFor(t.Branch) {
			return shared.NewDomainError("project", "RequestProject",
				shared.ErrInvalidInput,
				fmt.Sprintf("project branch %q does not match trainee branch %q", p.Branch, t.Branch))
		}

		// Reserve is the atomic slot claim: the occupancy check and the
		// increment are one unit, so over-allocation cannot happen no
		// matter how many requests race.
		reserved, err := s.Projects.Reserve(ctx, p.ID)
		if err != nil {
			if errors.Is(err, project.ErrProjectFull) {
				return shared.NewDomainError("project", "RequestProject",
					shared.ErrCapacityFull, "all slots of the project are taken")
			}
			return err
		}
		result.RemainingSlots = reserved.AvailableSlots()

		sel, err := enrollment.NewSelection(h.idGen.GenerateID(), t.ID, p.ID)
		if err != nil {
			return err
		}
		if err := s.Enrollment.CreateSelection(ctx, sel); err != nil {
			// Transaction rollback returns the reserved slot.
			return err
		}

		result.SelectionID = sel.ID
		result.State = trainee.StateProjectRequested

		events = append(events, shared.NewProjectRequestedEvent(t.ID, sel.ID, p.ID, p.Title))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("request_project: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
