package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// RELEASE RESERVATION COMMAND
// Administrative correction: ProjectRequested/ProjectApproved -> FeeVerified.
// Returns the slot to the project and deletes the selection so the trainee
// can pick again. A certificate serial consumed at approval time stays
// consumed; serials are never reused.
// ══════════════════════════════════════════════════════════════════════════════

// ReleaseReservationCommand contains the data needed to release a reservation.
type ReleaseReservationCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// ReleasedBy is the administrator undoing the placement.
	ReleasedBy string
}

// Validate validates the command.
func (c ReleaseReservationCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("release_reservation: trainee_id is required")
	}
	if c.ReleasedBy == "" {
		return errors.New("release_reservation: released_by is required")
	}
	return nil
}

// ReleaseReservationResult contains the result of the release.
type ReleaseReservationResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// ProjectID is the project whose slot was returned.
	ProjectID string

	// RemainingSlots is the project's free capacity after the release.
	RemainingSlots int

	// State is the lifecycle state after the release.
	State trainee.State
}

// ReleaseReservationHandler handles the ReleaseReservationCommand.
type ReleaseReservationHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewReleaseReservationHandler creates a new ReleaseReservationHandler.
func NewReleaseReservationHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *ReleaseReservationHandler {
	return &ReleaseReservationHandler{
		uow:            uow,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the release reservation command.
func (h *ReleaseReservationHandler) Handle(ctx context.Context, cmd ReleaseReservationCommand) (*ReleaseReservationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("release_reservation: validation failed: %w", err)
	}

	result := &ReleaseReservationResult{TraineeID: cmd.TraineeID}
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
		// Release is only meaningful while a reservation is held. Past
		// admission issuance the placement is no longer reversible.
		if state != trainee.StateProjectRequested && state != trainee.StateProjectApproved {
			return trainee.Guard("release_reservation", trainee.StateProjectRequested, state)
		}

		sel, err := s.Enrollment.GetSelectionByTrainee(ctx, t.ID)
		if err != nil {
			return err
		}

		released, err := s.Projects.Release(ctx, sel.ProjectID)
		if err != nil {
			return err
		}
		if err := s.Enrollment.DeleteSelection(ctx, sel.ID); err != nil {
			return err
		}

		result.ProjectID = released.ID
		result.RemainingSlots = released.AvailableSlots()
		result.State = trainee.StateFeeVerified

		events = append(events, shared.NewProjectReleasedEvent(t.ID, sel.ID, released.ID, cmd.ReleasedBy))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("release_reservation: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
