package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK SELECTED COMMAND
// Registered -> Selected. Assigns the public training identifier (generated
// exactly once per trainee) and opens the fee record in Pending state.
// ══════════════════════════════════════════════════════════════════════════════

// MarkSelectedCommand contains the data needed to select a trainee.
type MarkSelectedCommand struct {
	// TraineeID is the internal ID of the trainee to select.
	TraineeID string

	// SelectedBy is the administrator performing the selection.
	SelectedBy string
}

// Validate validates the command.
func (c MarkSelectedCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("mark_selected: trainee_id is required")
	}
	return nil
}

// MarkSelectedResult contains the result of the selection.
type MarkSelectedResult struct {
	// TraineeID is the internal ID of the selected trainee.
	TraineeID string

	// PublicID is the assigned public training identifier.
	PublicID sequence.Identifier

	// FeeRecordID is the ID of the opened fee record.
	FeeRecordID string

	// State is the lifecycle state after the transition.
	State trainee.State
}

// MarkSelectedHandler handles the MarkSelectedCommand.
type MarkSelectedHandler struct {
	uow            UnitOfWork
	idGen          IDGenerator
	eventPublisher shared.EventPublisher
}

// NewMarkSelectedHandler creates a new MarkSelectedHandler.
func NewMarkSelectedHandler(
	uow UnitOfWork,
	idGen IDGenerator,
	eventPublisher shared.EventPublisher,
) *MarkSelectedHandler {
	return &MarkSelectedHandler{
		uow:            uow,
		idGen:          idGen,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the mark selected command.
func (h *MarkSelectedHandler) Handle(ctx context.Context, cmd MarkSelectedCommand) (*MarkSelectedResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("mark_selected: validation failed: %w", err)
	}

	result := &MarkSelectedResult{TraineeID: cmd.TraineeID}
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
		if state != trainee.StateRegistered {
			if state == trainee.StateSelected {
				return shared.NewDomainError("trainee", "MarkSelected",
					shared.ErrAlreadyProcessed, "trainee is already selected")
			}
			return trainee.Guard("mark_selected", trainee.StateRegistered, state)
		}

		// The public identifier is generated exactly once. A transition
		// retried after a publish-side failure finds it assigned and
		// must not consume another sequence number.
		if t.PublicID.IsEmpty() {
			publicID, err := s.Sequences.Next(ctx, sequence.CategoryTraineeID, sequence.BucketFor(time.Now()))
			if err != nil {
				return err
			}
			if err := t.AssignPublicID(publicID); err != nil {
				return err
			}
		}
		result.PublicID = t.PublicID

		t.MarkSelected()
		if err := s.Trainees.Update(ctx, t); err != nil {
			return err
		}

		fee, err := enrollment.NewFeeRecord(h.idGen.GenerateID(), t.ID)
		if err != nil {
			return err
		}
		if err := s.Enrollment.CreateFeeRecord(ctx, fee); err != nil {
			return err
		}
		result.FeeRecordID = fee.ID
		result.State = trainee.StateSelected

		events = append(events, shared.NewTraineeSelectedEvent(t.ID, t.PublicID.String(), t.Branch.String()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mark_selected: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
