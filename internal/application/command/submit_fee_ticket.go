package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT FEE TICKET COMMAND
// The trainee reports the bank payment by its ticket number. The lifecycle
// state stays FeeSent; only the fee record advances (Sent -> Submitted).
// ══════════════════════════════════════════════════════════════════════════════

// SubmitFeeTicketCommand contains the data needed to submit a payment ticket.
type SubmitFeeTicketCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// TicketNumber is the bank payment reference.
	TicketNumber string
}

// Validate validates the command.
func (c SubmitFeeTicketCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("submit_fee_ticket: trainee_id is required")
	}
	if c.TicketNumber == "" {
		return errors.New("submit_fee_ticket: ticket_number is required")
	}
	return nil
}

// SubmitFeeTicketResult contains the result of the submission.
type SubmitFeeTicketResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// FeeRecordID is the ID of the updated fee record.
	FeeRecordID string

	// TicketNumber is the recorded payment reference.
	TicketNumber string
}

// SubmitFeeTicketHandler handles the SubmitFeeTicketCommand.
type SubmitFeeTicketHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewSubmitFeeTicketHandler creates a new SubmitFeeTicketHandler.
func NewSubmitFeeTicketHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *SubmitFeeTicketHandler {
	return &SubmitFeeTicketHandler{
		uow:            uow,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the submit fee ticket command.
func (h *SubmitFeeTicketHandler) Handle(ctx context.Context, cmd SubmitFeeTicketCommand) (*SubmitFeeTicketResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("submit_fee_ticket: validation failed: %w", err)
	}

	result := &SubmitFeeTicketResult{TraineeID: cmd.TraineeID}
	var events []shared.Event

	err := h.uow.RunInTx(ctx, cmd.TraineeID, func(s Stores) error {
		fee, err := s.Enrollment.GetFeeRecordByTrainee(ctx, cmd.TraineeID)
		if err != nil {
			return err
		}

		// SubmitTicket enforces the Sent precondition itself; a challan
		// not yet dispatched or a payment already verified is rejected.
		if err := fee.SubmitTicket(cmd.TicketNumber); err != nil {
			return err
		}
		if err := s.Enrollment.UpdateFeeRecord(ctx, fee); err != nil {
			return err
		}

		result.FeeRecordID = fee.ID
		result.TicketNumber = fee.TicketNumber

		events = append(events, shared.NewFeeSubmittedEvent(cmd.TraineeID, fee.ID, fee.TicketNumber))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit_fee_ticket: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
