package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY FEE COMMAND
// FeeSent -> FeeVerified. An administrator confirms the payment against the
// bank record. Verification is allowed whether or not the trainee submitted
// a ticket number; the bank statement is the source of truth.
// ══════════════════════════════════════════════════════════════════════════════

// VerifyFeeCommand contains the data needed to verify a payment.
type VerifyFeeCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// VerifiedBy is the administrator confirming the payment.
	VerifiedBy string
}

// Validate validates the command.
func (c VerifyFeeCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("verify_fee: trainee_id is required")
	}
	if c.VerifiedBy == "" {
		return errors.New("verify_fee: verified_by is required")
	}
	return nil
}

// VerifyFeeResult contains the result of the verification.
type VerifyFeeResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// FeeRecordID is the ID of the verified fee record.
	FeeRecordID string

	// State is the lifecycle state after the transition.
	State trainee.State
}

// VerifyFeeHandler handles the VerifyFeeCommand.
type VerifyFeeHandler struct {
	uow            UnitOfWork
	eventPublisher shared.EventPublisher
}

// NewVerifyFeeHandler creates a new VerifyFeeHandler.
func NewVerifyFeeHandler(uow UnitOfWork, eventPublisher shared.EventPublisher) *VerifyFeeHandler {
	return &VerifyFeeHandler{
		uow:            uow,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the verify fee command.
func (h *VerifyFeeHandler) Handle(ctx context.Context, cmd VerifyFeeCommand) (*VerifyFeeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("verify_fee: validation failed: %w", err)
	}

	result := &VerifyFeeResult{TraineeID: cmd.TraineeID}
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
		if state != trainee.StateFeeSent {
			if state == trainee.StateFeeVerified {
				return shared.NewDomainError("enrollment", "VerifyFee",
					shared.ErrAlreadyProcessed, "fee is already verified")
			}
			return trainee.Guard("verify_fee", trainee.StateFeeSent, state)
		}

		fee, err := s.Enrollment.GetFeeRecordByTrainee(ctx, t.ID)
		if err != nil {
			return err
		}
		if err := fee.MarkVerified(); err != nil {
			if errors.Is(err, enrollment.ErrFeeAlreadyVerified) {
				return shared.NewDomainError("enrollment", "VerifyFee",
					shared.ErrAlreadyProcessed, "fee is already verified")
			}
			return err
		}
		if err := s.Enrollment.UpdateFeeRecord(ctx, fee); err != nil {
			return err
		}

		t.MarkPaymentVerified()
		if err := s.Trainees.Update(ctx, t); err != nil {
			return err
		}

		result.FeeRecordID = fee.ID
		result.State = trainee.StateFeeVerified

		events = append(events, shared.NewFeeVerifiedEvent(t.ID, fee.ID, cmd.VerifiedBy))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify_fee: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
