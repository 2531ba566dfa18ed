package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND FEE CHALLAN COMMAND
// Selected -> FeeSent. Stamps the fee record with the dispatch time and the
// reference the challan will live under; the artifact itself is rendered and
// stored after commit by the event handlers, so a document-store outage
// never blocks the transition. The payment due window starts here.
// ══════════════════════════════════════════════════════════════════════════════

// SendFeeChallanCommand contains the data needed to dispatch a challan.
type SendFeeChallanCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string
}

// Validate validates the command.
func (c SendFeeChallanCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("send_fee_challan: trainee_id is required")
	}
	return nil
}

// SendFeeChallanResult contains the result of the dispatch.
type SendFeeChallanResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// ChallanRef points to the stored challan artifact.
	ChallanRef document.ArtifactRef

	// SentAt is when the challan was dispatched; the due window counts
	// from this instant.
	SentAt time.Time

	// State is the lifecycle state after the transition.
	State trainee.State
}

// SendFeeChallanHandlerConfig contains configuration for the handler.
type SendFeeChallanHandlerConfig struct {
	// FeeAmount is the training fee printed on the challan, in rupees.
	FeeAmount int
}

// DefaultSendFeeChallanHandlerConfig returns default configuration.
func DefaultSendFeeChallanHandlerConfig() SendFeeChallanHandlerConfig {
	return SendFeeChallanHandlerConfig{FeeAmount: 2500}
}

// SendFeeChallanHandler handles the SendFeeChallanCommand.
type SendFeeChallanHandler struct {
	uow            UnitOfWork
	documents      document.Store
	eventPublisher shared.EventPublisher
	feeAmount      int
}

// NewSendFeeChallanHandler creates a new SendFeeChallanHandler.
func NewSendFeeChallanHandler(
	uow UnitOfWork,
	documents document.Store,
	eventPublisher shared.EventPublisher,
	config SendFeeChallanHandlerConfig,
) *SendFeeChallanHandler {
	if config.FeeAmount == 0 {
		config = DefaultSendFeeChallanHandlerConfig()
	}

	return &SendFeeChallanHandler{
		uow:            uow,
		documents:      documents,
		eventPublisher: eventPublisher,
		feeAmount:      config.FeeAmount,
	}
}

// Handle executes the send fee challan command.
func (h *SendFeeChallanHandler) Handle(ctx context.Context, cmd SendFeeChallanCommand) (*SendFeeChallanResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("send_fee_challan: validation failed: %w", err)
	}

	result := &SendFeeChallanResult{TraineeID: cmd.TraineeID}
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
		if err := trainee.Guard("send_fee_challan", trainee.StateSelected, state); err != nil {
			return err
		}

		fee, err := s.Enrollment.GetFeeRecordByTrainee(ctx, t.ID)
		if err != nil {
			return err
		}

		// The reference is recorded now; the bytes follow after commit.
		ref := h.documents.Ref(t.ID, document.KindChallan)

		if err := fee.MarkSent(ref.String()); err != nil {
			return err
		}
		if err := s.Enrollment.UpdateFeeRecord(ctx, fee); err != nil {
			return err
		}

		result.ChallanRef = ref
		result.SentAt = fee.SentAt
		result.State = trainee.StateFeeSent

		events = append(events, shared.NewFeeSentEvent(t.ID, fee.ID, fee.SentAt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("send_fee_challan: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
