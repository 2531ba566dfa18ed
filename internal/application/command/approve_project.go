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
// APPROVE PROJECT COMMAND
// ProjectRequested -> ProjectApproved. An administrator confirms the batch
// placement. The certificate serial is assigned here, exactly once, so the
// serial order follows the approval order.
// ══════════════════════════════════════════════════════════════════════════════

// ApproveProjectCommand contains the data needed to approve a selection.
type ApproveProjectCommand struct {
	// TraineeID is the internal ID of the trainee whose selection is approved.
	TraineeID string

	// ApprovedBy is the administrator approving the placement.
	ApprovedBy string
}

// Validate validates the command.
func (c ApproveProjectCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("approve_project: trainee_id is required")
	}
	if c.ApprovedBy == "" {
		return errors.New("approve_project: approved_by is required")
	}
	return nil
}

// ApproveProjectResult contains the result of the approval.
type ApproveProjectResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// SelectionID is the approved selection.
	SelectionID string

	// CertificateSerial is the assigned certificate serial.
	CertificateSerial sequence.Identifier

	// State is the lifecycle state after the transition.
	State trainee.State
}

// ApproveProjectHandler handles the ApproveProjectCommand.
type ApproveProjectHandler struct {
	uow            UnitOfWork
	idGen          IDGenerator
	eventPublisher shared.EventPublisher
}

// NewApproveProjectHandler creates a new ApproveProjectHandler.
func NewApproveProjectHandler(
	uow UnitOfWork,
	idGen IDGenerator,
	eventPublisher shared.EventPublisher,
) *ApproveProjectHandler {
	return &ApproveProjectHandler{
		uow:            uow,
		idGen:          idGen,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the approve project command.
func (h *ApproveProjectHandler) Handle(ctx context.Context, cmd ApproveProjectCommand) (*ApproveProjectResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("approve_project: validation failed: %w", err)
	}

	result := &ApproveProjectResult{TraineeID: cmd.TraineeID}
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
		if state != trainee.StateProjectRequested {
			if state == trainee.StateProjectApproved {
				return shared.NewDomainError("enrollment", "ApproveProject",
					shared.ErrAlreadyProcessed, "selection is already approved")
			}
			return trainee.Guard("approve_project", trainee.StateProjectRequested, state)
		}

		sel, err := s.Enrollment.GetSelectionByTrainee(ctx, t.ID)
		if err != nil {
			return err
		}
		if err := sel.Approve(); err != nil {
			return err
		}
		if err := s.Enrollment.UpdateSelection(ctx, sel); err != nil {
			return err
		}

		p, err := s.Projects.GetByID(ctx, sel.ProjectID)
		if err != nil {
			return err
		}

		// The serial is consumed exactly once even if a retried approval
		// re-enters here: an existing certificate record is reused.
		cert, err := s.Enrollment.GetCertificateByTrainee(ctx, t.ID)
		switch {
		case err == nil:
			// already assigned
		case shared.IsNotFound(err):
			serial, genErr := s.Sequences.Next(ctx, sequence.CategoryCertificate, sequence.BucketFor(time.Now()))
			if genErr != nil {
				return genErr
			}
			cert, genErr = enrollment.NewCertificateRecord(h.idGen.GenerateID(), t.ID, serial)
			if genErr != nil {
				return genErr
			}
			if genErr = s.Enrollment.CreateCertificate(ctx, cert); genErr != nil {
				return genErr
			}
		default:
			return err
		}

		result.SelectionID = sel.ID
		result.CertificateSerial = cert.Serial
		result.State = trainee.StateProjectApproved

		events = append(events, shared.NewProjectApprovedEvent(
			t.ID, sel.ID, p.ID, cert.Serial.String(), cmd.ApprovedBy))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("approve_project: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
