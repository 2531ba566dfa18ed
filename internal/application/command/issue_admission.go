package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// ISSUE ADMISSION COMMAND
// ProjectApproved -> AdmissionIssued. Creates the admit card with
// get-or-create semantics: invoking it twice for the same trainee returns
// the existing artifact instead of issuing a duplicate.
// ══════════════════════════════════════════════════════════════════════════════

// ArtifactRenderer renders the admit card stored during issuance. The admit
// card is the one artifact written inside the transaction: get-or-create
// semantics need the stored card to exist the moment the admission row
// commits, or a repeat issuance could hand back a reference to nothing.
// Challans and certificates are re-generable and render after commit.
type ArtifactRenderer interface {
	// RenderAdmitCard renders an admit card.
	RenderAdmitCard(view document.AdmitCardView) ([]byte, error)
}

// IssueAdmissionCommand contains the data needed to issue an admit card.
type IssueAdmissionCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string
}

// Validate validates the command.
func (c IssueAdmissionCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("issue_admission: trainee_id is required")
	}
	return nil
}

// IssueAdmissionResult contains the result of the issuance.
type IssueAdmissionResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// AdmissionID is the admission artifact record.
	AdmissionID string

	// AdmitCardRef points to the stored admit card.
	AdmitCardRef document.ArtifactRef

	// AlreadyIssued is set when an existing admit card was returned
	// instead of a new one being created.
	AlreadyIssued bool

	// State is the lifecycle state after the transition.
	State trainee.State
}

// IssueAdmissionHandler handles the IssueAdmissionCommand.
type IssueAdmissionHandler struct {
	uow            UnitOfWork
	idGen          IDGenerator
	renderer       ArtifactRenderer
	documents      document.Store
	eventPublisher shared.EventPublisher
}

// NewIssueAdmissionHandler creates a new IssueAdmissionHandler.
func NewIssueAdmissionHandler(
	uow UnitOfWork,
	idGen IDGenerator,
	renderer ArtifactRenderer,
	documents document.Store,
	eventPublisher shared.EventPublisher,
) *IssueAdmissionHandler {
	return &IssueAdmissionHandler{
		uow:            uow,
		idGen:          idGen,
		renderer:       renderer,
		documents:      documents,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the issue admission command.
func (h *IssueAdmissionHandler) Handle(ctx context.Context, cmd IssueAdmissionCommand) (*IssueAdmissionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("issue_admission: validation failed: %w", err)
	}

	result := &IssueAdmissionResult{TraineeID: cmd.TraineeID}
	var events []shared.Event

	err := h.uow.RunInTx(ctx, cmd.TraineeID, func(s Stores) error {
		t, err := s.Trainees.GetByID(ctx, cmd.TraineeID)
		if err != nil {
			return err
		}

		// Get-or-create: a second issuance returns the stored card.
		if existing, admErr := s.Enrollment.GetAdmissionByTrainee(ctx, t.ID); admErr == nil {
			result.AdmissionID = existing.ID
			result.AdmitCardRef = document.ArtifactRef(existing.ArtifactRef)
			result.AlreadyIssued = true
			result.State = trainee.StateAdmissionIssued
			return nil
		} else if !shared.IsNotFound(admErr) {
			return admErr
		}

		state, err := currentState(ctx, s, t)
		if err != nil {
			return err
		}
		if err := trainee.Guard("issue_admission", trainee.StateProjectApproved, state); err != nil {
			return err
		}

		sel, err := s.Enrollment.GetSelectionByTrainee(ctx, t.ID)
		if err != nil {
			return err
		}
		p, err := s.Projects.GetByID(ctx, sel.ProjectID)
		if err != nil {
			return err
		}

		data, err := h.renderer.RenderAdmitCard(document.AdmitCardView{
			TraineeName:  t.Name,
			FatherName:   t.FatherName,
			PublicID:     t.PublicID.String(),
			Branch:       t.Branch.String(),
			College:      t.College,
			Address:      t.Address,
			Mobile:       string(t.Mobile),
			PhotoRef:     t.PhotoRef,
			ProjectTitle: p.Title,
			Supervisor:   p.Supervisor,
			ValidFrom:    p.StartDate,
			ValidTo:      p.EndDate,
		})
		if err != nil {
			return fmt.Errorf("failed to render admit card: %w", err)
		}

		ref, err := h.documents.Put(ctx, t.ID, document.KindAdmitCard, data, true)
		if err != nil {
			return err
		}

		admission, err := enrollment.NewAdmissionArtifact(h.idGen.GenerateID(), t.ID)
		if err != nil {
			return err
		}
		admission.ArtifactRef = ref.String()
		if err := s.Enrollment.CreateAdmission(ctx, admission); err != nil {
			return err
		}

		result.AdmissionID = admission.ID
		result.AdmitCardRef = ref
		result.State = trainee.StateAdmissionIssued

		events = append(events, shared.NewAdmissionIssuedEvent(t.ID, admission.ID, p.ID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("issue_admission: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
