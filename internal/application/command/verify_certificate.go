package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY CERTIFICATE COMMAND
// AdmissionIssued -> CertificateVerified. The terminal transition: stamps the
// issue date under the pre-assigned serial and records where the rendered
// certificate will live. Rendering happens after commit in the event
// handlers; certificates are re-generable, so a store outage costs nothing
// but a retry.
// ══════════════════════════════════════════════════════════════════════════════

// VerifyCertificateCommand contains the data needed to verify a certificate.
type VerifyCertificateCommand struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// VerifiedBy is the administrator verifying the certificate.
	VerifiedBy string
}

// Validate validates the command.
func (c VerifyCertificateCommand) Validate() error {
	if c.TraineeID == "" {
		return errors.New("verify_certificate: trainee_id is required")
	}
	if c.VerifiedBy == "" {
		return errors.New("verify_certificate: verified_by is required")
	}
	return nil
}

// VerifyCertificateResult contains the result of the verification.
type VerifyCertificateResult struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string

	// CertificateID is the verified certificate record.
	CertificateID string

	// Serial is the certificate serial.
	Serial sequence.Identifier

	// CertificateRef points to the rendered certificate artifact.
	CertificateRef document.ArtifactRef

	// State is the lifecycle state after the transition.
	State trainee.State
}

// VerifyCertificateHandler handles the VerifyCertificateCommand.
type VerifyCertificateHandler struct {
	uow            UnitOfWork
	documents      document.Store
	eventPublisher shared.EventPublisher
}

// NewVerifyCertificateHandler creates a new VerifyCertificateHandler.
func NewVerifyCertificateHandler(
	uow UnitOfWork,
	documents document.Store,
	eventPublisher shared.EventPublisher,
) *VerifyCertificateHandler {
	return &VerifyCertificateHandler{
		uow:            uow,
		documents:      documents,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the verify certificate command.
func (h *VerifyCertificateHandler) Handle(ctx context.Context, cmd VerifyCertificateCommand) (*VerifyCertificateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("verify_certificate: validation failed: %w", err)
	}

	result := &VerifyCertificateResult{TraineeID: cmd.TraineeID}
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
		if state != trainee.StateAdmissionIssued {
			if state == trainee.StateCertificateVerified {
				return shared.NewDomainError("enrollment", "VerifyCertificate",
					shared.ErrAlreadyProcessed, "certificate is already verified")
			}
			return trainee.Guard("verify_certificate", trainee.StateAdmissionIssued, state)
		}

		cert, err := s.Enrollment.GetCertificateByTrainee(ctx, t.ID)
		if err != nil {
			return err
		}

		// The reference is recorded now; the bytes follow after commit.
		ref := h.documents.Ref(t.ID, document.KindCertificate)

		if err := cert.MarkVerified(ref.String()); err != nil {
			if errors.Is(err, enrollment.ErrCertificateVerified) {
				return shared.NewDomainError("enrollment", "VerifyCertificate",
					shared.ErrAlreadyProcessed, "certificate is already verified")
			}
			return err
		}
		if err := s.Enrollment.UpdateCertificate(ctx, cert); err != nil {
			return err
		}

		result.CertificateID = cert.ID
		result.Serial = cert.Serial
		result.CertificateRef = ref
		result.State = trainee.StateCertificateVerified

		events = append(events, shared.NewCertificateVerifiedEvent(
			t.ID, cert.ID, cert.Serial.String(), cmd.VerifiedBy, cert.IssuedOn))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify_certificate: %w", err)
	}

	for _, event := range events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
