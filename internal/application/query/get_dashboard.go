// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// The trainee's single pane: consolidated lifecycle state plus everything
// hanging off it (fee record, selection, admission, certificate).
// ══════════════════════════════════════════════════════════════════════════════

// FeeDueDays is the payment window counted from challan dispatch.
const FeeDueDays = 7

// GetDashboardQuery contains the parameters of a dashboard request.
type GetDashboardQuery struct {
	// TraineeID is the internal ID of the trainee.
	TraineeID string
}

// Validate validates the query.
func (q *GetDashboardQuery) Validate() error {
	if q.TraineeID == "" {
		return errors.New("trainee_id is required")
	}
	return nil
}

// FeeDTO is the fee section of the dashboard.
type FeeDTO struct {
	Status       string     `json:"status"`
	TicketNumber string     `json:"ticket_number,omitempty"`
	ChallanRef   string     `json:"challan_ref,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	DueBy        *time.Time `json:"due_by,omitempty"`
	Overdue      bool       `json:"overdue"`
}

// SelectionDTO is the project section of the dashboard.
type SelectionDTO struct {
	ProjectID    string    `json:"project_id"`
	ProjectTitle string    `json:"project_title"`
	Supervisor   string    `json:"supervisor"`
	Status       string    `json:"status"`
	SelectedOn   time.Time `json:"selected_on"`
}

// CertificateDTO is the certificate section of the dashboard.
type CertificateDTO struct {
	Serial      string     `json:"serial"`
	Verified    bool       `json:"verified"`
	IssuedOn    *time.Time `json:"issued_on,omitempty"`
	ArtifactRef string     `json:"artifact_ref,omitempty"`
}

// GetDashboardResult contains the consolidated dashboard.
type GetDashboardResult struct {
	TraineeID   string         `json:"trainee_id"`
	PublicID    string         `json:"public_id,omitempty"`
	Name        string         `json:"name"`
	Branch      string         `json:"branch"`
	State       trainee.State  `json:"state"`
	NextStates  []trainee.State `json:"next_states"`
	Fee         *FeeDTO         `json:"fee,omitempty"`
	Selection   *SelectionDTO   `json:"selection,omitempty"`
	AdmitCard   string          `json:"admit_card_ref,omitempty"`
	Certificate *CertificateDTO `json:"certificate,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// GetDashboardHandler handles dashboard requests.
type GetDashboardHandler struct {
	traineeRepo    trainee.Repository
	projectRepo    project.Repository
	enrollmentRepo enrollment.Repository
}

// NewGetDashboardHandler creates a new GetDashboardHandler.
func NewGetDashboardHandler(
	traineeRepo trainee.Repository,
	projectRepo project.Repository,
	enrollmentRepo enrollment.Repository,
) *GetDashboardHandler {
	return &GetDashboardHandler{
		traineeRepo:    traineeRepo,
		projectRepo:    projectRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Handle executes the dashboard query.
func (h *GetDashboardHandler) Handle(ctx context.Context, q GetDashboardQuery) (*GetDashboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	t, err := h.traineeRepo.GetByID(ctx, q.TraineeID)
	if err != nil {
		return nil, err
	}

	result := &GetDashboardResult{
		TraineeID:   t.ID,
		PublicID:    t.PublicID.String(),
		Name:        t.Name,
		Branch:      t.Branch.String(),
		GeneratedAt: time.Now().UTC(),
	}

	snap := trainee.Snapshot{
		Selected:        t.Selected,
		PaymentVerified: t.PaymentVerified,
	}

	fee, err := h.enrollmentRepo.GetFeeRecordByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.FeeStatus = fee.Status.String()
		result.Fee = feeDTO(fee, time.Now())
	case shared.IsNotFound(err):
	default:
		return nil, err
	}

	sel, err := h.enrollmentRepo.GetSelectionByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.SelectionStatus = sel.Status.String()
		dto := &SelectionDTO{
			ProjectID:  sel.ProjectID,
			Status:     sel.Status.String(),
			SelectedOn: sel.SelectedOn,
		}
		if p, perr := h.projectRepo.GetByID(ctx, sel.ProjectID); perr == nil {
			dto.ProjectTitle = p.Title
			dto.Supervisor = p.Supervisor
		}
		result.Selection = dto
	case shared.IsNotFound(err):
	default:
		return nil, err
	}

	adm, err := h.enrollmentRepo.GetAdmissionByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.AdmissionIssued = true
		result.AdmitCard = adm.ArtifactRef
	case shared.IsNotFound(err):
	default:
		return nil, err
	}

	cert, err := h.enrollmentRepo.GetCertificateByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.CertificateVerified = cert.Verified
		dto := &CertificateDTO{
			Serial:      cert.Serial.String(),
			Verified:    cert.Verified,
			ArtifactRef: cert.ArtifactRef,
		}
		if !cert.IssuedOn.IsZero() {
			issuedOn := cert.IssuedOn
			dto.IssuedOn = &issuedOn
		}
		result.Certificate = dto
	case shared.IsNotFound(err):
	default:
		return nil, err
	}

	result.State = trainee.StateOf(snap)
	result.NextStates = trainee.NextStates(result.State)

	return result, nil
}

func feeDTO(f *enrollment.FeeRecord, now time.Time) *FeeDTO {
	dto := &FeeDTO{
		Status:       f.Status.String(),
		TicketNumber: f.TicketNumber,
		ChallanRef:   f.ChallanRef,
	}
	if !f.SentAt.IsZero() {
		sentAt := f.SentAt
		dueBy := f.SentAt.AddDate(0, 0, FeeDueDays)
		dto.SentAt = &sentAt
		dto.DueBy = &dueBy
		dto.Overdue = f.Status == enrollment.FeeStatusSent && now.After(dueBy)
	}
	return dto
}
