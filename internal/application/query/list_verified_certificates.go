package query

import (
	"context"
	"strings"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST VERIFIED CERTIFICATES QUERY
// The public verification registry: employers look a serial up here.
// ══════════════════════════════════════════════════════════════════════════════

// ListVerifiedCertificatesQuery contains the parameters of a registry request.
type ListVerifiedCertificatesQuery struct {
	// Serial narrows the listing to one serial (exact, case-insensitive).
	// Empty lists everything.
	Serial string
}

// VerifiedCertificateDTO is one registry entry.
type VerifiedCertificateDTO struct {
	Serial      string    `json:"serial"`
	TraineeName string    `json:"trainee_name"`
	PublicID    string    `json:"public_id"`
	Branch      string    `json:"branch"`
	IssuedOn    time.Time `json:"issued_on"`
}

// ListVerifiedCertificatesResult contains the registry listing.
type ListVerifiedCertificatesResult struct {
	Certificates []VerifiedCertificateDTO `json:"certificates"`
	TotalCount   int                      `json:"total_count"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

// ListVerifiedCertificatesHandler handles registry requests.
type ListVerifiedCertificatesHandler struct {
	traineeRepo    trainee.Repository
	enrollmentRepo enrollment.Repository
}

// NewListVerifiedCertificatesHandler creates a new handler.
func NewListVerifiedCertificatesHandler(
	traineeRepo trainee.Repository,
	enrollmentRepo enrollment.Repository,
) *ListVerifiedCertificatesHandler {
	return &ListVerifiedCertificatesHandler{
		traineeRepo:    traineeRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Handle executes the registry query.
func (h *ListVerifiedCertificatesHandler) Handle(ctx context.Context, q ListVerifiedCertificatesQuery) (*ListVerifiedCertificatesResult, error) {
	certs, err := h.enrollmentRepo.ListVerifiedCertificates(ctx)
	if err != nil {
		return nil, err
	}

	result := &ListVerifiedCertificatesResult{
		Certificates: make([]VerifiedCertificateDTO, 0, len(certs)),
		GeneratedAt:  time.Now().UTC(),
	}

	filter := strings.TrimSpace(q.Serial)
	for _, cert := range certs {
		if filter != "" && !strings.EqualFold(cert.Serial.String(), filter) {
			continue
		}

		dto := VerifiedCertificateDTO{
			Serial:   cert.Serial.String(),
			IssuedOn: cert.IssuedOn,
		}
		if t, terr := h.traineeRepo.GetByID(ctx, cert.TraineeID); terr == nil {
			dto.TraineeName = t.Name
			dto.PublicID = t.PublicID.String()
			dto.Branch = t.Branch.String()
		}
		result.Certificates = append(result.Certificates, dto)
	}

	result.TotalCount = len(result.Certificates)
	return result, nil
}
