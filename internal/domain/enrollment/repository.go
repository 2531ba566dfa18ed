package enrollment

import (
	"context"
	"time"
)

// Repository defines persistence operations for the per-trainee workflow
// records. One-to-one uniqueness per trainee is enforced here: the Create
// methods return the corresponding *Exists error on a duplicate.
type Repository interface {
	// Fee records
	CreateFeeRecord(ctx context.Context, f *FeeRecord) error
	GetFeeRecordByTrainee(ctx context.Context, traineeID string) (*FeeRecord, error)
	UpdateFeeRecord(ctx context.Context, f *FeeRecord) error

	// ListFeeRecordsSentBefore returns records still in Sent state whose
	// challan went out before the cutoff. Used by the fee reminder job.
	ListFeeRecordsSentBefore(ctx context.Context, cutoff time.Time) ([]*FeeRecord, error)

	// Selections
	CreateSelection(ctx context.Context, s *Selection) error
	GetSelectionByID(ctx context.Context, id string) (*Selection, error)
	GetSelectionByTrainee(ctx context.Context, traineeID string) (*Selection, error)
	UpdateSelection(ctx context.Context, s *Selection) error
	DeleteSelection(ctx context.Context, id string) error

	// Admission artifacts
	CreateAdmission(ctx context.Context, a *AdmissionArtifact) error
	GetAdmissionByTrainee(ctx context.Context, traineeID string) (*AdmissionArtifact, error)

	// Certificates
	CreateCertificate(ctx context.Context, c *CertificateRecord) error
	GetCertificateByID(ctx context.Context, id string) (*CertificateRecord, error)
	GetCertificateByTrainee(ctx context.Context, traineeID string) (*CertificateRecord, error)
	UpdateCertificate(ctx context.Context, c *CertificateRecord) error
	ListVerifiedCertificates(ctx context.Context) ([]*CertificateRecord, error)
}
