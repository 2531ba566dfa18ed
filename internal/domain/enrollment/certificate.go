package enrollment

import (
	"errors"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMISSION ARTIFACT
// ══════════════════════════════════════════════════════════════════════════════

// AdmissionArtifact is the admit card record of one trainee, created only
// after the selection is approved. Creation is get-or-create: a retried
// issue transition finds the existing record instead of creating a second.
type AdmissionArtifact struct {
	// ID is the internal identifier (UUID in string form).
	ID string

	// TraineeID links to the owning trainee; exactly one per trainee.
	TraineeID string

	// ArtifactRef points at the stored admit card artifact.
	ArtifactRef string

	// IssuedOn is when the admit card was created.
	IssuedOn time.Time
}

// Admission domain errors.
var (
	// ErrAdmissionNotFound - no admission artifact for the trainee.
	ErrAdmissionNotFound = fmt.Errorf("admission artifact not found: %w", shared.ErrNotFound)

	// ErrAdmissionExists - second admission artifact for one trainee.
	ErrAdmissionExists = fmt.Errorf("admission artifact already exists: %w", shared.ErrAlreadyProcessed)
)

// NewAdmissionArtifact creates an admit card record.
func NewAdmissionArtifact(id, traineeID string) (*AdmissionArtifact, error) {
	if id == "" || traineeID == "" {
		return nil, errors.New("admission id and trainee id are required")
	}

	return &AdmissionArtifact{
		ID:        id,
		TraineeID: traineeID,
		IssuedOn:  time.Now().UTC(),
	}, nil
}

// Clone creates a deep copy of the admission artifact.
func (a *AdmissionArtifact) Clone() *AdmissionArtifact {
	if a == nil {
		return nil
	}

	clone := *a
	return &clone
}

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATE RECORD
// ══════════════════════════════════════════════════════════════════════════════

// CertificateRecord holds the certificate of one trainee. The serial is
// pre-assigned when the selection is approved; the artifact itself is
// rendered only at verification time.
type CertificateRecord struct {
	// ID is the internal identifier (UUID in string form).
	ID string

	// TraineeID links to the owning trainee; exactly one per trainee.
	TraineeID string

	// Serial is the unique certificate serial (e.g. "CERT25/01").
	Serial sequence.Identifier

	// Verified is set when an administrator verifies the certificate.
	Verified bool

	// IssuedOn is set only at verification time. Zero until then.
	IssuedOn time.Time

	// ArtifactRef points at the rendered certificate artifact, set at
	// verification.
	ArtifactRef string

	// CreatedAt is when the record (with serial) was created.
	CreatedAt time.Time
}

// Certificate domain errors.
var (
	// ErrCertificateNotFound - no certificate record with the identifier.
	ErrCertificateNotFound = fmt.Errorf("certificate not found: %w", shared.ErrNotFound)

	// ErrCertificateExists - second certificate record for one trainee.
	ErrCertificateExists = fmt.Errorf("certificate already exists: %w", shared.ErrAlreadyExists)

	// ErrCertificateVerified - verification re-invoked after completion.
	ErrCertificateVerified = fmt.Errorf("certificate already verified: %w", shared.ErrAlreadyProcessed)
)

// NewCertificateRecord creates a certificate placeholder with its serial
// pre-assigned.
func NewCertificateRecord(id, traineeID string, serial sequence.Identifier) (*CertificateRecord, error) {
	if id == "" || traineeID == "" {
		return nil, errors.New("certificate id and trainee id are required")
	}
	if serial.IsEmpty() {
		return nil, errors.New("certificate serial is required")
	}

	return &CertificateRecord{
		ID:        id,
		TraineeID: traineeID,
		Serial:    serial,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkVerified records the verification and the issue timestamp.
func (c *CertificateRecord) MarkVerified(artifactRef string) error {
	if c.Verified {
		return ErrCertificateVerified
	}

	c.Verified = true
	c.IssuedOn = time.Now().UTC()
	c.ArtifactRef = artifactRef
	return nil
}

// Clone creates a deep copy of the certificate record.
func (c *CertificateRecord) Clone() *CertificateRecord {
	if c == nil {
		return nil
	}

	clone := *c
	return &clone
}
