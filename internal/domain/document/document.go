// Package document contains the artifact store contract and the named view
// models handed to the rendering collaborator. Document layout itself lives
// outside the workflow core; the workflow only decides when an artifact is
// produced and records the returned reference.
package document

import (
	"context"
	"errors"
	"time"
)

// ArtifactKind identifies the document being stored.
type ArtifactKind string

const (
	// KindChallan - the fee challan.
	KindChallan ArtifactKind = "challan"

	// KindAdmitCard - the admission slip / ID card.
	KindAdmitCard ArtifactKind = "admit_card"

	// KindCertificate - the completion certificate.
	KindCertificate ArtifactKind = "certificate"
)

// IsValid checks that the artifact kind is known.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case KindChallan, KindAdmitCard, KindCertificate:
		return true
	default:
		return false
	}
}

// String returns the string representation of the artifact kind.
func (k ArtifactKind) String() string {
	return string(k)
}

// ArtifactRef is a retrievable reference to a stored artifact.
type ArtifactRef string

// String returns the string form of the reference.
func (r ArtifactRef) String() string {
	return string(r)
}

// IsEmpty reports whether the reference is unset.
func (r ArtifactRef) IsEmpty() bool {
	return r == ""
}

// ErrStoreFailed - the artifact could not be persisted. Logged at the
// dispatch boundary; never rolls back a committed transition.
var ErrStoreFailed = errors.New("document store failed")

// Store persists rendered artifacts. Per (owner, kind) the store is
// idempotent when getOrCreate is set (admit cards must never duplicate);
// challans and certificates may be overwritten on re-generation.
type Store interface {
	// Ref returns the reference an artifact of this owner and kind is
	// stored under. Pure addressing: no I/O, and the artifact may not
	// exist yet. Transitions record the reference at commit time; the
	// bytes are rendered and stored after commit.
	Ref(ownerID string, kind ArtifactKind) ArtifactRef

	// Put stores bytes for the owner and kind and returns the reference.
	// With getOrCreate set, an existing artifact is returned untouched.
	Put(ctx context.Context, ownerID string, kind ArtifactKind, data []byte, getOrCreate bool) (ArtifactRef, error)

	// Get returns the stored artifact bytes, or ErrStoreFailed wrapping
	// the lookup failure.
	Get(ctx context.Context, ref ArtifactRef) ([]byte, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW MODELS
// ══════════════════════════════════════════════════════════════════════════════

// Explicit named view models replace the original system's habit of faking
// template attributes ad hoc. The renderer receives exactly these.

// ChallanView is the data rendered onto a fee challan.
type ChallanView struct {
	TraineeName string
	PublicID    string
	Branch      string
	College     string
	Amount      int
	Date        time.Time
}

// AdmitCardView is the data rendered onto an admit card.
type AdmitCardView struct {
	TraineeName  string
	FatherName   string
	PublicID     string
	Branch       string
	College      string
	Address      string
	Mobile       string
	PhotoRef     string
	ProjectTitle string
	Supervisor   string
	ValidFrom    time.Time
	ValidTo      time.Time
}

// CertificateView is the data rendered onto a certificate.
type CertificateView struct {
	TraineeName   string
	FatherName    string
	PublicID      string
	Serial        string
	ProjectTitle  string
	Supervisor    string
	Branch        string
	DurationWeeks int
	StartDate     time.Time
	EndDate       time.Time
	IssuedOn      time.Time
}
