// Package enrollment contains the per-trainee workflow records that hang off
// the trainee aggregate: the fee record, the project selection, the admission
// artifact, and the certificate record. Each is one-to-one with a trainee;
// uniqueness is enforced by the persistence layer.
package enrollment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEE RECORD
// ══════════════════════════════════════════════════════════════════════════════

// FeeStatus is the processing status of a fee challan.
type FeeStatus string

const (
	// FeeStatusPending - record created, challan not yet sent.
	FeeStatusPending FeeStatus = "pending"

	// FeeStatusSent - challan generated and dispatched to the trainee.
	FeeStatusSent FeeStatus = "sent"

	// FeeStatusSubmitted - trainee submitted a payment ticket reference.
	FeeStatusSubmitted FeeStatus = "submitted"

	// FeeStatusVerified - administrator accepted the payment.
	FeeStatusVerified FeeStatus = "verified"
)

// IsValid checks that the status is known.
func (s FeeStatus) IsValid() bool {
	switch s {
	case FeeStatusPending, FeeStatusSent, FeeStatusSubmitted, FeeStatusVerified:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s FeeStatus) String() string {
	return string(s)
}

// FeeRecord tracks the fee challan of one trainee. Created lazily the first
// time the trainee enters the selected state.
type FeeRecord struct {
	// ID is the internal identifier (UUID in string form).
	ID string

	// TraineeID links to the owning trainee; exactly one record per trainee.
	TraineeID string

	// Status is the current processing status.
	Status FeeStatus

	// TicketNumber is the payment ticket reference submitted by the
	// trainee. Empty until submission.
	TicketNumber string

	// ChallanRef points at the stored challan artifact once rendered.
	ChallanRef string

	// CreatedAt is when the record was created.
	CreatedAt time.Time

	// SentAt is when the challan was dispatched. Zero until sent.
	SentAt time.Time

	// UpdatedAt is the time of the last mutation.
	UpdatedAt time.Time
}

// Fee domain errors.
var (
	// ErrFeeRecordNotFound - no fee record for the trainee.
	ErrFeeRecordNotFound = fmt.Errorf("fee record not found: %w", shared.ErrNotFound)

	// ErrFeeRecordExists - second fee record for one trainee.
	ErrFeeRecordExists = fmt.Errorf("fee record already exists: %w", shared.ErrAlreadyExists)

	// ErrFeeNotPending - send invoked after the challan already went out.
	ErrFeeNotPending = errors.New("fee record is not pending")

	// ErrFeeNotSent - ticket submission or verification before the challan
	// was dispatched.
	ErrFeeNotSent = errors.New("fee record is not in sent state")

	// ErrFeeAlreadyVerified - verification re-invoked after completion.
	ErrFeeAlreadyVerified = fmt.Errorf("fee already verified: %w", shared.ErrAlreadyProcessed)

	// ErrEmptyTicketNumber - submitted ticket reference is blank.
	ErrEmptyTicketNumber = errors.New("ticket number cannot be empty")
)

// NewFeeRecord creates a pending fee record for a trainee.
func NewFeeRecord(id, traineeID string) (*FeeRecord, error) {
	if id == "" || traineeID == "" {
		return nil, errors.New("fee record id and trainee id are required")
	}

	now := time.Now().UTC()
	return &FeeRecord{
		ID:        id,
		TraineeID: traineeID,
		Status:    FeeStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkSent records the challan dispatch: Pending -> Sent. The challanRef is
// the stored artifact reference returned by the document store.
func (f *FeeRecord) MarkSent(challanRef string) error {
	if f.Status != FeeStatusPending {
		return ErrFeeNotPending
	}

	now := time.Now().UTC()
	f.Status = FeeStatusSent
	f.ChallanRef = challanRef
	f.SentAt = now
	f.UpdatedAt = now
	return nil
}

// SubmitTicket records the trainee's payment ticket: Sent -> Submitted.
func (f *FeeRecord) SubmitTicket(ticketNumber string) error {
	if f.Status != FeeStatusSent {
		return ErrFeeNotSent
	}

	ticketNumber = strings.TrimSpace(ticketNumber)
	if ticketNumber == "" {
		return ErrEmptyTicketNumber
	}

	f.Status = FeeStatusSubmitted
	f.TicketNumber = ticketNumber
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkVerified records the payment confirmation: Sent or Submitted ->
// Verified. A trainee may pay without submitting the ticket first, so both
// precursor states are accepted.
func (f *FeeRecord) MarkVerified() error {
	switch f.Status {
	case FeeStatusSent, FeeStatusSubmitted:
		// legal precursors
	case FeeStatusVerified:
		return ErrFeeAlreadyVerified
	default:
		return ErrFeeNotSent
	}

	f.Status = FeeStatusVerified
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone creates a deep copy of the fee record.
func (f *FeeRecord) Clone() *FeeRecord {
	if f == nil {
		return nil
	}

	clone := *f
	return &clone
}
