package enrollment

import (
	"errors"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SELECTION
// ══════════════════════════════════════════════════════════════════════════════

// SelectionStatus is the approval status of a project selection.
type SelectionStatus string

const (
	// SelectionPending - slot reserved, awaiting administrator approval.
	SelectionPending SelectionStatus = "pending"

	// SelectionApproved - administrator approved the selection.
	SelectionApproved SelectionStatus = "approved"
)

// IsValid checks that the status is known.
func (s SelectionStatus) IsValid() bool {
	return s == SelectionPending || s == SelectionApproved
}

// String returns the string representation of the status.
func (s SelectionStatus) String() string {
	return string(s)
}

// Selection links one trainee to exactly one project. A trainee holds at
// most one selection ever; a second request is rejected regardless of target.
type Selection struct {
	// ID is the internal identifier (UUID in string form).
	ID string

	// TraineeID links to the owning trainee.
	TraineeID string

	// ProjectID references the reserved allocation target.
	ProjectID string

	// Status is the approval status.
	Status SelectionStatus

	// SelectedOn is when the slot was reserved.
	SelectedOn time.Time

	// UpdatedAt is the time of the last mutation.
	UpdatedAt time.Time
}

// Selection domain errors.
var (
	// ErrSelectionNotFound - no selection with the given identifier.
	ErrSelectionNotFound = fmt.Errorf("selection not found: %w", shared.ErrNotFound)

	// ErrSelectionExists - trainee already holds a selection, pending or
	// approved; independent of the target project.
	ErrSelectionExists = fmt.Errorf("trainee already has a selection: %w", shared.ErrAlreadySelected)

	// ErrSelectionNotPending - approval re-invoked or out of order.
	ErrSelectionNotPending = errors.New("selection is not pending")

	// ErrSelectionNotApproved - admission requested before approval.
	ErrSelectionNotApproved = errors.New("selection is not approved")
)

// NewSelection creates a pending selection for a reserved slot.
func NewSelection(id, traineeID, projectID string) (*Selection, error) {
	if id == "" || traineeID == "" || projectID == "" {
		return nil, errors.New("selection id, trainee id and project id are required")
	}

	now := time.Now().UTC()
	return &Selection{
		ID:         id,
		TraineeID:  traineeID,
		ProjectID:  projectID,
		Status:     SelectionPending,
		SelectedOn: now,
		UpdatedAt:  now,
	}, nil
}

// Approve marks the selection approved: Pending -> Approved.
func (s *Selection) Approve() error {
	if s.Status != SelectionPending {
		return ErrSelectionNotPending
	}

	s.Status = SelectionApproved
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IsApproved reports whether the selection has been approved.
func (s *Selection) IsApproved() bool {
	return s.Status == SelectionApproved
}

// Clone creates a deep copy of the selection.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}

	clone := *s
	return &clone
}
