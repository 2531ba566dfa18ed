package trainee

import (
	"context"
)

// Repository defines persistence operations for trainees. Implementations
// live in the infrastructure layer; the workflow only mutates trainees
// through lifecycle transitions running inside a transactional unit.
type Repository interface {
	// Create persists a newly registered trainee.
	// Returns ErrTraineeAlreadyExists on an email collision.
	Create(ctx context.Context, t *Trainee) error

	// GetByID returns a trainee by internal ID, or ErrTraineeNotFound.
	GetByID(ctx context.Context, id string) (*Trainee, error)

	// GetByEmail returns a trainee by email, or ErrTraineeNotFound.
	GetByEmail(ctx context.Context, email string) (*Trainee, error)

	// Update persists trainee mutations, or ErrTraineeNotFound.
	Update(ctx context.Context, t *Trainee) error

	// ListByBranch returns trainees of a branch, selected-only when
	// selectedOnly is set. Used by administrative list screens.
	ListByBranch(ctx context.Context, branch Branch, selectedOnly bool) ([]*Trainee, error)
}
