package project

import (
	"context"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// Repository defines persistence operations for projects, including the slot
// allocator. Reserve and Release are the only ways occupancy changes.
type Repository interface {
	// Create persists a new project.
	Create(ctx context.Context, p *Project) error

	// GetByID returns a project by ID, or ErrProjectNotFound.
	GetByID(ctx context.Context, id string) (*Project, error)

	// Update persists administrative edits (title, window, capacity).
	// Occupancy is not writable through Update.
	Update(ctx context.Context, p *Project) error

	// ListAvailable returns projects of the branch with at least one open
	// slot, ordered by start date.
	ListAvailable(ctx context.Context, branch trainee.Branch) ([]*Project, error)

	// Reserve atomically claims one slot of the target project: it reads
	// occupancy and increments it as a single atomic unit, returning the
	// updated project. When all slots are taken it returns ErrProjectFull
	// without any mutation; two racing requests for the last slot yield
	// exactly one success and one ErrProjectFull.
	Reserve(ctx context.Context, projectID string) (*Project, error)

	// Release atomically returns one slot; administrative correction only.
	// Returns ErrNoSlotsTaken when occupancy is already zero.
	Release(ctx context.Context, projectID string) (*Project, error)
}
