package memory

import (
	"context"

	"github.com/stvt-hub/stvt-training-hub/internal/application/command"
)

// UnitOfWork implements command.UnitOfWork on the in-memory store. One
// transaction at a time holds the store lock for its whole extent, which
// both serializes per-trainee transitions and makes the snapshot/restore
// rollback safe. Coarser than the postgres implementation, same semantics.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit of work over the store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// RunInTx executes fn atomically. On error every mutation, including
// consumed sequence numbers, is rolled back.
func (u *UnitOfWork) RunInTx(ctx context.Context, traineeID string, fn func(s command.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.snapshot()

	stores := command.Stores{
		Trainees:   &traineeRepo{s: u.store, locked: true},
		Projects:   &projectRepo{s: u.store, locked: true},
		Enrollment: &enrollmentRepo{s: u.store, locked: true},
		Sequences:  &sequenceGen{s: u.store, locked: true},
	}

	if err := fn(stores); err != nil {
		u.store.restore(snap)
		return err
	}

	return nil
}
