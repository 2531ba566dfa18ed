package memory

import (
	"context"
	"strings"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// traineeRepo implements trainee.Repository on the in-memory store.
// With locked set the caller (the transaction) already holds the store lock.
type traineeRepo struct {
	s      *Store
	locked bool
}

func (r *traineeRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// Create persists a trainee, enforcing email uniqueness.
func (r *traineeRepo) Create(ctx context.Context, t *trainee.Trainee) error {
	defer r.lock()()

	if _, exists := r.s.trainees[t.ID]; exists {
		return trainee.ErrTraineeAlreadyExists
	}
	email := strings.ToLower(t.Email)
	if _, exists := r.s.traineeByEmail[email]; exists {
		return trainee.ErrTraineeAlreadyExists
	}

	r.s.trainees[t.ID] = t.Clone()
	r.s.traineeByEmail[email] = t.ID
	return nil
}

// GetByID returns a trainee by internal ID.
func (r *traineeRepo) GetByID(ctx context.Context, id string) (*trainee.Trainee, error) {
	defer r.lock()()

	t, ok := r.s.trainees[id]
	if !ok {
		return nil, trainee.ErrTraineeNotFound
	}
	return t.Clone(), nil
}

// GetByEmail returns a trainee by email.
func (r *traineeRepo) GetByEmail(ctx context.Context, email string) (*trainee.Trainee, error) {
	defer r.lock()()

	id, ok := r.s.traineeByEmail[strings.ToLower(email)]
	if !ok {
		return nil, trainee.ErrTraineeNotFound
	}
	return r.s.trainees[id].Clone(), nil
}

// Update persists trainee mutations.
func (r *traineeRepo) Update(ctx context.Context, t *trainee.Trainee) error {
	defer r.lock()()

	if _, ok := r.s.trainees[t.ID]; !ok {
		return trainee.ErrTraineeNotFound
	}
	r.s.trainees[t.ID] = t.Clone()
	return nil
}

// ListByBranch returns trainees of a branch.
func (r *traineeRepo) ListByBranch(ctx context.Context, branch trainee.Branch, selectedOnly bool) ([]*trainee.Trainee, error) {
	defer r.lock()()

	var out []*trainee.Trainee
	for _, t := range r.s.trainees {
		if t.Branch != branch {
			continue
		}
		if selectedOnly && !t.Selected {
			continue
		}
		out = append(out, t.Clone())
	}
	return out, nil
}
