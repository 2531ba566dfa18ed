package memory

import (
	"context"
	"sort"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// projectRepo implements project.Repository on the in-memory store.
type projectRepo struct {
	s      *Store
	locked bool
}

func (r *projectRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// Create persists a project.
func (r *projectRepo) Create(ctx context.Context, p *project.Project) error {
	defer r.lock()()

	r.s.projects[p.ID] = p.Clone()
	return nil
}

// GetByID returns a project by ID.
func (r *projectRepo) GetByID(ctx context.Context, id string) (*project.Project, error) {
	defer r.lock()()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	return p.Clone(), nil
}

// Update persists administrative edits, keeping occupancy untouched.
func (r *projectRepo) Update(ctx context.Context, p *project.Project) error {
	defer r.lock()()

	existing, ok := r.s.projects[p.ID]
	if !ok {
		return project.ErrProjectNotFound
	}

	updated := p.Clone()
	updated.TakenSlots = existing.TakenSlots
	r.s.projects[p.ID] = updated
	return nil
}

// ListAvailable returns projects of the branch with free capacity.
func (r *projectRepo) ListAvailable(ctx context.Context, branch trainee.Branch) ([]*project.Project, error) {
	defer r.lock()()

	var out []*project.Project
	for _, p := range r.s.projects {
		if p.Branch == branch && p.HasCapacity() {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

// Reserve claims one slot. The check and the increment happen under the
// store lock as one unit, so racing callers for the last slot see exactly
// one success.
func (r *projectRepo) Reserve(ctx context.Context, projectID string) (*project.Project, error) {
	defer r.lock()()

	p, ok := r.s.projects[projectID]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	if p.TakenSlots >= p.TotalSlots {
		return nil, project.ErrProjectFull
	}

	p.TakenSlots++
	return p.Clone(), nil
}

// Release returns one slot.
func (r *projectRepo) Release(ctx context.Context, projectID string) (*project.Project, error) {
	defer r.lock()()

	p, ok := r.s.projects[projectID]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	if p.TakenSlots <= 0 {
		return nil, project.ErrNoSlotsTaken
	}

	p.TakenSlots--
	return p.Clone(), nil
}
