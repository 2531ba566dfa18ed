package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT REPOSITORY IMPLEMENTATION
// Slot occupancy changes only through Reserve/Release, both single
// conditional UPDATE statements. The row lock taken by UPDATE makes the
// capacity check and the increment one atomic unit; the CHECK constraint
// is the backstop.
// ══════════════════════════════════════════════════════════════════════════════

// ProjectRepository implements project.Repository for PostgreSQL.
type ProjectRepository struct {
	db Querier
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(conn *Connection) *ProjectRepository {
	return &ProjectRepository{db: conn}
}

// withQuerier returns a copy of the repository bound to the given querier.
func (r *ProjectRepository) withQuerier(q Querier) *ProjectRepository {
	return &ProjectRepository{db: q}
}

// Create creates a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (
			id, title, branch, supervisor, duration_weeks, start_date,
			end_date, total_slots, taken_slots, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		string(p.Branch),
		p.Supervisor,
		p.DurationWeeks,
		p.StartDate,
		p.EndDate,
		p.TotalSlots,
		p.TakenSlots,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID returns a project by ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	query := selectProject + ` WHERE id = $1`
	return r.scanProject(r.db.QueryRow(ctx, query, id))
}

// Update updates administrative fields, keeping occupancy untouched.
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects SET
			title = $1,
			branch = $2,
			supervisor = $3,
			duration_weeks = $4,
			start_date = $5,
			end_date = $6,
			total_slots = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.Exec(ctx, query,
		p.Title,
		string(p.Branch),
		p.Supervisor,
		p.DurationWeeks,
		p.StartDate,
		p.EndDate,
		p.TotalSlots,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}

// ListAvailable returns projects of the branch with free capacity.
func (r *ProjectRepository) ListAvailable(ctx context.Context, branch trainee.Branch) ([]*project.Project, error) {
	query := selectProject + `
		WHERE branch = $1 AND taken_slots < total_slots
		ORDER BY start_date
	`

	rows, err := r.db.Query(ctx, query, string(branch))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []*project.Project
	for rows.Next() {
		p, err := scanProjectFields(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// Reserve atomically claims one slot. The conditional UPDATE succeeds for
// exactly one of any set of racing callers contending for the last slot;
// the losers match zero rows and get ErrProjectFull.
func (r *ProjectRepository) Reserve(ctx context.Context, projectID string) (*project.Project, error) {
	query := `
		UPDATE projects
		SET taken_slots = taken_slots + 1, updated_at = NOW()
		WHERE id = $1 AND taken_slots < total_slots
		RETURNING id, title, branch, supervisor, duration_weeks, start_date,
				  end_date, total_slots, taken_slots, created_at, updated_at
	`

	p, err := scanProjectFields(r.db.QueryRow(ctx, query, projectID))
	if err != nil {
		if IsNoRows(err) {
			return nil, r.fullOrMissing(ctx, projectID)
		}
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}

	return p, nil
}

// Release atomically returns one slot.
func (r *ProjectRepository) Release(ctx context.Context, projectID string) (*project.Project, error) {
	query := `
		UPDATE projects
		SET taken_slots = taken_slots - 1, updated_at = NOW()
		WHERE id = $1 AND taken_slots > 0
		RETURNING id, title, branch, supervisor, duration_weeks, start_date,
				  end_date, total_slots, taken_slots, created_at, updated_at
	`

	p, err := scanProjectFields(r.db.QueryRow(ctx, query, projectID))
	if err != nil {
		if IsNoRows(err) {
			if _, getErr := r.GetByID(ctx, projectID); getErr != nil {
				return nil, getErr
			}
			return nil, project.ErrNoSlotsTaken
		}
		return nil, fmt.Errorf("failed to release slot: %w", err)
	}

	return p, nil
}

// fullOrMissing distinguishes a full project from a missing one after a
// zero-row conditional update.
func (r *ProjectRepository) fullOrMissing(ctx context.Context, projectID string) error {
	if _, err := r.GetByID(ctx, projectID); err != nil {
		return err
	}
	return project.ErrProjectFull
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

const selectProject = `
	SELECT id, title, branch, supervisor, duration_weeks, start_date,
		   end_date, total_slots, taken_slots, created_at, updated_at
	FROM projects
`

func (r *ProjectRepository) scanProject(row pgx.Row) (*project.Project, error) {
	p, err := scanProjectFields(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return p, nil
}

func scanProjectFields(row pgx.Row) (*project.Project, error) {
	var (
		p      project.Project
		branch string
	)

	err := row.Scan(
		&p.ID,
		&p.Title,
		&branch,
		&p.Supervisor,
		&p.DurationWeeks,
		&p.StartDate,
		&p.EndDate,
		&p.TotalSlots,
		&p.TakenSlots,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Branch = trainee.Branch(branch)
	return &p, nil
}
