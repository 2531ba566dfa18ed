package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRAINEE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TraineeRepository implements trainee.Repository for PostgreSQL.
type TraineeRepository struct {
	db Querier
}

// NewTraineeRepository creates a new TraineeRepository.
func NewTraineeRepository(conn *Connection) *TraineeRepository {
	return &TraineeRepository{db: conn}
}

// withQuerier returns a copy of the repository bound to the given querier,
// typically a transaction.
func (r *TraineeRepository) withQuerier(q Querier) *TraineeRepository {
	return &TraineeRepository{db: q}
}

// Create creates a new trainee.
func (r *TraineeRepository) Create(ctx context.Context, t *trainee.Trainee) error {
	query := `
		INSERT INTO trainees (
			id, public_id, name, father_name, email, password_hash, college,
			course, branch, address, mobile, photo_ref, lor_ref, selected,
			payment_verified, created_at, updated_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.PublicID.String(),
		t.Name,
		t.FatherName,
		t.Email,
		t.PasswordHash,
		t.College,
		t.Course,
		string(t.Branch),
		t.Address,
		string(t.Mobile),
		t.PhotoRef,
		t.LORRef,
		t.Selected,
		t.PaymentVerified,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return trainee.ErrTraineeAlreadyExists
		}
		return fmt.Errorf("failed to create trainee: %w", err)
	}

	return nil
}

// GetByID returns a trainee by internal ID.
func (r *TraineeRepository) GetByID(ctx context.Context, id string) (*trainee.Trainee, error) {
	query := selectTrainee + ` WHERE id = $1`
	return r.scanTrainee(r.db.QueryRow(ctx, query, id))
}

// GetByEmail returns a trainee by email.
func (r *TraineeRepository) GetByEmail(ctx context.Context, email string) (*trainee.Trainee, error) {
	query := selectTrainee + ` WHERE LOWER(email) = LOWER($1)`
	return r.scanTrainee(r.db.QueryRow(ctx, query, email))
}

// Update updates a trainee.
func (r *TraineeRepository) Update(ctx context.Context, t *trainee.Trainee) error {
	query := `
		UPDATE trainees SET
			public_id = NULLIF($1, ''),
			name = $2,
			father_name = $3,
			email = $4,
			password_hash = $5,
			college = $6,
			course = $7,
			branch = $8,
			address = $9,
			mobile = $10,
			photo_ref = $11,
			lor_ref = $12,
			selected = $13,
			payment_verified = $14,
			updated_at = $15
		WHERE id = $16
	`

	result, err := r.db.Exec(ctx, query,
		t.PublicID.String(),
		t.Name,
		t.FatherName,
		t.Email,
		t.PasswordHash,
		t.College,
		t.Course,
		string(t.Branch),
		t.Address,
		string(t.Mobile),
		t.PhotoRef,
		t.LORRef,
		t.Selected,
		t.PaymentVerified,
		time.Now().UTC(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trainee: %w", err)
	}

	if result.RowsAffected() == 0 {
		return trainee.ErrTraineeNotFound
	}

	return nil
}

// ListByBranch returns trainees of a branch, optionally selected-only.
func (r *TraineeRepository) ListByBranch(ctx context.Context, branch trainee.Branch, selectedOnly bool) ([]*trainee.Trainee, error) {
	query := selectTrainee + ` WHERE branch = $1`
	if selectedOnly {
		query += ` AND selected`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, string(branch))
	if err != nil {
		return nil, fmt.Errorf("failed to list trainees: %w", err)
	}
	defer rows.Close()

	var out []*trainee.Trainee
	for rows.Next() {
		t, err := r.scanTraineeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

const selectTrainee = `
	SELECT id, COALESCE(public_id, ''), name, father_name, email, password_hash,
		   college, course, branch, address, mobile, photo_ref, lor_ref,
		   selected, payment_verified, created_at, updated_at
	FROM trainees
`

func (r *TraineeRepository) scanTrainee(row pgx.Row) (*trainee.Trainee, error) {
	t, err := scanTraineeFields(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, trainee.ErrTraineeNotFound
		}
		return nil, fmt.Errorf("failed to scan trainee: %w", err)
	}
	return t, nil
}

func (r *TraineeRepository) scanTraineeRow(rows pgx.Rows) (*trainee.Trainee, error) {
	t, err := scanTraineeFields(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan trainee row: %w", err)
	}
	return t, nil
}

func scanTraineeFields(row pgx.Row) (*trainee.Trainee, error) {
	var (
		t        trainee.Trainee
		publicID string
		branch   string
		mobile   string
	)

	err := row.Scan(
		&t.ID,
		&publicID,
		&t.Name,
		&t.FatherName,
		&t.Email,
		&t.PasswordHash,
		&t.College,
		&t.Course,
		&branch,
		&t.Address,
		&mobile,
		&t.PhotoRef,
		&t.LORRef,
		&t.Selected,
		&t.PaymentVerified,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.PublicID = sequence.Identifier(publicID)
	t.Branch = trainee.Branch(branch)
	t.Mobile = trainee.Mobile(mobile)
	return &t, nil
}
