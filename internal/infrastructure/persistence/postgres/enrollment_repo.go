package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// The one-record-per-trainee invariants are UNIQUE constraints on trainee_id;
// a violated insert maps back to the corresponding domain error.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
type EnrollmentRepository struct {
	db Querier
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{db: conn}
}

// withQuerier returns a copy of the repository bound to the given querier.
func (r *EnrollmentRepository) withQuerier(q Querier) *EnrollmentRepository {
	return &EnrollmentRepository{db: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// Fee records
// ─────────────────────────────────────────────────────────────────────────────

// CreateFeeRecord creates a fee record.
func (r *EnrollmentRepository) CreateFeeRecord(ctx context.Context, f *enrollment.FeeRecord) error {
	query := `
		INSERT INTO fee_records (id, trainee_id, status, ticket_number, challan_ref, created_at, sent_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '0001-01-01 00:00:00+00'::timestamptz), $8)
	`

	_, err := r.db.Exec(ctx, query,
		f.ID,
		f.TraineeID,
		string(f.Status),
		f.TicketNumber,
		f.ChallanRef,
		f.CreatedAt,
		f.SentAt,
		f.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return enrollment.ErrFeeRecordExists
		}
		return fmt.Errorf("failed to create fee record: %w", err)
	}

	return nil
}

// GetFeeRecordByTrainee returns the fee record of a trainee.
func (r *EnrollmentRepository) GetFeeRecordByTrainee(ctx context.Context, traineeID string) (*enrollment.FeeRecord, error) {
	query := selectFeeRecord + ` WHERE trainee_id = $1`

	f, err := scanFeeRecord(r.db.QueryRow(ctx, query, traineeID))
	if err != nil {
		if IsNoRows(err) {
			return nil, enrollment.ErrFeeRecordNotFound
		}
		return nil, fmt.Errorf("failed to get fee record: %w", err)
	}
	return f, nil
}

// UpdateFeeRecord updates a fee record.
func (r *EnrollmentRepository) UpdateFeeRecord(ctx context.Context, f *enrollment.FeeRecord) error {
	query := `
		UPDATE fee_records SET
			status = $1,
			ticket_number = $2,
			challan_ref = $3,
			sent_at = NULLIF($4, '0001-01-01 00:00:00+00'::timestamptz),
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query,
		string(f.Status),
		f.TicketNumber,
		f.ChallanRef,
		f.SentAt,
		time.Now().UTC(),
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fee record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return enrollment.ErrFeeRecordNotFound
	}

	return nil
}

// ListFeeRecordsSentBefore returns records still in Sent state whose challan
// went out before the cutoff.
func (r *EnrollmentRepository) ListFeeRecordsSentBefore(ctx context.Context, cutoff time.Time) ([]*enrollment.FeeRecord, error) {
	query := selectFeeRecord + `
		WHERE status = $1 AND sent_at < $2
		ORDER BY sent_at
	`

	rows, err := r.db.Query(ctx, query, string(enrollment.FeeStatusSent), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee records: %w", err)
	}
	defer rows.Close()

	var out []*enrollment.FeeRecord
	for rows.Next() {
		f, err := scanFeeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fee record row: %w", err)
		}
		out = append(out, f)
	}

	return out, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Selections
// ─────────────────────────────────────────────────────────────────────────────

// CreateSelection creates a selection.
func (r *EnrollmentRepository) CreateSelection(ctx context.Context, sel *enrollment.Selection) error {
	query := `
		INSERT INTO selections (id, trainee_id, project_id, status, selected_on)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		sel.ID,
		sel.TraineeID,
		sel.ProjectID,
		string(sel.Status),
		sel.SelectedOn,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return enrollment.ErrSelectionExists
		}
		return fmt.Errorf("failed to create selection: %w", err)
	}

	return nil
}

// GetSelectionByID returns a selection by ID.
func (r *EnrollmentRepository) GetSelectionByID(ctx context.Context, id string) (*enrollment.Selection, error) {
	query := selectSelection + ` WHERE id = $1`
	return r.getSelection(ctx, query, id)
}

// GetSelectionByTrainee returns the selection of a trainee.
func (r *EnrollmentRepository) GetSelectionByTrainee(ctx context.Context, traineeID string) (*enrollment.Selection, error) {
	query := selectSelection + ` WHERE trainee_id = $1`
	return r.getSelection(ctx, query, traineeID)
}

func (r *EnrollmentRepository) getSelection(ctx context.Context, query, arg string) (*enrollment.Selection, error) {
	sel, err := scanSelection(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if IsNoRows(err) {
			return nil, enrollment.ErrSelectionNotFound
		}
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}
	return sel, nil
}

// UpdateSelection updates a selection.
func (r *EnrollmentRepository) UpdateSelection(ctx context.Context, sel *enrollment.Selection) error {
	query := `UPDATE selections SET status = $1 WHERE id = $2`

	result, err := r.db.Exec(ctx, query, string(sel.Status), sel.ID)
	if err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return enrollment.ErrSelectionNotFound
	}

	return nil
}

// DeleteSelection deletes a selection.
func (r *EnrollmentRepository) DeleteSelection(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM selections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return enrollment.ErrSelectionNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Admission artifacts
// ─────────────────────────────────────────────────────────────────────────────

// CreateAdmission creates an admission artifact record.
func (r *EnrollmentRepository) CreateAdmission(ctx context.Context, a *enrollment.AdmissionArtifact) error {
	query := `
		INSERT INTO admissions (id, trainee_id, artifact_ref, issued_on)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, a.ID, a.TraineeID, a.ArtifactRef, a.IssuedOn)
	if err != nil {
		if IsUniqueViolation(err) {
			return enrollment.ErrAdmissionExists
		}
		return fmt.Errorf("failed to create admission: %w", err)
	}

	return nil
}

// GetAdmissionByTrainee returns the admission artifact of a trainee.
func (r *EnrollmentRepository) GetAdmissionByTrainee(ctx context.Context, traineeID string) (*enrollment.AdmissionArtifact, error) {
	query := `
		SELECT id, trainee_id, artifact_ref, issued_on
		FROM admissions
		WHERE trainee_id = $1
	`

	var a enrollment.AdmissionArtifact
	err := r.db.QueryRow(ctx, query, traineeID).Scan(&a.ID, &a.TraineeID, &a.ArtifactRef, &a.IssuedOn)
	if err != nil {
		if IsNoRows(err) {
			return nil, enrollment.ErrAdmissionNotFound
		}
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}

	return &a, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Certificates
// ─────────────────────────────────────────────────────────────────────────────

// CreateCertificate creates a certificate record.
func (r *EnrollmentRepository) CreateCertificate(ctx context.Context, c *enrollment.CertificateRecord) error {
	query := `
		INSERT INTO certificates (id, trainee_id, serial, verified, issued_on, artifact_ref, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '0001-01-01 00:00:00+00'::timestamptz), $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.TraineeID,
		c.Serial.String(),
		c.Verified,
		c.IssuedOn,
		c.ArtifactRef,
		c.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return enrollment.ErrCertificateExists
		}
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	return nil
}

// GetCertificateByID returns a certificate by ID.
func (r *EnrollmentRepository) GetCertificateByID(ctx context.Context, id string) (*enrollment.CertificateRecord, error) {
	query := selectCertificate + ` WHERE id = $1`
	return r.getCertificate(ctx, query, id)
}

// GetCertificateByTrainee returns the certificate of a trainee.
func (r *EnrollmentRepository) GetCertificateByTrainee(ctx context.Context, traineeID string) (*enrollment.CertificateRecord, error) {
	query := selectCertificate + ` WHERE trainee_id = $1`
	return r.getCertificate(ctx, query, traineeID)
}

func (r *EnrollmentRepository) getCertificate(ctx context.Context, query, arg string) (*enrollment.CertificateRecord, error) {
	c, err := scanCertificate(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if IsNoRows(err) {
			return nil, enrollment.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return c, nil
}

// UpdateCertificate updates a certificate record.
func (r *EnrollmentRepository) UpdateCertificate(ctx context.Context, c *enrollment.CertificateRecord) error {
	query := `
		UPDATE certificates SET
			verified = $1,
			issued_on = NULLIF($2, '0001-01-01 00:00:00+00'::timestamptz),
			artifact_ref = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query, c.Verified, c.IssuedOn, c.ArtifactRef, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update certificate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return enrollment.ErrCertificateNotFound
	}

	return nil
}

// ListVerifiedCertificates returns all verified certificates.
func (r *EnrollmentRepository) ListVerifiedCertificates(ctx context.Context) ([]*enrollment.CertificateRecord, error) {
	query := selectCertificate + ` WHERE verified ORDER BY issued_on`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var out []*enrollment.CertificateRecord
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate row: %w", err)
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

const selectFeeRecord = `
	SELECT id, trainee_id, status, ticket_number, challan_ref, created_at,
		   COALESCE(sent_at, '0001-01-01 00:00:00+00'::timestamptz), updated_at
	FROM fee_records
`

func scanFeeRecord(row pgx.Row) (*enrollment.FeeRecord, error) {
	var (
		f      enrollment.FeeRecord
		status string
	)

	err := row.Scan(
		&f.ID,
		&f.TraineeID,
		&status,
		&f.TicketNumber,
		&f.ChallanRef,
		&f.CreatedAt,
		&f.SentAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Status = enrollment.FeeStatus(status)
	return &f, nil
}

const selectSelection = `
	SELECT id, trainee_id, project_id, status, selected_on
	FROM selections
`

func scanSelection(row pgx.Row) (*enrollment.Selection, error) {
	var (
		sel    enrollment.Selection
		status string
	)

	err := row.Scan(&sel.ID, &sel.TraineeID, &sel.ProjectID, &status, &sel.SelectedOn)
	if err != nil {
		return nil, err
	}

	sel.Status = enrollment.SelectionStatus(status)
	return &sel, nil
}

const selectCertificate = `
	SELECT id, trainee_id, serial, verified,
		   COALESCE(issued_on, '0001-01-01 00:00:00+00'::timestamptz), artifact_ref, created_at
	FROM certificates
`

func scanCertificate(row pgx.Row) (*enrollment.CertificateRecord, error) {
	var (
		c      enrollment.CertificateRecord
		serial string
	)

	err := row.Scan(
		&c.ID,
		&c.TraineeID,
		&serial,
		&c.Verified,
		&c.IssuedOn,
		&c.ArtifactRef,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Serial = sequence.Identifier(serial)
	return &c, nil
}
