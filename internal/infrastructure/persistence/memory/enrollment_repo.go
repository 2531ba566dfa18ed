package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
)

// enrollmentRepo implements enrollment.Repository on the in-memory store.
// The one-record-per-trainee constraints live in the index maps.
type enrollmentRepo struct {
	s      *Store
	locked bool
}

func (r *enrollmentRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// ─────────────────────────────────────────────────────────────────────────────
// Fee records
// ─────────────────────────────────────────────────────────────────────────────

func (r *enrollmentRepo) CreateFeeRecord(ctx context.Context, f *enrollment.FeeRecord) error {
	defer r.lock()()

	if _, exists := r.s.feeByTrainee[f.TraineeID]; exists {
		return enrollment.ErrFeeRecordExists
	}
	r.s.feeByTrainee[f.TraineeID] = f.Clone()
	r.s.feeIDIndex[f.ID] = f.TraineeID
	return nil
}

func (r *enrollmentRepo) GetFeeRecordByTrainee(ctx context.Context, traineeID string) (*enrollment.FeeRecord, error) {
	defer r.lock()()

	f, ok := r.s.feeByTrainee[traineeID]
	if !ok {
		return nil, enrollment.ErrFeeRecordNotFound
	}
	return f.Clone(), nil
}

func (r *enrollmentRepo) UpdateFeeRecord(ctx context.Context, f *enrollment.FeeRecord) error {
	defer r.lock()()

	traineeID, ok := r.s.feeIDIndex[f.ID]
	if !ok {
		return enrollment.ErrFeeRecordNotFound
	}
	r.s.feeByTrainee[traineeID] = f.Clone()
	return nil
}

func (r *enrollmentRepo) ListFeeRecordsSentBefore(ctx context.Context, cutoff time.Time) ([]*enrollment.FeeRecord, error) {
	defer r.lock()()

	var out []*enrollment.FeeRecord
	for _, f := range r.s.feeByTrainee {
		if f.Status == enrollment.FeeStatusSent && f.SentAt.Before(cutoff) {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Selections
// ─────────────────────────────────────────────────────────────────────────────

func (r *enrollmentRepo) CreateSelection(ctx context.Context, sel *enrollment.Selection) error {
	defer r.lock()()

	if _, exists := r.s.selByTrainee[sel.TraineeID]; exists {
		return enrollment.ErrSelectionExists
	}
	r.s.selections[sel.ID] = sel.Clone()
	r.s.selByTrainee[sel.TraineeID] = sel.ID
	return nil
}

func (r *enrollmentRepo) GetSelectionByID(ctx context.Context, id string) (*enrollment.Selection, error) {
	defer r.lock()()

	sel, ok := r.s.selections[id]
	if !ok {
		return nil, enrollment.ErrSelectionNotFound
	}
	return sel.Clone(), nil
}

func (r *enrollmentRepo) GetSelectionByTrainee(ctx context.Context, traineeID string) (*enrollment.Selection, error) {
	defer r.lock()()

	id, ok := r.s.selByTrainee[traineeID]
	if !ok {
		return nil, enrollment.ErrSelectionNotFound
	}
	return r.s.selections[id].Clone(), nil
}

func (r *enrollmentRepo) UpdateSelection(ctx context.Context, sel *enrollment.Selection) error {
	defer r.lock()()

	if _, ok := r.s.selections[sel.ID]; !ok {
		return enrollment.ErrSelectionNotFound
	}
	r.s.selections[sel.ID] = sel.Clone()
	return nil
}

func (r *enrollmentRepo) DeleteSelection(ctx context.Context, id string) error {
	defer r.lock()()

	sel, ok := r.s.selections[id]
	if !ok {
		return enrollment.ErrSelectionNotFound
	}
	delete(r.s.selections, id)
	delete(r.s.selByTrainee, sel.TraineeID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Admission artifacts
// ─────────────────────────────────────────────────────────────────────────────

func (r *enrollmentRepo) CreateAdmission(ctx context.Context, a *enrollment.AdmissionArtifact) error {
	defer r.lock()()

	if _, exists := r.s.admByTrainee[a.TraineeID]; exists {
		return enrollment.ErrAdmissionExists
	}
	r.s.admByTrainee[a.TraineeID] = a.Clone()
	return nil
}

func (r *enrollmentRepo) GetAdmissionByTrainee(ctx context.Context, traineeID string) (*enrollment.AdmissionArtifact, error) {
	defer r.lock()()

	a, ok := r.s.admByTrainee[traineeID]
	if !ok {
		return nil, enrollment.ErrAdmissionNotFound
	}
	return a.Clone(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Certificates
// ─────────────────────────────────────────────────────────────────────────────

func (r *enrollmentRepo) CreateCertificate(ctx context.Context, c *enrollment.CertificateRecord) error {
	defer r.lock()()

	if _, exists := r.s.certByTrainee[c.TraineeID]; exists {
		return enrollment.ErrCertificateExists
	}
	r.s.certByTrainee[c.TraineeID] = c.Clone()
	r.s.certIDIndex[c.ID] = c.TraineeID
	return nil
}

func (r *enrollmentRepo) GetCertificateByID(ctx context.Context, id string) (*enrollment.CertificateRecord, error) {
	defer r.lock()()

	traineeID, ok := r.s.certIDIndex[id]
	if !ok {
		return nil, enrollment.ErrCertificateNotFound
	}
	return r.s.certByTrainee[traineeID].Clone(), nil
}

func (r *enrollmentRepo) GetCertificateByTrainee(ctx context.Context, traineeID string) (*enrollment.CertificateRecord, error) {
	defer r.lock()()

	c, ok := r.s.certByTrainee[traineeID]
	if !ok {
		return nil, enrollment.ErrCertificateNotFound
	}
	return c.Clone(), nil
}

func (r *enrollmentRepo) UpdateCertificate(ctx context.Context, c *enrollment.CertificateRecord) error {
	defer r.lock()()

	traineeID, ok := r.s.certIDIndex[c.ID]
	if !ok {
		return enrollment.ErrCertificateNotFound
	}
	r.s.certByTrainee[traineeID] = c.Clone()
	return nil
}

func (r *enrollmentRepo) ListVerifiedCertificates(ctx context.Context) ([]*enrollment.CertificateRecord, error) {
	defer r.lock()()

	var out []*enrollment.CertificateRecord
	for _, c := range r.s.certByTrainee {
		if c.Verified {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedOn.Before(out[j].IssuedOn) })
	return out, nil
}
