// Package command contains write operations (CQRS - Commands): the lifecycle
// transitions of the enrollment workflow. Every transition runs inside a
// transactional unit of work; events are published only after commit, so
// side effects can never observe uncommitted state.
package command

import (
	"context"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// Stores bundles the transaction-scoped repositories a transition mutates.
// Inside RunInTx all stores operate on the same transaction: either every
// effect lands or none do.
type Stores struct {
	Trainees   trainee.Repository
	Projects   project.Repository
	Enrollment enrollment.Repository
	Sequences  sequence.Generator
}

// UnitOfWork executes a function atomically. The traineeID scopes the
// serialization: transitions for one trainee are totally ordered, while
// transitions for different trainees run in parallel and contend only on
// shared rows (project occupancy, sequence counters).
type UnitOfWork interface {
	// RunInTx runs fn inside a transaction serialized per trainee.
	// A non-nil error from fn rolls everything back and is returned as-is.
	RunInTx(ctx context.Context, traineeID string, fn func(s Stores) error) error
}

// IDGenerator produces internal identifiers (UUIDs).
type IDGenerator interface {
	GenerateID() string
}

// currentState loads the workflow records of a trainee and derives the
// single lifecycle state from them. Missing related records are a normal
// part of early states, not errors.
func currentState(ctx context.Context, s Stores, t *trainee.Trainee) (trainee.State, error) {
	snap := trainee.Snapshot{
		Selected:        t.Selected,
		PaymentVerified: t.PaymentVerified,
	}

	fee, err := s.Enrollment.GetFeeRecordByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.FeeStatus = fee.Status.String()
	case shared.IsNotFound(err):
		// no fee record yet
	default:
		return "", err
	}

	sel, err := s.Enrollment.GetSelectionByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.SelectionStatus = sel.Status.String()
	case shared.IsNotFound(err):
		// no selection yet
	default:
		return "", err
	}

	if _, err := s.Enrollment.GetAdmissionByTrainee(ctx, t.ID); err == nil {
		snap.AdmissionIssued = true
	} else if !shared.IsNotFound(err) {
		return "", err
	}

	cert, err := s.Enrollment.GetCertificateByTrainee(ctx, t.ID)
	switch {
	case err == nil:
		snap.CertificateVerified = cert.Verified
	case shared.IsNotFound(err):
		// no certificate yet
	default:
		return "", err
	}

	return trainee.StateOf(snap), nil
}
