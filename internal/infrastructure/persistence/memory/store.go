// Package memory implements the persistence contracts on in-process maps.
// It backs local development without a database and the application-layer
// tests. Semantics mirror the postgres implementation: per-trainee
// serialization, atomic slot reservation, durable-in-process sequence
// counters, and all-or-nothing transactions.
package memory

import (
	"sync"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

// counterKey identifies one sequence counter: a category within a year bucket.
type counterKey struct {
	category sequence.Category
	bucket   sequence.Bucket
}

// Store holds all state behind one mutex. Repository views either lock per
// operation (direct use) or run unlocked inside a transaction that already
// holds the lock for its whole extent.
type Store struct {
	mu sync.Mutex

	trainees       map[string]*trainee.Trainee
	traineeByEmail map[string]string

	projects map[string]*project.Project

	feeByTrainee map[string]*enrollment.FeeRecord
	feeIDIndex   map[string]string // fee ID -> trainee ID

	selections   map[string]*enrollment.Selection
	selByTrainee map[string]string // trainee ID -> selection ID

	admByTrainee map[string]*enrollment.AdmissionArtifact

	certByTrainee map[string]*enrollment.CertificateRecord
	certIDIndex   map[string]string // certificate ID -> trainee ID

	counters map[counterKey]int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		trainees:       make(map[string]*trainee.Trainee),
		traineeByEmail: make(map[string]string),
		projects:       make(map[string]*project.Project),
		feeByTrainee:   make(map[string]*enrollment.FeeRecord),
		feeIDIndex:     make(map[string]string),
		selections:     make(map[string]*enrollment.Selection),
		selByTrainee:   make(map[string]string),
		admByTrainee:   make(map[string]*enrollment.AdmissionArtifact),
		certByTrainee:  make(map[string]*enrollment.CertificateRecord),
		certIDIndex:    make(map[string]string),
		counters:       make(map[counterKey]int),
	}
}

// Trainees returns a self-locking trainee repository view.
func (s *Store) Trainees() trainee.Repository {
	return &traineeRepo{s: s}
}

// Projects returns a self-locking project repository view.
func (s *Store) Projects() project.Repository {
	return &projectRepo{s: s}
}

// Enrollment returns a self-locking enrollment repository view.
func (s *Store) Enrollment() enrollment.Repository {
	return &enrollmentRepo{s: s}
}

// Sequences returns a self-locking sequence generator view.
func (s *Store) Sequences() sequence.Generator {
	return &sequenceGen{s: s}
}

// snapshot deep-copies all state. Restoring it implements rollback,
// including un-consuming sequence numbers taken by the failed transaction.
func (s *Store) snapshot() *Store {
	snap := NewStore()

	for k, v := range s.trainees {
		snap.trainees[k] = v.Clone()
	}
	for k, v := range s.traineeByEmail {
		snap.traineeByEmail[k] = v
	}
	for k, v := range s.projects {
		snap.projects[k] = v.Clone()
	}
	for k, v := range s.feeByTrainee {
		snap.feeByTrainee[k] = v.Clone()
	}
	for k, v := range s.feeIDIndex {
		snap.feeIDIndex[k] = v
	}
	for k, v := range s.selections {
		snap.selections[k] = v.Clone()
	}
	for k, v := range s.selByTrainee {
		snap.selByTrainee[k] = v
	}
	for k, v := range s.admByTrainee {
		snap.admByTrainee[k] = v.Clone()
	}
	for k, v := range s.certByTrainee {
		snap.certByTrainee[k] = v.Clone()
	}
	for k, v := range s.certIDIndex {
		snap.certIDIndex[k] = v
	}
	for k, v := range s.counters {
		snap.counters[k] = v
	}

	return snap
}

// restore replaces all state with the snapshot's.
func (s *Store) restore(snap *Store) {
	s.trainees = snap.trainees
	s.traineeByEmail = snap.traineeByEmail
	s.projects = snap.projects
	s.feeByTrainee = snap.feeByTrainee
	s.feeIDIndex = snap.feeIDIndex
	s.selections = snap.selections
	s.selByTrainee = snap.selByTrainee
	s.admByTrainee = snap.admByTrainee
	s.certByTrainee = snap.certByTrainee
	s.certIDIndex = snap.certIDIndex
	s.counters = snap.counters
}
