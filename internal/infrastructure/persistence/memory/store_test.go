package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvt-hub/stvt-training-hub/internal/application/command"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
)

func newTestProject(t *testing.T, id string, slots int) *project.Project {
	t.Helper()
	p, err := project.NewProject(project.NewProjectParams{
		ID:            id,
		Title:         "PLC Automation",
		Branch:        "Electrical",
		Supervisor:    "R. Sharma",
		DurationWeeks: 4,
		StartDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC),
		TotalSlots:    slots,
	})
	require.NoError(t, err)
	return p
}

func newTestTrainee(t *testing.T, id, email string) *trainee.Trainee {
	t.Helper()
	tr, err := trainee.NewTrainee(trainee.NewTraineeParams{
		ID:           id,
		Name:         "Asha Patel",
		FatherName:   "M. Patel",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		College:      "Govt Polytechnic",
		Course:       "B.Tech",
		Branch:       "Electrical",
		Address:      "Hyderabad",
	})
	require.NoError(t, err)
	return tr
}

func TestUnitOfWork_CommitPersists(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUnitOfWork(store)

	err := uow.RunInTx(ctx, "t-1", func(s command.Stores) error {
		return s.Trainees.Create(ctx, newTestTrainee(t, "t-1", "asha@example.com"))
	})
	require.NoError(t, err)

	got, err := store.Trainees().GetByID(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
}

func TestUnitOfWork_RollbackRestoresEverything(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUnitOfWork(store)

	p := newTestProject(t, "p-1", 2)
	require.NoError(t, store.Projects().Create(ctx, p))

	boom := errors.New("boom")
	err := uow.RunInTx(ctx, "t-1", func(s command.Stores) error {
		if err := s.Trainees.Create(ctx, newTestTrainee(t, "t-1", "asha@example.com")); err != nil {
			return err
		}
		if _, err := s.Projects.Reserve(ctx, "p-1"); err != nil {
			return err
		}
		if _, err := s.Sequences.Next(ctx, sequence.CategoryTraineeID, 26); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The trainee never existed.
	_, err = store.Trainees().GetByID(ctx, "t-1")
	assert.True(t, shared.IsNotFound(err))

	// The reserved slot came back.
	got, err := store.Projects().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TakenSlots)

	// The consumed sequence number was returned, so no gap appears.
	var id sequence.Identifier
	err = uow.RunInTx(ctx, "t-2", func(s command.Stores) error {
		var nextErr error
		id, nextErr = s.Sequences.Next(ctx, sequence.CategoryTraineeID, 26)
		return nextErr
	})
	require.NoError(t, err)
	assert.Equal(t, "STVT26/01", id.String())
}

func TestProjectRepo_ReserveStopsAtCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	p := newTestProject(t, "p-1", 2)
	require.NoError(t, store.Projects().Create(ctx, p))

	_, err := store.Projects().Reserve(ctx, "p-1")
	require.NoError(t, err)
	_, err = store.Projects().Reserve(ctx, "p-1")
	require.NoError(t, err)

	_, err = store.Projects().Reserve(ctx, "p-1")
	assert.True(t, shared.IsCapacityFull(err))

	got, err := store.Projects().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TakenSlots)
}

func TestProjectRepo_ReleaseReturnsSlot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	p := newTestProject(t, "p-1", 1)
	require.NoError(t, store.Projects().Create(ctx, p))

	_, err := store.Projects().Reserve(ctx, "p-1")
	require.NoError(t, err)

	released, err := store.Projects().Release(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 0, released.TakenSlots)

	// A released slot is immediately reservable again.
	_, err = store.Projects().Reserve(ctx, "p-1")
	assert.NoError(t, err)
}

func TestSequenceGen_GapFreePerCategoryAndBucket(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	gen := store.Sequences()

	first, err := gen.Next(ctx, sequence.CategoryTraineeID, 26)
	require.NoError(t, err)
	second, err := gen.Next(ctx, sequence.CategoryTraineeID, 26)
	require.NoError(t, err)

	assert.Equal(t, "STVT26/01", first.String())
	assert.Equal(t, "STVT26/02", second.String())

	// Other categories and buckets count independently.
	cert, err := gen.Next(ctx, sequence.CategoryCertificate, 26)
	require.NoError(t, err)
	assert.Equal(t, "CERT26/01", cert.String())

	nextYear, err := gen.Next(ctx, sequence.CategoryTraineeID, 27)
	require.NoError(t, err)
	assert.Equal(t, "STVT27/01", nextYear.String())
}

func TestTraineeRepo_DuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Trainees().Create(ctx, newTestTrainee(t, "t-1", "asha@example.com")))

	err := store.Trainees().Create(ctx, newTestTrainee(t, "t-2", "asha@example.com"))
	assert.True(t, shared.IsAlreadyExists(err))
}
