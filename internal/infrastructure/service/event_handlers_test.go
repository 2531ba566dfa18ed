package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/messaging"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/persistence/memory"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/service"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
)

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, notice notification.Notice) error { return nil }

type renderEnv struct {
	store      *memory.Store
	docs       *service.FilesystemStore
	dispatcher *messaging.Dispatcher
}

func newRenderEnv(t *testing.T) *renderEnv {
	t.Helper()

	store := memory.NewStore()
	docs, err := service.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	renderer, err := service.NewTemplateRenderer()
	require.NoError(t, err)

	dispatcher := messaging.NewDispatcher(messaging.DispatcherConfig{
		RetryConfig: messaging.RetryConfig{
			MaxRetries:        1,
			InitialBackoff:    time.Millisecond,
			MaxBackoff:        time.Millisecond,
			BackoffMultiplier: 1,
		},
	})
	t.Cleanup(func() { _ = dispatcher.Stop() })

	handlers := service.NewEventHandlers(service.EventHandlersConfig{
		Notifier:   noopNotifier{},
		Trainees:   store.Trainees(),
		Projects:   store.Projects(),
		Enrollment: store.Enrollment(),
		Renderer:   renderer,
		Documents:  docs,
		FeeAmount:  2500,
		Logger:     logger.Default(),
	})
	require.NoError(t, handlers.Register(dispatcher))

	return &renderEnv{store: store, docs: docs, dispatcher: dispatcher}
}

func (e *renderEnv) seedSelectedTrainee(t *testing.T, id string) *trainee.Trainee {
	t.Helper()
	tr, err := trainee.NewTrainee(trainee.NewTraineeParams{
		ID:           id,
		Name:         "Asha Patel",
		FatherName:   "M. Patel",
		Email:        id + "@example.com",
		PasswordHash: "$2a$10$hash",
		College:      "Govt Polytechnic",
		Course:       "B.Tech",
		Branch:       "Electrical",
		Address:      "Hyderabad",
	})
	require.NoError(t, err)
	tr.MarkSelected()
	require.NoError(t, tr.AssignPublicID(sequence.Format(sequence.CategoryTraineeID, 26, 1)))
	require.NoError(t, e.store.Trainees().Create(context.Background(), tr))
	return tr
}

func TestChallanRenderedAfterFeeSentEvent(t *testing.T) {
	e := newRenderEnv(t)
	ctx := context.Background()

	tr := e.seedSelectedTrainee(t, "t-1")

	fee, err := enrollment.NewFeeRecord("fee-1", tr.ID)
	require.NoError(t, err)
	ref := e.docs.Ref(tr.ID, document.KindChallan)
	require.NoError(t, fee.MarkSent(ref.String()))
	require.NoError(t, e.store.Enrollment().CreateFeeRecord(ctx, fee))

	require.NoError(t, e.dispatcher.Dispatch(shared.NewFeeSentEvent(tr.ID, fee.ID, fee.SentAt)))

	require.Eventually(t, func() bool {
		_, err := e.docs.Get(ctx, ref)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "challan artifact stored after commit")

	data, err := e.docs.Get(ctx, ref)
	require.NoError(t, err)
	assert.Contains(t, string(data), "STVT26/01")
	assert.Contains(t, string(data), "2500")
}

func TestCertificateRenderedAfterVerificationEvent(t *testing.T) {
	e := newRenderEnv(t)
	ctx := context.Background()

	tr := e.seedSelectedTrainee(t, "t-1")

	p, err := project.NewProject(project.NewProjectParams{
		ID:            "p-1",
		Title:         "PLC Automation",
		Branch:        "Electrical",
		Supervisor:    "R. Sharma",
		DurationWeeks: 4,
		StartDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 6, 28, 0, 0, 0, 0, time.UTC),
		TotalSlots:    2,
	})
	require.NoError(t, err)
	require.NoError(t, e.store.Projects().Create(ctx, p))

	sel, err := enrollment.NewSelection("sel-1", tr.ID, p.ID)
	require.NoError(t, err)
	require.NoError(t, sel.Approve())
	require.NoError(t, e.store.Enrollment().CreateSelection(ctx, sel))

	serial := sequence.Format(sequence.CategoryCertificate, 26, 1)
	cert, err := enrollment.NewCertificateRecord("cert-1", tr.ID, serial)
	require.NoError(t, err)
	ref := e.docs.Ref(tr.ID, document.KindCertificate)
	require.NoError(t, cert.MarkVerified(ref.String()))
	require.NoError(t, e.store.Enrollment().CreateCertificate(ctx, cert))

	require.NoError(t, e.dispatcher.Dispatch(shared.NewCertificateVerifiedEvent(
		tr.ID, cert.ID, serial.String(), "admin", cert.IssuedOn)))

	require.Eventually(t, func() bool {
		_, err := e.docs.Get(ctx, ref)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "certificate artifact stored after commit")

	data, err := e.docs.Get(ctx, ref)
	require.NoError(t, err)
	assert.Contains(t, string(data), serial.String())
	assert.Contains(t, string(data), "PLC Automation")
}
