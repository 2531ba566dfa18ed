package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/enrollment"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/notification"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"
	"github.com/stvt-hub/stvt-training-hub/internal/infrastructure/messaging"
	"github.com/stvt-hub/stvt-training-hub/pkg/logger"
)

// ProjectListingInvalidator drops cached project availability listings after
// a mutation changes slot counts.
type ProjectListingInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// DocumentRenderer renders the artifacts produced after commit. The concrete
// implementation is TemplateRenderer in this package.
type DocumentRenderer interface {
	RenderChallan(view document.ChallanView) ([]byte, error)
	RenderCertificate(view document.CertificateView) ([]byte, error)
}

// EventHandlersConfig carries the collaborators of the side-effect handlers.
type EventHandlersConfig struct {
	// Notifier delivers the per-milestone notices.
	Notifier notification.Dispatcher

	// Invalidator drops cached listings on slot changes. May be nil when
	// no listing cache is configured.
	Invalidator ProjectListingInvalidator

	// Trainees, Projects and Enrollment read the committed state the
	// artifact renders from.
	Trainees   trainee.Repository
	Projects   project.Repository
	Enrollment enrollment.Repository

	// Renderer and Documents produce and store challans and certificates
	// after the owning transition has committed.
	Renderer  DocumentRenderer
	Documents document.Store

	// FeeAmount is the training fee printed on the challan, in rupees.
	FeeAmount int

	// Logger for structured logging.
	Logger *logger.Logger
}

// EventHandlers maps committed lifecycle events to their side effects: a
// notice per milestone, challan and certificate rendering, and cache
// invalidation on slot changes. All of it runs after commit on the
// dispatcher; a failing collaborator is retried and logged, never surfaced
// to the requester.
type EventHandlers struct {
	notifier    notification.Dispatcher
	invalidator ProjectListingInvalidator
	trainees    trainee.Repository
	projects    project.Repository
	enrollment  enrollment.Repository
	renderer    DocumentRenderer
	documents   document.Store
	feeAmount   int
	logger      *logger.Logger
	timeout     time.Duration
}

// NewEventHandlers creates the side-effect handler set.
func NewEventHandlers(cfg EventHandlersConfig) *EventHandlers {
	return &EventHandlers{
		notifier:    cfg.Notifier,
		invalidator: cfg.Invalidator,
		trainees:    cfg.Trainees,
		projects:    cfg.Projects,
		enrollment:  cfg.Enrollment,
		renderer:    cfg.Renderer,
		documents:   cfg.Documents,
		feeAmount:   cfg.FeeAmount,
		logger:      cfg.Logger.With(logger.Component("event-handlers")),
		timeout:     10 * time.Second,
	}
}

// Register subscribes every handler on the dispatcher.
func (h *EventHandlers) Register(d *messaging.Dispatcher) error {
	notices := map[shared.EventType]notification.TemplateKind{
		shared.EventFeeSent:             notification.KindChallanReady,
		shared.EventFeeVerified:         notification.KindPaymentVerified,
		shared.EventProjectApproved:     notification.KindProjectApproved,
		shared.EventAdmissionIssued:     notification.KindAdmitCardReady,
		shared.EventCertificateVerified: notification.KindCertificateVerified,
	}
	for eventType, kind := range notices {
		if err := d.Register(eventType, "notice-"+kind.String(), h.noticeHandler(kind)); err != nil {
			return fmt.Errorf("register notice handler: %w", err)
		}
	}

	if h.renderer != nil && h.documents != nil {
		if err := d.Register(shared.EventFeeSent, "render-challan", h.renderChallan); err != nil {
			return fmt.Errorf("register challan handler: %w", err)
		}
		if err := d.Register(shared.EventCertificateVerified, "render-certificate", h.renderCertificate); err != nil {
			return fmt.Errorf("register certificate handler: %w", err)
		}
	}

	if h.invalidator != nil {
		slotEvents := []shared.EventType{
			shared.EventProjectRequested,
			shared.EventProjectApproved,
			shared.EventProjectReleased,
		}
		for _, eventType := range slotEvents {
			if err := d.Register(eventType, "invalidate-project-listing", h.invalidateListings); err != nil {
				return fmt.Errorf("register cache handler: %w", err)
			}
		}
	}

	return nil
}

// noticeHandler builds a handler that dispatches one notice kind.
func (h *EventHandlers) noticeHandler(kind notification.TemplateKind) shared.EventHandler {
	return func(event shared.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		payload := make(map[string]string, len(event.Payload()))
		for k, v := range event.Payload() {
			payload[k] = fmt.Sprint(v)
		}

		return h.notifier.Notify(ctx, notification.Notice{
			TraineeID: event.AggregateID(),
			Kind:      kind,
			Payload:   payload,
		})
	}
}

// renderChallan stores the challan artifact under the reference the fee
// record already carries. Errors are returned for the dispatcher's retry
// cycle; the FeeSent transition committed long before this runs.
func (h *EventHandlers) renderChallan(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	t, err := h.trainees.GetByID(ctx, event.AggregateID())
	if err != nil {
		return h.renderFailed(event, document.KindChallan, err)
	}
	fee, err := h.enrollment.GetFeeRecordByTrainee(ctx, t.ID)
	if err != nil {
		return h.renderFailed(event, document.KindChallan, err)
	}

	data, err := h.renderer.RenderChallan(document.ChallanView{
		TraineeName: t.Name,
		PublicID:    t.PublicID.String(),
		Branch:      t.Branch.String(),
		College:     t.College,
		Amount:      h.feeAmount,
		Date:        fee.SentAt,
	})
	if err != nil {
		return h.renderFailed(event, document.KindChallan, err)
	}

	if _, err := h.documents.Put(ctx, t.ID, document.KindChallan, data, false); err != nil {
		return h.renderFailed(event, document.KindChallan, err)
	}
	return nil
}

// renderCertificate stores the certificate artifact under the reference
// recorded at verification.
func (h *EventHandlers) renderCertificate(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	t, err := h.trainees.GetByID(ctx, event.AggregateID())
	if err != nil {
		return h.renderFailed(event, document.KindCertificate, err)
	}
	cert, err := h.enrollment.GetCertificateByTrainee(ctx, t.ID)
	if err != nil {
		return h.renderFailed(event, document.KindCertificate, err)
	}
	sel, err := h.enrollment.GetSelectionByTrainee(ctx, t.ID)
	if err != nil {
		return h.renderFailed(event, document.KindCertificate, err)
	}
	p, err := h.projects.GetByID(ctx, sel.ProjectID)
	if err != nil {
		return h.renderFailed(event, document.KindCertificate, err)
	}

	data, err := h.renderer.RenderCertificate(document.CertificateView{
		TraineeName:   t.Name,
		FatherName:    t.FatherName,
		PublicID:      t.PublicID.String(),
		Serial:        cert.Serial.String(),
		ProjectTitle:  p.Title,
		Supervisor:    p.Supervisor,
		Branch:        t.Branch.String(),
		DurationWeeks: p.DurationWeeks,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		IssuedOn:      cert.IssuedOn,
	})
	if err != nil {
		return h.renderFailed(event, document.KindCertificate, err)
	}

	if _, err := h.documents.Put(ctx, t.ID, document.KindCertificate, data, false); err != nil {
		return h.renderFailed(event, document.KindCertificate, err)
	}
	return nil
}

// renderFailed logs a rendering failure and hands the error back for retry.
func (h *EventHandlers) renderFailed(event shared.Event, kind document.ArtifactKind, err error) error {
	h.logger.Warn("artifact rendering failed",
		logger.TraineeID(event.AggregateID()),
		logger.String("kind", kind.String()),
		logger.Err(err),
	)
	return fmt.Errorf("render %s: %w", kind, err)
}

// invalidateListings drops the availability cache after a slot count change.
func (h *EventHandlers) invalidateListings(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.invalidator.InvalidateAll(ctx); err != nil {
		h.logger.Warn("listing cache invalidation failed",
			logger.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
		return err
	}
	return nil
}
