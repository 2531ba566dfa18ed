// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event marks a committed lifecycle transition;
// side effects (notices, document rendering) are dispatched from these
// after the transactional unit commits, never inside it.
const (
	// Trainee events
	EventTraineeRegistered EventType = "trainee.registered"
	EventTraineeSelected   EventType = "trainee.selected"

	// Fee events
	EventFeeSent      EventType = "fee.sent"
	EventFeeSubmitted EventType = "fee.submitted"
	EventFeeVerified  EventType = "fee.verified"

	// Project events
	EventProjectRequested EventType = "project.requested"
	EventProjectApproved  EventType = "project.approved"
	EventProjectReleased  EventType = "project.released"

	// Admission and certificate events
	EventAdmissionIssued     EventType = "admission.issued"
	EventCertificateVerified EventType = "certificate.verified"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Trainee Events
// ═══════════════════════════════════════════════════════════════════════════

// TraineeRegisteredEvent is emitted when a new trainee registers.
type TraineeRegisteredEvent struct {
	BaseEvent
	Name   string `json:"name"`
	Email  string `json:"email"`
	Branch string `json:"branch"`
}

// Payload implements Event interface.
func (e TraineeRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"name":   e.Name,
		"email":  e.Email,
		"branch": e.Branch,
	}
}

// NewTraineeRegisteredEvent creates a new TraineeRegisteredEvent.
func NewTraineeRegisteredEvent(traineeID, name, email, branch string) TraineeRegisteredEvent {
	return TraineeRegisteredEvent{
		BaseEvent: NewBaseEvent(EventTraineeRegistered, traineeID),
		Name:      name,
		Email:     email,
		Branch:    branch,
	}
}

// TraineeSelectedEvent is emitted when an administrator marks a trainee as
// selected. PublicID carries the freshly generated identifier.
type TraineeSelectedEvent struct {
	BaseEvent
	PublicID string `json:"public_id"`
	Branch   string `json:"branch"`
}

// Payload implements Event interface.
func (e TraineeSelectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"public_id": e.PublicID,
		"branch":    e.Branch,
	}
}

// NewTraineeSelectedEvent creates a new TraineeSelectedEvent.
func NewTraineeSelectedEvent(traineeID, publicID, branch string) TraineeSelectedEvent {
	return TraineeSelectedEvent{
		BaseEvent: NewBaseEvent(EventTraineeSelected, traineeID),
		PublicID:  publicID,
		Branch:    branch,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Fee Events
// ═══════════════════════════════════════════════════════════════════════════

// FeeSentEvent is emitted when the fee challan is generated and dispatched.
type FeeSentEvent struct {
	BaseEvent
	FeeRecordID string    `json:"fee_record_id"`
	SentAt      time.Time `json:"sent_at"`
}

// Payload implements Event interface.
func (e FeeSentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"fee_record_id": e.FeeRecordID,
		"sent_at":       e.SentAt.Format(time.RFC3339),
	}
}

// NewFeeSentEvent creates a new FeeSentEvent.
func NewFeeSentEvent(traineeID, feeRecordID string, sentAt time.Time) FeeSentEvent {
	return FeeSentEvent{
		BaseEvent:   NewBaseEvent(EventFeeSent, traineeID),
		FeeRecordID: feeRecordID,
		SentAt:      sentAt,
	}
}

// FeeSubmittedEvent is emitted when a trainee submits a payment ticket.
type FeeSubmittedEvent struct {
	BaseEvent
	FeeRecordID  string `json:"fee_record_id"`
	TicketNumber string `json:"ticket_number"`
}

// Payload implements Event interface.
func (e FeeSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"fee_record_id": e.FeeRecordID,
		"ticket_number": e.TicketNumber,
	}
}

// NewFeeSubmittedEvent creates a new FeeSubmittedEvent.
func NewFeeSubmittedEvent(traineeID, feeRecordID, ticketNumber string) FeeSubmittedEvent {
	return FeeSubmittedEvent{
		BaseEvent:    NewBaseEvent(EventFeeSubmitted, traineeID),
		FeeRecordID:  feeRecordID,
		TicketNumber: ticketNumber,
	}
}

// FeeVerifiedEvent is emitted when an administrator confirms payment.
type FeeVerifiedEvent struct {
	BaseEvent
	FeeRecordID string `json:"fee_record_id"`
	VerifiedBy  string `json:"verified_by"`
}

// Payload implements Event interface.
func (e FeeVerifiedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"fee_record_id": e.FeeRecordID,
		"verified_by":   e.VerifiedBy,
	}
}

// NewFeeVerifiedEvent creates a new FeeVerifiedEvent.
func NewFeeVerifiedEvent(traineeID, feeRecordID, verifiedBy string) FeeVerifiedEvent {
	return FeeVerifiedEvent{
		BaseEvent:   NewBaseEvent(EventFeeVerified, traineeID),
		FeeRecordID: feeRecordID,
		VerifiedBy:  verifiedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Project Events
// ═══════════════════════════════════════════════════════════════════════════

// ProjectRequestedEvent is emitted when a trainee reserves a project slot.
type ProjectRequestedEvent struct {
	BaseEvent
	SelectionID  string `json:"selection_id"`
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
}

// Payload implements Event interface.
func (e ProjectRequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"selection_id":  e.SelectionID,
		"project_id":    e.ProjectID,
		"project_title": e.ProjectTitle,
	}
}

// NewProjectRequestedEvent creates a new ProjectRequestedEvent.
func NewProjectRequestedEvent(traineeID, selectionID, projectID, projectTitle string) ProjectRequestedEvent {
	return ProjectRequestedEvent{
		BaseEvent:    NewBaseEvent(EventProjectRequested, traineeID),
		SelectionID:  selectionID,
		ProjectID:    projectID,
		ProjectTitle: projectTitle,
	}
}

// ProjectApprovedEvent is emitted when an administrator approves a selection.
// CertificateSerial carries the serial pre-assigned at approval time.
type ProjectApprovedEvent struct {
	BaseEvent
	SelectionID       string `json:"selection_id"`
	ProjectID         string `json:"project_id"`
	CertificateSerial string `json:"certificate_serial"`
	ApprovedBy        string `json:"approved_by"`
}

// Payload implements Event interface.
func (e ProjectApprovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"selection_id":       e.SelectionID,
		"project_id":         e.ProjectID,
		"certificate_serial": e.CertificateSerial,
		"approved_by":        e.ApprovedBy,
	}
}

// NewProjectApprovedEvent creates a new ProjectApprovedEvent.
func NewProjectApprovedEvent(traineeID, selectionID, projectID, serial, approvedBy string) ProjectApprovedEvent {
	return ProjectApprovedEvent{
		BaseEvent:         NewBaseEvent(EventProjectApproved, traineeID),
		SelectionID:       selectionID,
		ProjectID:         projectID,
		CertificateSerial: serial,
		ApprovedBy:        approvedBy,
	}
}

// ProjectReleasedEvent is emitted on administrative release of a reservation.
type ProjectReleasedEvent struct {
	BaseEvent
	SelectionID string `json:"selection_id"`
	ProjectID   string `json:"project_id"`
	ReleasedBy  string `json:"released_by"`
}

// Payload implements Event interface.
func (e ProjectReleasedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"selection_id": e.SelectionID,
		"project_id":   e.ProjectID,
		"released_by":  e.ReleasedBy,
	}
}

// NewProjectReleasedEvent creates a new ProjectReleasedEvent.
func NewProjectReleasedEvent(traineeID, selectionID, projectID, releasedBy string) ProjectReleasedEvent {
	return ProjectReleasedEvent{
		BaseEvent:   NewBaseEvent(EventProjectReleased, traineeID),
		SelectionID: selectionID,
		ProjectID:   projectID,
		ReleasedBy:  releasedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Admission and Certificate Events
// ═══════════════════════════════════════════════════════════════════════════

// AdmissionIssuedEvent is emitted when the admit card record is created.
type AdmissionIssuedEvent struct {
	BaseEvent
	AdmissionID string `json:"admission_id"`
	ProjectID   string `json:"project_id"`
}

// Payload implements Event interface.
func (e AdmissionIssuedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"admission_id": e.AdmissionID,
		"project_id":   e.ProjectID,
	}
}

// NewAdmissionIssuedEvent creates a new AdmissionIssuedEvent.
func NewAdmissionIssuedEvent(traineeID, admissionID, projectID string) AdmissionIssuedEvent {
	return AdmissionIssuedEvent{
		BaseEvent:   NewBaseEvent(EventAdmissionIssued, traineeID),
		AdmissionID: admissionID,
		ProjectID:   projectID,
	}
}

// CertificateVerifiedEvent is emitted when a certificate is verified and its
// artifact can be rendered.
type CertificateVerifiedEvent struct {
	BaseEvent
	CertificateID string    `json:"certificate_id"`
	Serial        string    `json:"serial"`
	IssuedOn      time.Time `json:"issued_on"`
	VerifiedBy    string    `json:"verified_by"`
}

// Payload implements Event interface.
func (e CertificateVerifiedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"certificate_id": e.CertificateID,
		"serial":         e.Serial,
		"issued_on":      e.IssuedOn.Format(time.RFC3339),
		"verified_by":    e.VerifiedBy,
	}
}

// NewCertificateVerifiedEvent creates a new CertificateVerifiedEvent.
func NewCertificateVerifiedEvent(traineeID, certificateID, serial, verifiedBy string, issuedOn time.Time) CertificateVerifiedEvent {
	return CertificateVerifiedEvent{
		BaseEvent:     NewBaseEvent(EventCertificateVerified, traineeID),
		CertificateID: certificateID,
		Serial:        serial,
		IssuedOn:      issuedOn,
		VerifiedBy:    verifiedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
