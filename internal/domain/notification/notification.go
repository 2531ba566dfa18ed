// Package notification contains the notice contract of the training hub.
// Notices are fire-and-forget side effects of committed lifecycle
// transitions: delivery failure is logged, never propagated to the
// transition's caller, and never rolls back committed state.
package notification

import (
	"context"
	"errors"
)

// TemplateKind identifies the notice template to render.
type TemplateKind string

const (
	// KindChallanReady - the fee challan was generated and can be paid.
	KindChallanReady TemplateKind = "challan_ready"

	// KindPaymentVerified - fee confirmed; pick a project.
	KindPaymentVerified TemplateKind = "payment_verified"

	// KindProjectApproved - batch confirmed.
	KindProjectApproved TemplateKind = "project_approved"

	// KindAdmitCardReady - admit card available on the dashboard.
	KindAdmitCardReady TemplateKind = "admit_card_ready"

	// KindCertificateVerified - certificate issued.
	KindCertificateVerified TemplateKind = "certificate_verified"

	// KindFeeReminder - challan sent but unpaid past the due window.
	KindFeeReminder TemplateKind = "fee_reminder"
)

// IsValid checks that the template kind is known.
func (k TemplateKind) IsValid() bool {
	switch k {
	case KindChallanReady, KindPaymentVerified, KindProjectApproved,
		KindAdmitCardReady, KindCertificateVerified, KindFeeReminder:
		return true
	default:
		return false
	}
}

// String returns the string representation of the template kind.
func (k TemplateKind) String() string {
	return string(k)
}

// Notice is a single fire-and-forget message for one trainee.
type Notice struct {
	// TraineeID is the recipient's internal ID.
	TraineeID string

	// Kind selects the template.
	Kind TemplateKind

	// Payload carries template-specific values (names, identifiers, links).
	Payload map[string]string
}

// ErrDispatchFailed - the delivery transport rejected the notice. Callers
// log this at the dispatch boundary; it must never unwind a transition.
var ErrDispatchFailed = errors.New("notification dispatch failed")

// Dispatcher delivers notices. Implemented outside the workflow core;
// the event handlers call it with bounded retries after commit.
type Dispatcher interface {
	// Notify sends one notice. Implementations should be cheap to call;
	// slow transports belong behind their own queue.
	Notify(ctx context.Context, notice Notice) error
}
