package trainee

import (
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// State is the single explicit lifecycle state of a trainee. It is derived
// from the persisted workflow records rather than stored as its own column,
// so flags and related rows can never drift from the reported state.
type State string

const (
	// StateRegistered - profile exists, nothing else has happened.
	StateRegistered State = "registered"

	// StateSelected - admin selected the trainee; public ID assigned,
	// fee record created with status Pending.
	StateSelected State = "selected"

	// StateFeeSent - fee challan generated and dispatched. Covers the
	// window in which the trainee may submit a payment ticket.
	StateFeeSent State = "fee_sent"

	// StateFeeVerified - admin confirmed the payment.
	StateFeeVerified State = "fee_verified"

	// StateProjectRequested - slot reserved, selection pending approval.
	StateProjectRequested State = "project_requested"

	// StateProjectApproved - selection approved, certificate serial assigned.
	StateProjectApproved State = "project_approved"

	// StateAdmissionIssued - admit card record created.
	StateAdmissionIssued State = "admission_issued"

	// StateCertificateVerified - terminal state; certificate verified
	// and its artifact rendered.
	StateCertificateVerified State = "certificate_verified"
)

// IsValid checks that the state is known.
func (s State) IsValid() bool {
	switch s {
	case StateRegistered, StateSelected, StateFeeSent, StateFeeVerified,
		StateProjectRequested, StateProjectApproved, StateAdmissionIssued,
		StateCertificateVerified:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateCertificateVerified
}

// transitions is the table of legal forward edges. The only regressions are
// the administrative release edges back to FeeVerified.
var transitions = map[State][]State{
	StateRegistered:          {StateSelected},
	StateSelected:            {StateFeeSent},
	StateFeeSent:             {StateFeeVerified},
	StateFeeVerified:         {StateProjectRequested},
	StateProjectRequested:    {StateProjectApproved, StateFeeVerified},
	StateProjectApproved:     {StateAdmissionIssued, StateFeeVerified},
	StateAdmissionIssued:     {StateCertificateVerified},
	StateCertificateVerified: {},
}

// CanTransition checks whether the edge from -> to is legal.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the legal successor states of from.
func NextStates(from State) []State {
	next := transitions[from]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// Guard rejects an operation invoked in the wrong state. Every transition
// checks its precondition explicitly; an out-of-order call gets a
// TransitionError naming the expected and the actual state.
func Guard(op string, expected, actual State) error {
	if actual == expected {
		return nil
	}
	return shared.NewTransitionError(op, expected.String(), actual.String())
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE DERIVATION
// ══════════════════════════════════════════════════════════════════════════════

// Fee and selection status labels as seen by the derivation. Plain strings so
// the trainee package does not depend on the enrollment package.
const (
	FeeStatusNone      = ""
	FeeStatusPending   = "pending"
	FeeStatusSent      = "sent"
	FeeStatusSubmitted = "submitted"
	FeeStatusVerified  = "verified"

	SelectionStatusNone     = ""
	SelectionStatusPending  = "pending"
	SelectionStatusApproved = "approved"
)

// Snapshot is the set of persisted facts the lifecycle state is derived from:
// the trainee flags plus the presence and status of the related records.
type Snapshot struct {
	Selected            bool
	PaymentVerified     bool
	FeeStatus           string
	SelectionStatus     string
	AdmissionIssued     bool
	CertificateVerified bool
}

// StateOf consolidates the scattered flags and rows into the single lifecycle
// state. Later stages win: a verified certificate implies everything before it.
func StateOf(snap Snapshot) State {
	switch {
	case snap.CertificateVerified:
		return StateCertificateVerified
	case snap.AdmissionIssued:
		return StateAdmissionIssued
	case snap.SelectionStatus == SelectionStatusApproved:
		return StateProjectApproved
	case snap.SelectionStatus == SelectionStatusPending:
		return StateProjectRequested
	case snap.PaymentVerified:
		return StateFeeVerified
	case snap.FeeStatus == FeeStatusSent || snap.FeeStatus == FeeStatusSubmitted:
		return StateFeeSent
	case snap.Selected:
		return StateSelected
	default:
		return StateRegistered
	}
}
