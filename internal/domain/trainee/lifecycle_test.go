package trainee

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

func TestCanTransition_ForwardPath(t *testing.T) {
	path := []State{
		StateRegistered,
		StateSelected,
		StateFeeSent,
		StateFeeVerified,
		StateProjectRequested,
		StateProjectApproved,
		StateAdmissionIssued,
		StateCertificateVerified,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]),
			"expected %s -> %s to be legal", path[i], path[i+1])
	}
}

func TestCanTransition_NoSkippingStages(t *testing.T) {
	assert.False(t, CanTransition(StateRegistered, StateFeeSent))
	assert.False(t, CanTransition(StateSelected, StateFeeVerified))
	assert.False(t, CanTransition(StateFeeSent, StateProjectRequested))
	assert.False(t, CanTransition(StateFeeVerified, StateProjectApproved))
	assert.False(t, CanTransition(StateProjectRequested, StateAdmissionIssued))
	assert.False(t, CanTransition(StateProjectApproved, StateCertificateVerified))
}

func TestCanTransition_NoRegressionsExceptRelease(t *testing.T) {
	// Administrative release puts the trainee back to fee-verified.
	assert.True(t, CanTransition(StateProjectRequested, StateFeeVerified))
	assert.True(t, CanTransition(StateProjectApproved, StateFeeVerified))

	assert.False(t, CanTransition(StateSelected, StateRegistered))
	assert.False(t, CanTransition(StateFeeVerified, StateFeeSent))
	assert.False(t, CanTransition(StateAdmissionIssued, StateProjectApproved))
	assert.False(t, CanTransition(StateCertificateVerified, StateAdmissionIssued))
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateCertificateVerified.IsTerminal())
	assert.Empty(t, NextStates(StateCertificateVerified))
	assert.False(t, StateAdmissionIssued.IsTerminal())
}

func TestGuard(t *testing.T) {
	assert.NoError(t, Guard("verifyFee", StateFeeSent, StateFeeSent))

	err := Guard("verifyCertificate", StateAdmissionIssued, StateProjectApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))

	var terr *shared.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "admission_issued", terr.Expected)
	assert.Equal(t, "project_approved", terr.Actual)
}

func TestStateOf_Derivation(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want State
	}{
		{"fresh registration", Snapshot{}, StateRegistered},
		{"selected with pending fee", Snapshot{Selected: true, FeeStatus: FeeStatusPending}, StateSelected},
		{"challan sent", Snapshot{Selected: true, FeeStatus: FeeStatusSent}, StateFeeSent},
		{"ticket submitted still fee_sent", Snapshot{Selected: true, FeeStatus: FeeStatusSubmitted}, StateFeeSent},
		{"payment verified", Snapshot{Selected: true, PaymentVerified: true, FeeStatus: FeeStatusVerified}, StateFeeVerified},
		{"slot reserved", Snapshot{Selected: true, PaymentVerified: true, FeeStatus: FeeStatusVerified, SelectionStatus: SelectionStatusPending}, StateProjectRequested},
		{"selection approved", Snapshot{Selected: true, PaymentVerified: true, FeeStatus: FeeStatusVerified, SelectionStatus: SelectionStatusApproved}, StateProjectApproved},
		{"admit card issued", Snapshot{Selected: true, PaymentVerified: true, FeeStatus: FeeStatusVerified, SelectionStatus: SelectionStatusApproved, AdmissionIssued: true}, StateAdmissionIssued},
		{"certificate verified wins", Snapshot{Selected: true, PaymentVerified: true, FeeStatus: FeeStatusVerified, SelectionStatus: SelectionStatusApproved, AdmissionIssued: true, CertificateVerified: true}, StateCertificateVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(tt.snap))
		})
	}
}

func TestNewTrainee_Validation(t *testing.T) {
	params := NewTraineeParams{
		ID:     "t-1",
		Name:   "Asha Verma",
		Email:  "asha@example.com",
		Branch: "Electrical",
		Mobile: "9876543210",
	}

	tr, err := NewTrainee(params)
	require.NoError(t, err)
	assert.Equal(t, StateRegistered, StateOf(Snapshot{Selected: tr.Selected}))
	assert.True(t, tr.PublicID.IsEmpty())
	assert.False(t, tr.Selected)
	assert.False(t, tr.PaymentVerified)

	bad := params
	bad.Name = ""
	_, err = NewTrainee(bad)
	assert.ErrorIs(t, err, ErrInvalidName)

	bad = params
	bad.Branch = "X"
	_, err = NewTrainee(bad)
	assert.ErrorIs(t, err, ErrInvalidBranch)

	bad = params
	bad.Email = "nope"
	_, err = NewTrainee(bad)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestTrainee_AssignPublicID_ExactlyOnce(t *testing.T) {
	tr, err := NewTrainee(NewTraineeParams{
		ID: "t-1", Name: "Asha Verma", Email: "asha@example.com", Branch: "Electrical",
	})
	require.NoError(t, err)

	require.NoError(t, tr.AssignPublicID("STVT25/01"))
	assert.Equal(t, "STVT25/01", tr.PublicID.String())

	err = tr.AssignPublicID("STVT25/02")
	assert.ErrorIs(t, err, ErrPublicIDAssigned)
	assert.Equal(t, "STVT25/01", tr.PublicID.String(), "first assignment must stick")
}
