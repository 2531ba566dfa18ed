package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeRecord_HappyPath(t *testing.T) {
	f, err := NewFeeRecord("f-1", "t-1")
	require.NoError(t, err)
	assert.Equal(t, FeeStatusPending, f.Status)
	assert.True(t, f.SentAt.IsZero())

	require.NoError(t, f.MarkSent("artifacts/challan_t-1.html"))
	assert.Equal(t, FeeStatusSent, f.Status)
	assert.False(t, f.SentAt.IsZero())

	require.NoError(t, f.SubmitTicket("TXN-4471"))
	assert.Equal(t, FeeStatusSubmitted, f.Status)
	assert.Equal(t, "TXN-4471", f.TicketNumber)

	require.NoError(t, f.MarkVerified())
	assert.Equal(t, FeeStatusVerified, f.Status)
}

func TestFeeRecord_VerifyWithoutTicket(t *testing.T) {
	f, err := NewFeeRecord("f-1", "t-1")
	require.NoError(t, err)

	require.NoError(t, f.MarkSent("ref"))
	// Payment can be confirmed straight from Sent; the ticket is optional.
	require.NoError(t, f.MarkVerified())
	assert.Equal(t, FeeStatusVerified, f.Status)
}

func TestFeeRecord_OutOfOrder(t *testing.T) {
	f, err := NewFeeRecord("f-1", "t-1")
	require.NoError(t, err)

	assert.ErrorIs(t, f.SubmitTicket("TXN-1"), ErrFeeNotSent)
	assert.ErrorIs(t, f.MarkVerified(), ErrFeeNotSent)

	require.NoError(t, f.MarkSent("ref"))
	assert.ErrorIs(t, f.MarkSent("ref2"), ErrFeeNotPending)

	require.NoError(t, f.MarkVerified())
	assert.ErrorIs(t, f.MarkVerified(), ErrFeeAlreadyVerified)
}

func TestFeeRecord_EmptyTicket(t *testing.T) {
	f, err := NewFeeRecord("f-1", "t-1")
	require.NoError(t, err)
	require.NoError(t, f.MarkSent("ref"))

	assert.ErrorIs(t, f.SubmitTicket("   "), ErrEmptyTicketNumber)
	assert.Equal(t, FeeStatusSent, f.Status, "failed submission must not change state")
}

func TestSelection_Approve(t *testing.T) {
	s, err := NewSelection("s-1", "t-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, SelectionPending, s.Status)

	require.NoError(t, s.Approve())
	assert.True(t, s.IsApproved())
	assert.ErrorIs(t, s.Approve(), ErrSelectionNotPending)
}

func TestCertificateRecord_Verify(t *testing.T) {
	c, err := NewCertificateRecord("c-1", "t-1", "CERT25/01")
	require.NoError(t, err)
	assert.False(t, c.Verified)
	assert.True(t, c.IssuedOn.IsZero(), "issuedOn is set only at verification")

	require.NoError(t, c.MarkVerified("artifacts/cert_CERT25-01.html"))
	assert.True(t, c.Verified)
	assert.False(t, c.IssuedOn.IsZero())

	assert.ErrorIs(t, c.MarkVerified("ref"), ErrCertificateVerified)
}

func TestNewCertificateRecord_RequiresSerial(t *testing.T) {
	_, err := NewCertificateRecord("c-1", "t-1", "")
	assert.Error(t, err)
}
