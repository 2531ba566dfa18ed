package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(context.Context) error { return errBoom }
func succeeding(context.Context) error { return nil }

func TestOpensAfterFailureThreshold(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(3), WithTimeout(time.Minute))

	for i := 0; i < 3; i++ {
		err := cb.Execute(ctx, failing)
		require.ErrorIs(t, err, errBoom)
	}
	assert.True(t, cb.IsOpen())

	// Open circuit rejects without invoking the function.
	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestSuccessesKeepCircuitClosed(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(2))

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(ctx, succeeding))
	}
	assert.True(t, cb.IsClosed())
	assert.Equal(t, 10, cb.Counts().TotalSuccesses)
}

func TestNonConsecutiveFailuresDoNotOpen(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(3))

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)
	require.NoError(t, cb.Execute(ctx, succeeding))
	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)

	assert.True(t, cb.IsClosed())
}

func TestHalfOpenRecovery(t *testing.T) {
	ctx := context.Background()
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Millisecond),
	)

	_ = cb.Execute(ctx, failing)
	require.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)

	// First probe after the timeout goes through and closes the circuit.
	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.True(t, cb.IsClosed())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	cb := New("test",
		WithFailureThreshold(1),
		WithTimeout(10*time.Millisecond),
	)

	_ = cb.Execute(ctx, failing)
	time.Sleep(20 * time.Millisecond)

	err := cb.Execute(ctx, failing)
	require.ErrorIs(t, err, errBoom)
	assert.True(t, cb.IsOpen())
}

func TestExecuteWithFallback(t *testing.T) {
	ctx := context.Background()
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Minute))

	_ = cb.Execute(ctx, failing)
	require.True(t, cb.IsOpen())

	err := cb.ExecuteWithFallback(ctx, failing, func(error) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestOnStateChangeCallback(t *testing.T) {
	ctx := context.Background()
	var transitions []string
	cb := New("notices",
		WithFailureThreshold(1),
		WithTimeout(time.Minute),
		WithOnStateChange(func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)

	_ = cb.Execute(ctx, failing)
	require.Equal(t, []string{"closed->open"}, transitions)

	cb.Reset()
	assert.True(t, cb.IsClosed())
}

func TestIsFailureFilter(t *testing.T) {
	ctx := context.Background()
	ignorable := errors.New("not found")
	cb := New("test",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, ignorable) }),
	)

	// Filtered errors return to the caller but never trip the breaker.
	err := cb.Execute(ctx, func(context.Context) error { return ignorable })
	require.ErrorIs(t, err, ignorable)
	assert.True(t, cb.IsClosed())
}
