package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBreaker(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := New(Config{Window: 4, FailureRatio: 0.5, Cooldown: time.Minute, Recovery: 2})
	b.now = func() time.Time { return now }

	ok := func() error { return nil }
	fail := func() error { return errBoom }

	require.NoError(t, b.Call(ok))
	require.ErrorIs(t, b.Call(fail), errBoom)
	require.Equal(t, Closed, b.State())

	// second failure out of four reaches the ratio
	require.ErrorIs(t, b.Call(fail), errBoom)
	require.Equal(t, Open, b.State())

	called := false
	require.ErrorIs(t, b.Call(func() error { called = true; return nil }), ErrOpen)
	require.False(t, called)

	now = now.Add(2 * time.Minute)
	require.ErrorIs(t, b.Call(fail), errBoom)
	require.Equal(t, Open, b.State(), "failed probe reopens")

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Call(ok))
	require.Equal(t, HalfOpen, b.State())
	require.NoError(t, b.Call(ok))
	require.Equal(t, Closed, b.State())
}

func TestBreaker_Defaults(t *testing.T) {
	b := New(Config{FailureRatio: 1})
	for i := 0; i < 9; i++ {
		require.ErrorIs(t, b.Call(func() error { return errBoom }), errBoom)
	}
	require.Equal(t, Closed, b.State())
	require.ErrorIs(t, b.Call(func() error { return errBoom }), errBoom)
	require.Equal(t, Open, b.State())
	require.Equal(t, "open", b.State().String())
}
