package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errBackend = errors.New("backend down")

func failing() error { return errBackend }
func succeeding() error { return nil }

func TestBreaker_PassesThrough(t *testing.T) {
	b := New(DefaultSettings("test"))

	assert.NoError(t, b.Execute(succeeding))
	assert.ErrorIs(t, b.Execute(failing), errBackend)
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, "test", b.Name())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := New(Settings{Name: "journal", FailureThreshold: 3, Timeout: time.Minute, Logger: zap.New(core)})

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, b.Execute(failing), errBackend)
	}
	assert.Equal(t, "open", b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	require.Equal(t, 1, logs.FilterMessage("circuit breaker state changed").Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "journal", fields["breaker"])
	assert.Equal(t, "open", fields["to"])
}

func TestBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	b := New(Settings{Name: "test", FailureThreshold: 2, Timeout: time.Minute})

	_ = b.Execute(failing)
	_ = b.Execute(succeeding)
	_ = b.Execute(failing)

	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New(Settings{Name: "test", FailureThreshold: 1, MaxRequests: 1, Timeout: 20 * time.Millisecond})

	_ = b.Execute(failing)
	require.Equal(t, "open", b.State())

	require.Eventually(t, func() bool { return b.State() == "half-open" }, time.Second, 5*time.Millisecond)
	assert.NoError(t, b.Execute(succeeding))
	assert.Equal(t, "closed", b.State())
}
