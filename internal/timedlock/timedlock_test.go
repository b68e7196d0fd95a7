package timedlock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockAcquireRelease(t *testing.T) {
	l := New()
	require.NoError(t, l.Acquire(time.Second))
	l.Release()
	require.NoError(t, l.Acquire(time.Second))
	l.Release()
}

func TestLockTimesOutWhenHeld(t *testing.T) {
	l := New()
	require.NoError(t, l.Acquire(time.Second))
	defer l.Release()

	start := time.Now()
	err := l.Acquire(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestLockZeroTimeoutOnlyWhenFree(t *testing.T) {
	l := New()
	require.NoError(t, l.Acquire(0))
	assert.ErrorIs(t, l.Acquire(0), ErrTimeout)
	l.Release()
	assert.NoError(t, l.Acquire(0))
}

func TestLockReleaseUnheldPanics(t *testing.T) {
	l := New()
	assert.Panics(t, func() { l.Release() })
}
