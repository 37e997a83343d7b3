package gpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/slate/core"
)

func TestFenceMarkersAreMonotonic(t *testing.T) {
	f := newFence(time.Second)

	require.NoError(t, f.signal(1))
	require.NoError(t, f.signal(2))
	assert.Error(t, f.signal(2), "reusing a marker must be rejected")
	assert.Error(t, f.signal(1), "going backwards must be rejected")

	assert.Equal(t, uint64(0), f.Completed())
	f.retire(2)
	assert.Equal(t, uint64(2), f.Completed())

	// Retiring an older marker never moves completion backwards.
	f.retire(1)
	assert.Equal(t, uint64(2), f.Completed())
}

func TestFenceWaitReturnsOnceRetired(t *testing.T) {
	f := newFence(time.Second)
	require.NoError(t, f.signal(1))

	done := make(chan error, 1)
	go func() { done <- f.Wait(1) }()

	f.retire(1)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not wake up after retire")
	}
}

func TestFenceWaitTimeoutIsDeviceLost(t *testing.T) {
	f := newFence(10 * time.Millisecond)
	require.NoError(t, f.signal(1))

	err := f.Wait(1)
	require.ErrorIs(t, err, core.ErrDeviceLost)
}

func TestFenceRetireAllDrainsQueue(t *testing.T) {
	f := newFence(time.Second)
	require.NoError(t, f.signal(1))
	require.NoError(t, f.signal(2))
	require.NoError(t, f.signal(3))

	f.retireAll()
	assert.Equal(t, uint64(3), f.Completed())
	assert.NoError(t, f.Wait(3))
}

func TestRecorderResetGatedOnCompletion(t *testing.T) {
	f := newFence(time.Second)
	rec := &recorder{fence: f}

	// A never-used recorder resets freely.
	require.NoError(t, rec.Reset())

	require.NoError(t, f.signal(4))
	rec.pending = 4
	rec.fresh = false

	err := rec.Reset()
	require.Error(t, err, "reset must fail while the recorded work is in flight")

	f.retire(4)
	require.NoError(t, rec.Reset())
	assert.True(t, rec.fresh)
}
