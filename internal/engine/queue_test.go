package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	for i := 0; i < 3; i++ {
		require.True(t, q.Enqueue(Press(i)))
	}
	assert.Equal(t, 3, q.Len())

	for i := 0; i < 3; i++ {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, ev.Position)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_SignalOnEnqueue(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(Release(4))

	select {
	case <-q.Wait():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("enqueue did not signal")
	}
}

func TestEventQueue_Close(t *testing.T) {
	q := newEventQueue()
	q.Close()
	q.Close() // second close is a no-op

	assert.False(t, q.Enqueue(Press(0)), "enqueue after close should return false")

	select {
	case _, open := <-q.Wait():
		assert.False(t, open, "signal channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("close did not wake waiters")
	}
}

func TestEventKind(t *testing.T) {
	assert.Equal(t, "press", EventPress.String())
	assert.Equal(t, "release", EventRelease.String())
	assert.Equal(t, "EventKind(9)", EventKind(9).String())

	k, err := ParseEventKind("release")
	require.NoError(t, err)
	assert.Equal(t, EventRelease, k)

	_, err = ParseEventKind("tap")
	assert.Error(t, err)
}
