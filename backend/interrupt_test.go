package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterrupter(t *testing.T) {
	i := NewInterrupter()
	assert.False(t, i.Interrupted())

	select {
	case <-i.Done():
		t.Fatal("done channel closed before interrupt")
	default:
	}

	i.Interrupt()
	assert.True(t, i.Interrupted())

	select {
	case <-i.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after interrupt")
	}

	// idempotent
	i.Interrupt()
	assert.True(t, i.Interrupted())
}

func TestInterrupterUnblocksWaiter(t *testing.T) {
	i := NewInterrupter()
	done := make(chan struct{})
	go func() {
		<-i.Done()
		close(done)
	}()
	i.Interrupt()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
	require.True(t, i.Interrupted())
}
