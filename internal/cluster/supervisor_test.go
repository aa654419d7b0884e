package cluster

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDoublesFromBase(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, Backoff(0))
	assert.Equal(t, 500*time.Millisecond, Backoff(1))
	assert.Equal(t, 1*time.Second, Backoff(2))
	assert.Equal(t, 2*time.Second, Backoff(3))
}

func TestBackoffCapsAtThirtySeconds(t *testing.T) {
	assert.Equal(t, 30*time.Second, Backoff(20))
	assert.Equal(t, 30*time.Second, Backoff(1000))
}

func TestIsWorker(t *testing.T) {
	assert.False(t, IsWorker())

	t.Setenv(workerEnv, "3")
	assert.True(t, IsWorker())
}

func TestWithWorkersIgnoresNonPositive(t *testing.T) {
	s := NewSupervisor(WithWorkers(0))
	assert.Positive(t, s.workers)

	s = NewSupervisor(WithWorkers(4))
	assert.Equal(t, 4, s.workers)
}

func TestListenSharesPortBetweenListeners(t *testing.T) {
	ctx := context.Background()

	first, err := Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()

	addr := first.Addr().(*net.TCPAddr)

	second, err := Listen(ctx, addr.String())
	if err != nil {
		t.Skipf("SO_REUSEPORT not available: %v", err)
	}
	defer second.Close()
}
