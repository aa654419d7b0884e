package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmptyPipelineIsIdentity(t *testing.T) {
	draft := Draft{Name: "Widget", Price: 9.99}

	out, err := New().Run(context.Background(), draft)
	require.NoError(t, err)
	require.Equal(t, draft, out)
}

func TestStagesRunInOrder(t *testing.T) {
	upper := func(_ context.Context, d Draft) (Draft, error) {
		d.Name = strings.ToUpper(d.Name)
		return d, nil
	}
	suffix := func(_ context.Context, d Draft) (Draft, error) {
		d.Name += "!"
		return d, nil
	}

	out, err := New(upper, suffix).Run(context.Background(), Draft{Name: "widget"})
	require.NoError(t, err)
	require.Equal(t, "WIDGET!", out.Name)
}

func TestFailingStageAbortsRun(t *testing.T) {
	boom := errors.New("invalid draft")
	failing := func(_ context.Context, d Draft) (Draft, error) {
		return d, boom
	}
	var reached bool
	after := func(_ context.Context, d Draft) (Draft, error) {
		reached = true
		return d, nil
	}

	_, err := New(failing, after).Run(context.Background(), Draft{Name: "widget"})
	require.ErrorIs(t, err, boom)
	require.False(t, reached)
}

func TestDelayStageHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DelayStage(time.Second)).Run(ctx, Draft{Name: "widget"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDelayStagePassesDraftThrough(t *testing.T) {
	draft := Draft{Name: "Widget", Description: "blue", Price: 1.50}

	out, err := New(DelayStage(time.Millisecond)).Run(context.Background(), draft)
	require.NoError(t, err)
	require.Equal(t, draft, out)
}
