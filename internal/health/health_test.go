package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestProber_AllHealthy(t *testing.T) {
	p := New(10*time.Millisecond, []Check{
		NewCheck("simple", func(ctx context.Context) error { return nil }),
		NewCheck("complex", func(ctx context.Context) error { return nil }),
	}, nil, nil)

	p.runOnce(context.Background())
	snap := p.Snapshot()
	require.Equal(t, StatusHealthy, snap.Status)
	require.True(t, p.Ready())
}

func TestProber_PartialFailureIsDegradedAndReady(t *testing.T) {
	p := New(10*time.Millisecond, []Check{
		NewCheck("simple", func(ctx context.Context) error { return nil }),
		NewCheck("cache", func(ctx context.Context) error { return errors.New("down") }),
	}, nil, nil)

	p.runOnce(context.Background())
	snap := p.Snapshot()
	require.Equal(t, StatusDegraded, snap.Status)
	require.True(t, p.Ready())
}

func TestProber_AllUnhealthyIsNotReady(t *testing.T) {
	p := New(10*time.Millisecond, []Check{
		NewCheck("simple", func(ctx context.Context) error { return errors.New("down") }),
	}, nil, nil)

	p.runOnce(context.Background())
	require.False(t, p.Ready())
}

func TestProber_UnprobedChecksAreDegraded(t *testing.T) {
	p := New(time.Second, []Check{
		NewCheck("simple", func(ctx context.Context) error { return nil }),
	}, nil, nil)

	snap := p.Snapshot()
	require.Equal(t, StatusDegraded, snap.Status)
}

// TestProber_RunStopsCleanly guards against the one way this package could
// leak goroutines: Run's ticker loop outliving its caller. Cancelling ctx
// must unblock Run and leave nothing behind (§4.8 "must not itself block
// the request path" implies it also must not outlive it).
func TestProber_RunStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(5*time.Millisecond, []Check{
		NewCheck("simple", func(ctx context.Context) error { return nil }),
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
