package trackerstore

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestHealthProbe_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := createTestStore(t)
	probe := NewHealthProbe(store, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	if !store.IsHealthy() {
		t.Error("expected store to remain healthy while reachable")
	}

	probe.Stop()
}

func TestHealthProbe_DetectsClosedConnection(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := createTestStore(t)
	probe := NewHealthProbe(store, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	probe.Start(ctx)

	_ = store.Close()
	time.Sleep(50 * time.Millisecond)

	if store.IsHealthy() {
		t.Error("expected probe to observe the closed connection")
	}

	cancel()
	probe.Stop()
}
