package xwaitset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewDefaults(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	assert.Equal(t, 128, ws.Capacity())
	assert.Equal(t, 0, ws.Len())
}

func TestNewInvalidCapacity(t *testing.T) {
	_, err := New(WithCapacity(0))
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New(WithCapacity(-1))
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = New(WithCapacity(1 << 17))
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestAttachNilPredicate(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	_, err = ws.Attach("origin", nil)
	assert.ErrorIs(t, err, ErrNilPredicate)
	assert.Equal(t, 0, ws.Len())
}

func TestAttachLatchNilLatch(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	_, err = ws.AttachLatch("origin", nil)
	assert.ErrorIs(t, err, ErrNilLatch)
}

func TestAttachCapacityExceeded(t *testing.T) {
	const capacity = 4
	ws, err := New(WithCapacity(capacity))
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	pred := func() bool { return false }
	for i := 0; i < capacity; i++ {
		_, err := ws.Attach(i, pred)
		require.NoError(t, err)
	}
	assert.Equal(t, capacity, ws.Len())

	// One past capacity fails, table unchanged
	_, err = ws.Attach(capacity, pred)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, capacity, ws.Len())
}

func TestDetachFreesCapacity(t *testing.T) {
	ws, err := New(WithCapacity(1))
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	pred := func() bool { return false }
	h, err := ws.Attach("a", pred)
	require.NoError(t, err)

	_, err = ws.Attach("b", pred)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	ws.Detach(h)
	assert.Equal(t, 0, ws.Len())

	_, err = ws.Attach("b", pred)
	assert.NoError(t, err)
}

func TestDetachIdempotent(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	h, err := ws.Attach("a", func() bool { return false })
	require.NoError(t, err)

	ws.Detach(h)
	assert.Equal(t, 0, ws.Len())

	// Second detach of the same handle is a no-op
	ws.Detach(h)
	assert.Equal(t, 0, ws.Len())

	// Zero-value handle is never issued, always a no-op
	ws.Detach(Handle{})
	assert.Equal(t, 0, ws.Len())
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	ws, err := New(WithCapacity(1))
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	old, err := ws.Attach("a", func() bool { return false })
	require.NoError(t, err)
	ws.Detach(old)

	// Same slot, new generation
	var latch Latch
	fresh, err := ws.AttachLatch("b", &latch)
	require.NoError(t, err)

	// Stale handle must not touch the reused slot
	ws.Detach(old)
	assert.Equal(t, 1, ws.Len())
	ws.Signal(old)
	assert.False(t, latch.Load())

	ws.Detach(fresh)
	assert.Equal(t, 0, ws.Len())
}

func TestDetachHook(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var called int
	h, err := ws.Attach("a", func() bool { return false },
		WithDetachHook(func() { called++ }))
	require.NoError(t, err)

	ws.Detach(h)
	assert.Equal(t, 1, called)

	// Idempotent detach does not re-run the hook
	ws.Detach(h)
	assert.Equal(t, 1, called)
}

func TestWaitNilContextPanics(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	assert.PanicsWithValue(t, "xwaitset: nil Context", func() {
		ws.Wait(nil) //nolint:errcheck,staticcheck // 测试 nil ctx panic 行为
	})
	assert.PanicsWithValue(t, "xwaitset: nil Context", func() {
		ws.TimedWait(nil, time.Second) //nolint:errcheck,staticcheck // 测试 nil ctx panic 行为
	})
}

func TestWaitReturnsSatisfiedTrigger(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch, WithGroupID(7))
	require.NoError(t, err)

	ws.Signal(h)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(7), states[0].GroupID())
	assert.Equal(t, "a", states[0].Origin())
	assert.True(t, latch.Load())
}

func TestWaitLevelTriggered(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)
	ws.Signal(h)

	// Latch not reset: every Wait sees the trigger again
	for i := 0; i < 3; i++ {
		states, err := ws.Wait(context.Background())
		require.NoError(t, err)
		require.Len(t, states, 1)
	}

	// After consumer-side reset the trigger disappears
	latch.Reset()
	_, err = ws.TimedWait(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWaitNoFalsePositives(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latchA, latchB Latch
	hA, err := ws.AttachLatch("a", &latchA, WithGroupID(0))
	require.NoError(t, err)
	_, err = ws.AttachLatch("b", &latchB, WithGroupID(1))
	require.NoError(t, err)

	ws.Signal(hA)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(0), states[0].GroupID())
}

func TestWaitSlotOrder(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var l1, l2, l3 Latch
	h1, err := ws.AttachLatch("first", &l1, WithGroupID(1))
	require.NoError(t, err)
	h2, err := ws.AttachLatch("second", &l2, WithGroupID(2))
	require.NoError(t, err)
	h3, err := ws.AttachLatch("third", &l3, WithGroupID(3))
	require.NoError(t, err)

	// Signal out of registration order
	ws.Signal(h3)
	ws.Signal(h1)
	ws.Signal(h2)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, uint64(1), states[0].GroupID())
	assert.Equal(t, uint64(2), states[1].GroupID())
	assert.Equal(t, uint64(3), states[2].GroupID())
}

func TestWaitBlocksUntilSignal(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)

	done := make(chan []TriggerState, 1)
	go func() {
		states, err := ws.Wait(context.Background())
		if err != nil {
			done <- nil
			return
		}
		done <- states
	}()

	// Give the waiter time to block
	time.Sleep(20 * time.Millisecond)
	ws.Signal(h)

	select {
	case states := <-done:
		require.Len(t, states, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by signal")
	}
}

func TestWaitContextCancel(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	_, err = ws.Attach("a", func() bool { return false })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	states, err := ws.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, states)
}

func TestTimedWaitTimeout(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	_, err = ws.Attach("a", func() bool { return false })
	require.NoError(t, err)

	start := time.Now()
	states, err := ws.TimedWait(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, states)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestTimedWaitDistinctFromContextError(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	_, err = ws.TimedWait(context.Background(), 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimedWaitImmediateResult(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)
	ws.Signal(h)

	// Already-satisfied predicate returns without blocking
	states, err := ws.TimedWait(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, states, 1)
}

func TestTwoTriggerDispatchCycle(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latchA, latchB Latch
	hA, err := ws.AttachLatch("a", &latchA, WithGroupID(0))
	require.NoError(t, err)
	hB, err := ws.AttachLatch("b", &latchB, WithGroupID(1))
	require.NoError(t, err)

	// Round 1: only A fires
	ws.Signal(hA)
	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(0), states[0].GroupID())
	latchA.Reset()

	// Round 2: only B fires
	ws.Signal(hB)
	states, err = ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, uint64(1), states[0].GroupID())
	latchB.Reset()

	// All consumed: bounded wait times out
	_, err = ws.TimedWait(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallbackInvoke(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var fired int
	var latch Latch
	h, err := ws.AttachLatch("a", &latch,
		WithCallback(func() { fired++ }))
	require.NoError(t, err)
	ws.Signal(h)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)

	assert.True(t, states[0].Invoke())
	assert.Equal(t, 1, fired)
}

func TestInvokeWithoutCallback(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)
	ws.Signal(h)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.False(t, states[0].Invoke())
}

func TestOriginAs(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	type device struct{ name string }
	dev := &device{name: "sensor"}

	var latch Latch
	h, err := ws.AttachLatch(dev, &latch)
	require.NoError(t, err)
	ws.Signal(h)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)

	got, ok := OriginAs[*device](states[0])
	require.True(t, ok)
	assert.Equal(t, "sensor", got.name)

	_, ok = OriginAs[string](states[0])
	assert.False(t, ok)
}

func TestSignalStaleHandleNoop(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)
	ws.Detach(h)

	// Signal after detach neither panics nor sets the latch
	ws.Signal(h)
	assert.False(t, latch.Load())
}

func TestAttachAfterClose(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	require.NoError(t, ws.Close())

	_, err = ws.Attach("a", func() bool { return true })
	assert.ErrorIs(t, err, ErrClosed)

	var latch Latch
	_, err = ws.AttachLatch("a", &latch)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseIdempotent(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	assert.NoError(t, ws.Close())
	assert.ErrorIs(t, ws.Close(), ErrClosed)
}

func TestCloseRunsDetachHooks(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)

	var hooks int
	for i := 0; i < 3; i++ {
		_, err := ws.Attach(i, func() bool { return false },
			WithDetachHook(func() { hooks++ }))
		require.NoError(t, err)
	}

	require.NoError(t, ws.Close())
	assert.Equal(t, 3, hooks)
	assert.Equal(t, 0, ws.Len())
}

func TestCloseWakesBlockedWaiter(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)

	_, err = ws.Attach("a", func() bool { return false })
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := ws.Wait(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ws.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by close")
	}
}

func TestWaitOnClosedSet(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	require.NoError(t, ws.Close())

	_, err = ws.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ws.TimedWait(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLatch(t *testing.T) {
	var l Latch
	assert.False(t, l.Load())

	l.Set()
	assert.True(t, l.Load())

	// Set is idempotent
	l.Set()
	assert.True(t, l.Load())

	l.Reset()
	assert.False(t, l.Load())
}

func TestPlainAttachSignalBroadcastOnly(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var ready Latch
	h, err := ws.Attach("a", ready.Load)
	require.NoError(t, err)

	// Producer updates its own state before signaling
	ready.Set()
	ws.Signal(h)

	states, err := ws.Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
}
