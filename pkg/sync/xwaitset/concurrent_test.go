package xwaitset

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentSignalsAllObserved K 个生产者并发 Signal K 个不同触发器，
// 单个消费循环必须不重不漏地收齐全部 group id。
func TestConcurrentSignalsAllObserved(t *testing.T) {
	const k = 32
	ws, err := New(WithCapacity(k))
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	latches := make([]Latch, k)
	handles := make([]Handle, k)
	for i := 0; i < k; i++ {
		h, err := ws.AttachLatch(i, &latches[i], WithGroupID(uint64(i)))
		require.NoError(t, err)
		handles[i] = h
	}

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws.Signal(handles[i])
		}(i)
	}

	seen := make(map[uint64]int)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for len(seen) < k {
		states, err := ws.Wait(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, states)
		for _, st := range states {
			seen[st.GroupID()]++
			latches[st.GroupID()].Reset()
		}
	}
	wg.Wait()

	require.Len(t, seen, k)
	for id, n := range seen {
		// Level-triggered re-reads before reset are possible in theory,
		// but each latch is reset in the same batch it is observed in,
		// so each id is observed exactly once here.
		assert.Equal(t, 1, n, "group %d observed %d times", id, n)
	}
}

// TestMultipleWaitersAllWoken close-channel 广播必须唤醒全部阻塞中的等待者。
func TestMultipleWaitersAllWoken(t *testing.T) {
	const waiters = 8
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)

	results := make(chan error, waiters)
	var started sync.WaitGroup
	for i := 0; i < waiters; i++ {
		started.Add(1)
		go func() {
			started.Done()
			_, err := ws.Wait(context.Background())
			results <- err
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)

	ws.Signal(h)

	// The latch stays set, so every woken waiter finds the predicate true
	for i := 0; i < waiters; i++ {
		select {
		case err := <-results:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatalf("waiter %d was not woken", i)
		}
	}
}

// TestConcurrentAttachDetach 并发注册/注销不破坏容量账目。
func TestConcurrentAttachDetach(t *testing.T) {
	const goroutines = 16
	const rounds = 100

	ws, err := New(WithCapacity(goroutines))
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pred := func() bool { return false }
			for r := 0; r < rounds; r++ {
				h, err := ws.Attach(i, pred)
				if err != nil {
					continue
				}
				ws.Detach(h)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, ws.Len())
}

// TestSignalDuringWaitLoop 生产者持续 Signal 时消费循环不丢唤醒。
func TestSignalDuringWaitLoop(t *testing.T) {
	const fires = 50

	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	var latch Latch
	h, err := ws.AttachLatch("a", &latch)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < fires; i++ {
			ws.Signal(h)
			time.Sleep(time.Millisecond)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	consumed := 0
	for consumed < fires {
		states, err := ws.TimedWait(ctx, 500*time.Millisecond)
		if err != nil {
			// Producer may have finished between our reset and this wait
			break
		}
		require.NotEmpty(t, states)
		consumed++
		latch.Reset()
	}
	<-done

	// Signals may coalesce while the latch is already set, but at least
	// one dispatch must have happened and none may deadlock.
	assert.Positive(t, consumed)
}

// TestDetachWhileWaiterBlocked 等待期间注销最后一个触发器后，
// 等待者继续阻塞直到 ctx 超时，而不是崩溃或空转。
func TestDetachWhileWaiterBlocked(t *testing.T) {
	ws, err := New()
	require.NoError(t, err)
	defer func() { require.NoError(t, ws.Close()) }()

	h, err := ws.Attach("a", func() bool { return false })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := ws.Wait(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	ws.Detach(h)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return after ctx deadline")
	}
}
