package s7

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plctalk/go-s7/logger"
)

func TestTaskManagerStart(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	mgr := NewTaskManager(ctx, logger.GetLogger())

	var runs atomic.Int32
	err := mgr.Start("counting", func() bool {
		return runs.Add(1) < 3
	})
	require.NoError(err)

	require.Eventually(func() bool { return runs.Load() == 3 }, time.Second, 5*time.Millisecond)
	require.Eventually(func() bool { return mgr.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

	mgr.Stop()
	mgr.Wait()
}

func TestTaskManagerStartInterval(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()

	t.Run("Invalid Interval", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())
		require.Error(mgr.StartInterval("bad", func() bool { return true }, 0, false))
	})

	t.Run("Run Now", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())

		var runs atomic.Int32
		err := mgr.StartInterval("ticking", func() bool {
			runs.Add(1)
			return true
		}, time.Hour, true)
		require.NoError(err)
		require.Equal(int32(1), runs.Load())

		mgr.Stop()
		mgr.Wait()
	})

	t.Run("Periodic Execution", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())

		var runs atomic.Int32
		err := mgr.StartInterval("ticking", func() bool {
			runs.Add(1)
			return true
		}, 10*time.Millisecond, false)
		require.NoError(err)

		require.Eventually(func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

		mgr.Stop()
		mgr.Wait()
	})

	t.Run("Task Returning False Stops The Ticker", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())

		var runs atomic.Int32
		err := mgr.StartInterval("oneshot", func() bool {
			runs.Add(1)
			return false
		}, 10*time.Millisecond, false)
		require.NoError(err)

		require.Eventually(func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
		require.Eventually(func() bool { return mgr.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

		// the ticker was cleaned up with the task
		require.Error(mgr.StopInterval("oneshot"))

		mgr.Stop()
		mgr.Wait()
	})

	t.Run("Rearm Under Same Name", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())

		var first, second atomic.Int32
		require.NoError(mgr.StartInterval("liveness", func() bool {
			first.Add(1)
			return true
		}, 10*time.Millisecond, false))

		require.NoError(mgr.StartInterval("liveness", func() bool {
			second.Add(1)
			return true
		}, 10*time.Millisecond, false))

		require.Eventually(func() bool { return second.Load() >= 2 }, time.Second, 5*time.Millisecond)

		// the replaced task's goroutine exited, only the rearmed one remains
		require.Eventually(func() bool { return mgr.TaskCount() == 1 }, time.Second, 5*time.Millisecond)

		mgr.Stop()
		mgr.Wait()
	})

	t.Run("StopInterval Releases The Goroutine", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())

		require.NoError(mgr.StartInterval("liveness", func() bool { return true }, time.Hour, false))
		require.Equal(1, mgr.TaskCount())

		require.NoError(mgr.StopInterval("liveness"))
		require.Eventually(func() bool { return mgr.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

		mgr.Stop()
		mgr.Wait()
	})

	t.Run("Repeated Rearm Does Not Accumulate Goroutines", func(t *testing.T) {
		mgr := NewTaskManager(ctx, logger.GetLogger())

		for i := 0; i < 20; i++ {
			require.NoError(mgr.StartInterval("liveness", func() bool { return true }, time.Hour, false))
			require.NoError(mgr.StopInterval("liveness"))
		}
		require.Eventually(func() bool { return mgr.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

		mgr.Stop()
		mgr.Wait()
	})
}

func TestTaskManagerStopInterval(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	mgr := NewTaskManager(ctx, logger.GetLogger())

	require.Error(mgr.StopInterval("missing"))

	var runs atomic.Int32
	require.NoError(mgr.StartInterval("ticking", func() bool {
		runs.Add(1)
		return true
	}, 10*time.Millisecond, false))

	require.Eventually(func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(mgr.StopInterval("ticking"))

	seen := runs.Load()
	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(runs.Load(), seen+1)

	mgr.Stop()
	mgr.Wait()
}

func TestTaskManagerReuseAfterStop(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	mgr := NewTaskManager(ctx, logger.GetLogger())

	var runs atomic.Int32
	require.NoError(mgr.Start("loop", func() bool {
		runs.Add(1)
		time.Sleep(time.Millisecond)
		return true
	}))

	mgr.Stop()
	mgr.Wait()

	// Wait recreated the context, the manager accepts new tasks
	require.NoError(mgr.Start("loop", func() bool { return false }))
	require.Eventually(func() bool { return mgr.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

	mgr.Stop()
	mgr.Wait()
}

func TestTaskManagerPanicRecovery(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	mgr := NewTaskManager(ctx, logger.GetLogger())

	require.NoError(mgr.StartInterval("panicking", func() bool {
		panic("boom")
	}, 10*time.Millisecond, false))

	// the panic is recovered; callWithRecover reports false and the task ends
	require.Eventually(func() bool { return mgr.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

	mgr.Stop()
	mgr.Wait()
}
