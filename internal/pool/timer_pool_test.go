package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerPool(t *testing.T) {
	require := require.New(t)

	t.Run("Get and Put", func(t *testing.T) {
		timer := GetTimer(10 * time.Millisecond)
		require.NotNil(timer)

		select {
		case <-timer.C:
		case <-time.After(time.Second):
			require.Fail("timer did not fire")
		}

		PutTimer(timer)
	})

	t.Run("Reused Timer Fires Again", func(t *testing.T) {
		timer := GetTimer(time.Hour)
		PutTimer(timer)

		reused := GetTimer(10 * time.Millisecond)
		select {
		case <-reused.C:
		case <-time.After(time.Second):
			require.Fail("reused timer did not fire")
		}
		PutTimer(reused)
	})

	t.Run("Put Expired Timer", func(t *testing.T) {
		timer := GetTimer(5 * time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		// expired and undrained; PutTimer drains the channel
		PutTimer(timer)

		next := GetTimer(time.Hour)
		select {
		case <-next.C:
			require.Fail("stale expiry leaked into the reused timer")
		case <-time.After(30 * time.Millisecond):
		}
		PutTimer(next)
	})
}
