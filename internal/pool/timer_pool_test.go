package pool

import (
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"
)

func TestTimerPool(t *testing.T) {
	t.Run("Get and Put", func(t *testing.T) {
		timer := GetTimer(10 * time.Millisecond)
		require.NotNil(t, timer)
		<-timer.C
		PutTimer(timer)

		timer = GetTimer(10 * time.Millisecond)
		require.NotNil(t, timer)
		<-timer.C
		PutTimer(timer)
	})

	t.Run("Put Active Timer", func(t *testing.T) {
		timer := GetTimer(50 * time.Millisecond)
		PutTimer(timer)

		begin := time.Now()
		timer = GetTimer(200 * time.Millisecond)
		defer PutTimer(timer)

		select {
		case fired := <-timer.C:
			require.GreaterOrEqual(t, fired.Sub(begin), 180*time.Millisecond)
		case <-time.After(time.Second):
			t.Fatal("timer should fire within a second")
		}
	})

	t.Run("Expired Timer Doesn't Fire Early", func(t *testing.T) {
		timer := GetTimer(10 * time.Millisecond)
		time.Sleep(30 * time.Millisecond)
		PutTimer(timer)

		timer = GetTimer(time.Hour)
		defer PutTimer(timer)

		select {
		case <-timer.C:
			t.Fatal("reused timer delivered a stale expiry")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Concurrency", func(t *testing.T) {
		var wg conc.WaitGroup
		for range 100 {
			wg.Go(func() {
				timer := GetTimer(10 * time.Millisecond)
				defer PutTimer(timer)
				<-timer.C
			})
		}
		wg.Wait()
	})
}
