package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingEvicter struct {
	calls atomic.Int32
	idle  atomic.Int64
}

func (c *countingEvicter) EvictIdle(idle time.Duration) int {
	c.idle.Store(int64(idle))
	c.calls.Add(1)
	return 1
}

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep() int {
	c.calls.Add(1)
	return 0
}

func TestSessionJanitor(t *testing.T) {
	evicter := &countingEvicter{}
	sweeper := &countingSweeper{}
	janitor := NewSessionJanitor(evicter, sweeper, JanitorConfig{
		SessionInterval: 5 * time.Millisecond,
		SessionIdle:     time.Minute,
		SweepInterval:   5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	janitor.Start(ctx)

	assert.Eventually(t, func() bool {
		return evicter.calls.Load() >= 2 && sweeper.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(time.Minute), evicter.idle.Load())

	cancel()
	janitor.Wait()
}

func TestSessionJanitor_NoSweeper(t *testing.T) {
	evicter := &countingEvicter{}
	janitor := NewSessionJanitor(evicter, nil, JanitorConfig{SessionInterval: 5 * time.Millisecond})
	assert.Equal(t, 30*time.Minute, janitor.cfg.SessionIdle)

	ctx, cancel := context.WithCancel(context.Background())
	janitor.Start(ctx)
	assert.Eventually(t, func() bool { return evicter.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	janitor.Wait()
}
