package countdown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

type manualScheduler struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (s *manualScheduler) NewTicker(time.Duration) Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time, 8)}
	s.tickers = append(s.tickers, t)
	return t
}

func (s *manualScheduler) ticker(i int) *manualTicker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickers[i]
}

const waitFor = time.Second
const pollEvery = 5 * time.Millisecond

func TestCountdown_StartsAtConfiguredSeconds(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	c.Start()
	defer c.Stop()

	assert.Equal(t, DefaultSeconds, c.Remaining())
	assert.True(t, c.Active())
	assert.False(t, c.ResendAvailable())
}

func TestCountdown_DecrementsPerTick(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	c.Start()
	defer c.Stop()

	sched.ticker(0).ch <- time.Now()
	sched.ticker(0).ch <- time.Now()
	assert.Eventually(t, func() bool { return c.Remaining() == DefaultSeconds-2 }, waitFor, pollEvery)
}

func TestCountdown_ReachingZeroEnablesResend(t *testing.T) {
	sched := &manualScheduler{}
	var expired atomic.Int32
	c := New(WithScheduler(sched), WithSeconds(2), WithOnExpire(func() { expired.Add(1) }))
	c.Start()

	tk := sched.ticker(0)
	tk.ch <- time.Now()
	tk.ch <- time.Now()

	assert.Eventually(t, c.ResendAvailable, waitFor, pollEvery)
	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Active())
	assert.Eventually(t, tk.stopped.Load, waitFor, pollEvery)
	assert.Equal(t, int32(1), expired.Load())
}

func TestCountdown_RestartLeavesSingleLiveTimer(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	c.Start()
	c.Start()
	defer c.Stop()

	first, second := sched.ticker(0), sched.ticker(1)
	assert.Eventually(t, first.stopped.Load, waitFor, pollEvery)

	first.ch <- time.Now()
	second.ch <- time.Now()
	assert.Eventually(t, func() bool { return c.Remaining() == DefaultSeconds-1 }, waitFor, pollEvery)

	// a late tick on the cancelled ticker never reaches the new countdown
	first.ch <- time.Now()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, DefaultSeconds-1, c.Remaining())
}

func TestCountdown_StopCancels(t *testing.T) {
	sched := &manualScheduler{}
	c := New(WithScheduler(sched))
	c.Start()
	c.Stop()

	require.False(t, c.Active())
	assert.Eventually(t, sched.ticker(0).stopped.Load, waitFor, pollEvery)
	c.Stop()
	assert.False(t, c.ResendAvailable())
}
