// Package countdown gates the OTP resend action. At most one countdown is
// live per owner: starting a new one cancels the previous goroutine.
package countdown

import (
	"sync"
	"time"
)

// DefaultSeconds is the length of a countdown started on every OTP (re)issue.
const DefaultSeconds = 60

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Scheduler creates tickers. Production uses SystemScheduler; tests drive
// ticks by hand.
type Scheduler interface {
	NewTicker(d time.Duration) Ticker
}

// SystemScheduler is backed by time.Ticker.
type SystemScheduler struct{}

func (SystemScheduler) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// Countdown decrements once per tick from Seconds to zero. It never touches
// the transaction it gates; expiry on the server is not its concern.
type Countdown struct {
	mu              sync.Mutex
	scheduler       Scheduler
	interval        time.Duration
	seconds         int
	remaining       int
	running         bool
	resendAvailable bool
	generation      uint64
	stop            chan struct{}
	onExpire        func()
}

// Option configures a Countdown.
type Option func(*Countdown)

func WithScheduler(s Scheduler) Option {
	return func(c *Countdown) {
		if s != nil {
			c.scheduler = s
		}
	}
}

func WithSeconds(n int) Option {
	return func(c *Countdown) {
		if n > 0 {
			c.seconds = n
		}
	}
}

// WithInterval sets the tick length (one second by default).
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithOnExpire registers a callback run once when a countdown reaches zero.
// It runs on the countdown goroutine without the lock held.
func WithOnExpire(fn func()) Option {
	return func(c *Countdown) {
		c.onExpire = fn
	}
}

// New builds an idle countdown.
func New(opts ...Option) *Countdown {
	c := &Countdown{
		scheduler: SystemScheduler{},
		interval:  time.Second,
		seconds:   DefaultSeconds,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.remaining = c.seconds
	return c
}

// Start (re)starts the countdown from the configured seconds and disables
// resend. A countdown already running is cancelled first.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.remaining = c.seconds
	c.resendAvailable = false
	c.running = true
	c.stop = make(chan struct{})

	ticker := c.scheduler.NewTicker(c.interval)
	go c.run(ticker, c.stop, c.generation)
}

// Stop cancels a running countdown. Safe to call when idle.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// Seconds returns the length each run starts from.
func (c *Countdown) Seconds() int {
	return c.seconds
}

// Remaining returns the seconds left on the current countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Active reports whether a countdown goroutine is live.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// ResendAvailable reports whether the last countdown ran to zero.
func (c *Countdown) ResendAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resendAvailable
}

func (c *Countdown) cancelLocked() {
	c.generation++
	if c.running {
		close(c.stop)
		c.running = false
	}
}

func (c *Countdown) run(t Ticker, stop <-chan struct{}, gen uint64) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			expired, live := c.decrement(gen)
			if expired && c.onExpire != nil {
				c.onExpire()
			}
			if !live {
				return
			}
		}
	}
}

// decrement applies one tick for generation gen. It returns whether this tick
// expired the countdown and whether the goroutine should keep running.
func (c *Countdown) decrement(gen uint64) (expired, live bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false, false
	}
	c.remaining--
	if c.remaining > 0 {
		return false, true
	}
	c.remaining = 0
	c.running = false
	c.resendAvailable = true
	c.generation++
	return true, false
}
