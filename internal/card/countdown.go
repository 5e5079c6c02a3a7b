package card

import "time"

// CountdownPeriod is the countdown refresh interval.
const CountdownPeriod = time.Second

// Scheduler owns the countdown timer of one card.
// Start is a no-op while running; Stop always releases the timer.
type Scheduler interface {
	Start()
	Stop()
	Running() bool
}

// Ticker is the subset of *time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Countdown is a ticker-backed Scheduler. It is not safe for concurrent use;
// it belongs to the goroutine that runs the card.
type Countdown struct {
	period    time.Duration
	newTicker func(time.Duration) Ticker
	ticker    Ticker
}

// NewCountdown returns a stopped countdown. newTicker may be nil.
func NewCountdown(period time.Duration, newTicker func(time.Duration) Ticker) *Countdown {
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Countdown{period: period, newTicker: newTicker}
}

func (c *Countdown) Start() {
	if c.ticker != nil {
		return
	}
	c.ticker = c.newTicker(c.period)
}

func (c *Countdown) Stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

func (c *Countdown) Running() bool { return c.ticker != nil }

// C returns the tick channel, or nil while stopped so that a select on it
// blocks.
func (c *Countdown) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}
