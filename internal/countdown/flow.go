package countdown

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Ticker delivers one value per period until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker with the given period.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker is the TickerFactory backed by time.Ticker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Flow owns one Machine and at most one running ticker for a single request surface.
type Flow struct {
	machine   *Machine
	newTicker TickerFactory
	onChange  func(State)

	mu     sync.Mutex
	gen    uint64
	ticker Ticker
	stop   chan struct{}
}

// Option configures a Flow.
type Option func(*Flow)

// WithTickerFactory replaces the real one-second ticker.
func WithTickerFactory(f TickerFactory) Option {
	return func(fl *Flow) { fl.newTicker = f }
}

// WithDefaultSeconds sets the countdown used when the server gave no hint.
func WithDefaultSeconds(seconds int) Option {
	return func(fl *Flow) { fl.machine = NewMachine(seconds) }
}

// WithOnChange registers a callback invoked after every state change. It runs on
// the ticker goroutine and must not call back into the Flow.
func WithOnChange(fn func(State)) Option {
	return func(fl *Flow) { fl.onChange = fn }
}

// NewFlow creates an idle flow.
func NewFlow(opts ...Option) *Flow {
	f := &Flow{
		machine:   NewMachine(DefaultCooldownSeconds),
		newTicker: NewRealTicker,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit runs fn unless a countdown is active, in which case it returns
// ErrCoolingDown without calling fn. A *RateLimitedError from fn starts a
// countdown; a *PaymentRequiredError does not.
func (f *Flow) Submit(ctx context.Context, fn func(context.Context) error) error {
	if err := f.machine.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		f.Start(rl.RetryAfter)
	}
	return err
}

// Start begins a countdown, replacing any countdown already running.
func (f *Flow) Start(retryAfter *int) State {
	f.mu.Lock()
	f.stopLocked()
	st := f.machine.Start(retryAfter)
	if st.Active {
		f.ticker = f.newTicker(time.Second)
		f.stop = make(chan struct{})
		go f.run(f.gen, f.ticker, f.stop)
	}
	f.mu.Unlock()

	f.notify(st)
	return st
}

// Clear stops the countdown and resets to Idle.
func (f *Flow) Clear() {
	f.mu.Lock()
	f.stopLocked()
	f.machine.Clear()
	f.mu.Unlock()
	f.notify(Idle)
}

// State returns the current countdown state.
func (f *Flow) State() State {
	return f.machine.State()
}

// Close stops the ticker without changing the state.
func (f *Flow) Close() {
	f.mu.Lock()
	f.stopLocked()
	f.mu.Unlock()
}

// stopLocked invalidates the running countdown goroutine and stops its ticker.
func (f *Flow) stopLocked() {
	f.gen++
	if f.ticker != nil {
		f.ticker.Stop()
		f.ticker = nil
	}
	if f.stop != nil {
		close(f.stop)
		f.stop = nil
	}
}

func (f *Flow) run(gen uint64, t Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-t.C():
		}

		f.mu.Lock()
		if f.gen != gen {
			f.mu.Unlock()
			return
		}
		st := f.machine.Tick()
		if !st.Active {
			f.stopLocked()
		}
		f.mu.Unlock()

		f.notify(st)
		if !st.Active {
			return
		}
	}
}

func (f *Flow) notify(st State) {
	if f.onChange != nil {
		f.onChange(st)
	}
}
