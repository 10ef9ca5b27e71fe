package breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is how many recent calls are tracked.
	Window int
	// FailureRatio of the window that trips the breaker.
	FailureRatio float64
	// Cooldown before an open breaker lets a probe call through.
	Cooldown time.Duration
	// Recovery is the number of consecutive successful probes that close it again.
	Recovery int
}

// Breaker fails calls fast once a dependency keeps failing.
type Breaker struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	state    State
	openedAt time.Time
	window   []bool // true marks a failed call
	pos      int
	probes   int
}

func New(cfg Config) *Breaker {
	if cfg.Window <= 0 {
		cfg.Window = 10
	}
	if cfg.Recovery <= 0 {
		cfg.Recovery = 1
	}
	return &Breaker{
		cfg:    cfg,
		now:    time.Now,
		state:  Closed,
		window: make([]bool, cfg.Window),
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == Open {
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = HalfOpen
		b.probes = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(err != nil)
	return err
}

func (b *Breaker) record(failed bool) {
	b.window[b.pos] = failed
	b.pos = (b.pos + 1) % len(b.window)

	if b.state == HalfOpen {
		if failed {
			b.trip()
			return
		}
		b.probes++
		if b.probes >= b.cfg.Recovery {
			b.reset()
		}
		return
	}

	fails := 0
	for _, f := range b.window {
		if f {
			fails++
		}
	}
	if float64(fails)/float64(len(b.window)) >= b.cfg.FailureRatio {
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.probes = 0
	b.openedAt = b.now()
}

func (b *Breaker) reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.pos = 0
	b.probes = 0
	b.state = Closed
}
