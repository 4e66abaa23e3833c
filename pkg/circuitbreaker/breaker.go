package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type Config struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
	// SuccessThreshold consecutive half-open successes close it again.
	SuccessThreshold int
	Logger           *zap.Logger
}

// Breaker guards calls to a remote collaborator (graph store, vector store,
// embedding API).
type Breaker struct {
	name string
	cfg  Config
	now  func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	openedAt    time.Time
	trialActive bool
}

func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

func (b *Breaker) Name() string { return b.name }

// Execute runs fn unless the breaker is open. A half-open breaker admits one
// trial call at a time.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh()
	switch b.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.trialActive {
			return ErrCircuitOpen
		}
		b.trialActive = true
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialActive = false
	if success {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.transition(StateClosed)
			}
		}
		return
	}

	b.successes = 0
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.cfg.FailureThreshold {
		b.transition(StateOpen)
	}
}

// refresh moves an expired open breaker to half-open. Caller holds mu.
func (b *Breaker) refresh() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.transition(StateHalfOpen)
	}
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.successes = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	if to == StateClosed {
		b.failures = 0
	}

	b.cfg.Logger.Info("Circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}
