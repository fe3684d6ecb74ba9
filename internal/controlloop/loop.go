package controlloop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pwmledctl/internal/config"
	"pwmledctl/internal/mapping"
)

var afterFn = time.After

// Backend is what the loop needs from the I/O layer.
type Backend interface {
	Sample() (uint64, error)
	Commit(d mapping.Duty) error
}

// State is the loop's lifecycle position. A new loop is Running.
type State int

const (
	Running State = iota
	// Fatal is terminal: an I/O failure stopped the loop.
	Fatal
	// Stopped means the caller canceled the loop.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Fatal:
		return "fatal"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FatalError wraps the I/O failure that moved the loop to Fatal.
type FatalError struct {
	Op  string // "sample" or "commit"
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("controlloop: %s failed: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Config holds the loop parameters. Zero fields take the reference defaults.
type Config struct {
	Thresholds mapping.Thresholds
	// Interval is the pause between iterations.
	Interval time.Duration
}

// Snapshot is a point-in-time view of the loop for observers.
type Snapshot struct {
	State      State        `json:"state"`
	Iterations uint64       `json:"iterations"`
	Speed      uint64       `json:"speed"`
	Duty       mapping.Duty `json:"duty"`

	LastUpdateAt time.Time `json:"last_update_utc,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}

// Loop repeatedly samples the press rate, maps it to duty cycles and commits
// them. Iterations never overlap.
type Loop struct {
	src Backend
	cfg Config
	log zerolog.Logger

	mu    sync.RWMutex
	snap  Snapshot
	fatal *FatalError
}

// New returns a loop over src. A zero interval becomes config.DefaultInterval
// and zero thresholds become mapping.Default.
func New(src Backend, cfg Config, log zerolog.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = config.DefaultInterval
	}
	if cfg.Thresholds == (mapping.Thresholds{}) {
		cfg.Thresholds = mapping.Default
	}
	return &Loop{src: src, cfg: cfg, log: log}
}

func (l *Loop) Snapshot() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

func (l *Loop) setState(update func(*Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	update(&l.snap)
	l.snap.LastUpdateAt = time.Now().UTC()
}

// Run iterates until an I/O error or ctx is done. It returns a *FatalError
// on I/O failure and ctx.Err() on cancellation. Neither case is retried.
func (l *Loop) Run(ctx context.Context) error {
	if l == nil {
		return fmt.Errorf("controlloop: loop is nil")
	}
	for {
		if err := ctx.Err(); err != nil {
			l.stop()
			return err
		}
		if _, err := l.Step(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			l.stop()
			return ctx.Err()
		case <-afterFn(l.cfg.Interval):
		}
	}
}

func (l *Loop) stop() {
	l.setState(func(sn *Snapshot) {
		if sn.State == Running {
			sn.State = Stopped
		}
	})
}

// Step runs a single sample/compute/commit iteration without waiting. Once
// the loop is Fatal every call returns the original error.
func (l *Loop) Step() (mapping.Duty, error) {
	l.mu.RLock()
	fatal := l.fatal
	l.mu.RUnlock()
	if fatal != nil {
		return mapping.Duty{}, fatal
	}

	speed, err := l.src.Sample()
	if err != nil {
		return mapping.Duty{}, l.fail("sample", err)
	}
	l.log.Info().Uint64("speed", speed).Msg("button press speed")

	duty := mapping.Compute(l.cfg.Thresholds, speed)
	l.log.Info().
		Uint8("led1", duty.LED1).
		Uint8("led2", duty.LED2).
		Uint8("led3", duty.LED3).
		Msg("setting led duty cycles")

	if err := l.src.Commit(duty); err != nil {
		return duty, l.fail("commit", err)
	}

	l.setState(func(sn *Snapshot) {
		sn.State = Running
		sn.Iterations++
		sn.Speed = speed
		sn.Duty = duty
		sn.LastError = ""
	})
	return duty, nil
}

func (l *Loop) fail(op string, err error) error {
	fe := &FatalError{Op: op, Err: err}
	l.mu.Lock()
	l.fatal = fe
	l.snap.State = Fatal
	l.snap.LastError = fe.Error()
	l.snap.LastUpdateAt = time.Now().UTC()
	l.mu.Unlock()
	l.log.Error().Err(err).Str("op", op).Msg("control loop stopped")
	return fe
}
