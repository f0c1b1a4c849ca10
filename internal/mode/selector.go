// Package mode decides which backend serves engine operations. A selector
// probes the remote API periodically and tracks the outcome in a two-state
// machine: remote while the API answers, local otherwise.
package mode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Selector events.
const (
	EventProbeUp   = "probe_up"
	EventProbeDown = "probe_down"
)

// Prober performs one reachability check against the remote API.
type Prober interface {
	Probe(ctx context.Context) error
}

// ChangeFunc is called after every mode change.
type ChangeFunc func(from, to types.Mode)

// Selector tracks the active backend mode. Mode is safe to call from any
// goroutine while the periodic probe runs.
type Selector struct {
	machine  *fsm.FSM
	prober   Prober
	interval time.Duration
	log      *zap.SugaredLogger
	onChange ChangeFunc

	mu    sync.Mutex
	sched *cron.Cron
	done  chan struct{}
}

var _ types.ModeSource = (*Selector)(nil)

// Option configures a Selector.
type Option func(*Selector)

// WithInterval sets the period between probes.
func WithInterval(d time.Duration) Option {
	return func(s *Selector) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Selector) { s.log = logging.OrNop(log) }
}

// OnChange registers fn to run after every mode change.
func OnChange(fn ChangeFunc) Option {
	return func(s *Selector) { s.onChange = fn }
}

// New returns a selector in local mode. A nil prober yields a selector that
// never leaves local mode.
func New(prober Prober, opts ...Option) *Selector {
	s := &Selector{
		prober:   prober,
		interval: types.DefaultProbeInterval,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = fsm.NewFSM(
		string(types.ModeLocal),
		fsm.Events{
			{Name: EventProbeUp, Src: []string{string(types.ModeLocal)}, Dst: string(types.ModeRemote)},
			{Name: EventProbeDown, Src: []string{string(types.ModeRemote)}, Dst: string(types.ModeLocal)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.Infow("backend mode changed", "from", e.Src, "to", e.Dst)
				if s.onChange != nil {
					s.onChange(types.Mode(e.Src), types.Mode(e.Dst))
				}
			},
		},
	)
	return s
}

// Mode returns the mode that should serve the next operation.
func (s *Selector) Mode() types.Mode {
	return types.Mode(s.machine.Current())
}

// Interval returns the period between probes.
func (s *Selector) Interval() time.Duration { return s.interval }

// Probe checks reachability once and returns the resulting mode.
func (s *Selector) Probe(ctx context.Context) types.Mode {
	if s.prober == nil {
		return types.ModeLocal
	}

	event := EventProbeUp
	if err := s.prober.Probe(ctx); err != nil {
		s.log.Debugw("remote unreachable", "error", err)
		event = EventProbeDown
	}

	if s.machine.Can(event) {
		err := s.machine.Event(ctx, event)
		var noTransition fsm.NoTransitionError
		var invalid fsm.InvalidEventError
		if err != nil && !errors.As(err, &noTransition) && !errors.As(err, &invalid) {
			s.log.Warnw("mode transition failed", "event", event, "error", err)
		}
	}
	return s.Mode()
}

// Start probes once, then keeps probing every interval until Stop is called
// or ctx is done. Overlapping probes are skipped.
func (s *Selector) Start(ctx context.Context) error {
	s.Probe(ctx)
	if s.prober == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched != nil {
		return nil
	}

	clog := cronLogger{log: s.log}
	sched := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := sched.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.Probe(ctx) }); err != nil {
		return fmt.Errorf("scheduling probe: %w", err)
	}
	sched.Start()
	s.sched = sched
	done := make(chan struct{})
	s.done = done

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()
	return nil
}

// Stop halts periodic probing and waits for a running probe to finish.
func (s *Selector) Stop() {
	s.mu.Lock()
	sched, done := s.sched, s.done
	s.sched, s.done = nil, nil
	s.mu.Unlock()

	if sched == nil {
		return
	}
	close(done)
	<-sched.Stop().Done()
}

// cronLogger adapts a zap logger to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
