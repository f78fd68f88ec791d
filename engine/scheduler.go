// ABOUTME: Silent refresh scheduling across tracked collections
// ABOUTME: Ticker, focus, and bus triggers with per-target overlap suppression
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rallyhq/rally/api"
)

const (
	// DefaultInterval is the fixed silent-refresh cadence. There is no
	// backoff and no error counter: staleness beats user-visible flapping.
	DefaultInterval = 5 * time.Minute

	refreshTimeout = 30 * time.Second
)

// RefreshFunc fetches and reconciles one collection. Errors are classified
// faults; silent passes swallow the retryable ones.
type RefreshFunc func(ctx context.Context) error

// RefreshRecorder observes the outcome of every refresh pass (sync-state
// bookkeeping). Optional.
type RefreshRecorder interface {
	RecordRefresh(target string, err error)
}

// Scheduler drives silent reconciliation: once per interval, on window
// refocus, and on demand through the invalidation bus. At most one fetch
// per target is in flight; overlapping triggers are dropped, not queued.
type Scheduler struct {
	interval time.Duration
	bus      *Bus
	focus    <-chan struct{}
	recorder RefreshRecorder

	mu         sync.Mutex
	refreshers map[Target]RefreshFunc
	inflight   map[Target]*atomic.Bool
	enabled    map[Target]bool // nil = every registered target

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. focus may be nil when the host has no
// focus events (daemon mode); recorder may be nil.
func NewScheduler(interval time.Duration, bus *Bus, focus <-chan struct{}, recorder RefreshRecorder) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval:   interval,
		bus:        bus,
		focus:      focus,
		recorder:   recorder,
		refreshers: make(map[Target]RefreshFunc),
		inflight:   make(map[Target]*atomic.Bool),
		done:       make(chan struct{}),
	}
}

// SetInterval overrides the refresh cadence. Must be called before Start.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// SetTargets restricts refreshes to the given targets; every other
// registered target is skipped by all triggers, including ticker and
// focus. An empty set restores the default of refreshing everything.
func (s *Scheduler) SetTargets(targets []Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(targets) == 0 {
		s.enabled = nil
		return
	}
	s.enabled = make(map[Target]bool, len(targets))
	for _, t := range targets {
		s.enabled[t] = true
	}
}

// Register installs the refresh function for a target. Must be called
// before Start.
func (s *Scheduler) Register(target Target, fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshers[target] = fn
	s.inflight[target] = &atomic.Bool{}
}

// Start begins the trigger loop. Stop must be called to release it.
func (s *Scheduler) Start() {
	events, unsubscribe := s.bus.Subscribe()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.KickAll()
			case ev, ok := <-events:
				if !ok {
					return
				}
				s.Kick(ev.Target)
			case <-s.focus:
				s.KickAll()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the trigger loop and waits for in-flight passes to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

// Kick triggers a silent refresh for one target (or all). A trigger that
// fires while that target's fetch is still outstanding is dropped.
func (s *Scheduler) Kick(target Target) {
	if target == TargetAll {
		s.KickAll()
		return
	}
	s.kickOne(target)
}

// KickAll triggers a silent refresh for every registered target.
func (s *Scheduler) KickAll() {
	s.mu.Lock()
	targets := make([]Target, 0, len(s.refreshers))
	for t := range s.refreshers {
		targets = append(targets, t)
	}
	s.mu.Unlock()

	for _, t := range targets {
		s.kickOne(t)
	}
}

// acquire claims the in-flight flag for a target so foreground refreshes
// share the silent passes' overlap suppression. ok is false while another
// fetch for the target is outstanding; on success the caller must invoke
// release when its fetch ends.
func (s *Scheduler) acquire(target Target) (release func(), ok bool) {
	s.mu.Lock()
	flag := s.inflight[target]
	s.mu.Unlock()
	if flag == nil {
		return func() {}, true
	}
	if !flag.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { flag.Store(false) }, true
}

func (s *Scheduler) kickOne(target Target) {
	s.mu.Lock()
	fn := s.refreshers[target]
	flag := s.inflight[target]
	skip := s.enabled != nil && !s.enabled[target]
	s.mu.Unlock()
	if fn == nil || skip {
		return
	}

	// Overlap policy: the in-flight flag, not cancellation, prevents a
	// second fetch from starting. The first completes and its result is
	// applied even if late.
	if !flag.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer flag.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		err := fn(ctx)
		if s.recorder != nil {
			s.recorder.RecordRefresh(string(target), err)
		}
		if err == nil {
			return
		}

		// Silent policy: keep the last good snapshot on screen, log, and
		// let the next scheduled tick try again.
		var fault *api.Fault
		if errors.As(err, &fault) {
			log.Printf("refresh %s: %s (keeping last snapshot)", target, fault.Kind)
			return
		}
		log.Printf("refresh %s failed: %v", target, err)
	}()
}
