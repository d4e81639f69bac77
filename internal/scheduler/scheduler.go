// Package scheduler implements the R component (spec.md §4.6): a ready
// queue of runnable frames, when-watchers, after-timers, and promise
// resolution, all advanced by a single logical executor at a time.
//
// spec.md is explicit that "the implementer must NOT introduce OS threads
// for watchers or async tasks" — exactly one frame's interpreter logic may
// be active at once. funxy's builtins_task.go instead spawns a genuine
// `go func(){}()` per async call with a pool limiter, which this package
// deliberately departs from (see DESIGN.md): every frame here still runs
// inside its own goroutine (so it can block on a channel mid-statement at
// an await or watcher-reentry boundary), but a single baton — the current
// frame's wake channel — is handed from frame to frame by tick(), so only
// one of those goroutines is ever past its initial <-wake at any instant.
// The scheduler's own mutex guards only queue/timer/watcher bookkeeping,
// never interpreter state.
package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcgru/gulfmex/internal/binding"
	"github.com/mcgru/gulfmex/internal/value"
)

// Frame is one logical thread of interpreter execution: the main program,
// a spawned async call, a fired watcher body, or a fired after-timer body.
type Frame struct {
	id   uuid.UUID
	wake chan struct{}
	done chan struct{}
}

// Yielder is the handle a running frame's body uses to suspend itself
// (Yield, Sleep, Await); it is passed down through internal/executor and
// internal/evaluator alongside their direct *Scheduler reference.
type Yielder struct {
	s  *Scheduler
	fr *Frame
}

// Watcher is a registered `when` statement (spec.md §4.5/§4.6).
type Watcher struct {
	ID         uuid.UUID
	Deps       map[*binding.Variable]bool
	InProgress bool
	Cancelled  bool
	// Body re-evaluates the condition and, if truthy, executes the
	// watcher's block. Supplied by internal/executor at registration.
	Body func(y *Yielder)
}

// timer is a registered `after` statement, either line-count or
// duration-based.
type timer struct {
	id         uuid.UUID
	linesLeft  int
	isTemporal bool
	fireAt     time.Time
	cancelled  bool
	fired      bool
	body       func(y *Yielder)
}

// Scheduler owns the ready queue, watcher/timer sets and promise waiter
// lists. One Scheduler instance backs one running program (spec.md §4.6).
type Scheduler struct {
	mu sync.Mutex

	ready []*Frame

	watchers     map[uuid.UUID]*Watcher
	watcherOrder []uuid.UUID
	timers       map[uuid.UUID]*timer

	waiters map[*value.Promise][]*Frame

	// writeSet records (variable -> latest written value) on every
	// RecordWrite and is never drained; watcher firing is driven by
	// lastValues and each watcher's Deps instead.
	writeSet map[*binding.Variable]value.Value

	// lastValues is the last head value RecordWrite saw for each variable,
	// used to dedupe re-firing a watcher when an assignment re-writes the
	// same value it already held (spec.md §4.5: "each time any watched
	// variable's head value changes (by equality on the value payload)").
	lastValues map[*binding.Variable]value.Value

	clockStop chan struct{}
}

// New returns an idle Scheduler with its wall-clock timer poller running.
// The poller goroutine never executes interpreter logic: it only moves due
// timers onto the ready queue, preserving the "single logical executor"
// guarantee.
func New() *Scheduler {
	s := &Scheduler{
		watchers:   make(map[uuid.UUID]*Watcher),
		timers:     make(map[uuid.UUID]*timer),
		waiters:    make(map[*value.Promise][]*Frame),
		writeSet:   make(map[*binding.Variable]value.Value),
		lastValues: make(map[*binding.Variable]value.Value),
		clockStop:  make(chan struct{}),
	}
	go s.pollClock()
	return s
}

func (s *Scheduler) pollClock() {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-s.clockStop:
			return
		case now := <-t.C:
			s.mu.Lock()
			var due []*timer
			for _, tm := range s.timers {
				if tm.cancelled || tm.fired || tm.isTemporal == false {
					continue
				}
				if !now.Before(tm.fireAt) {
					due = append(due, tm)
				}
			}
			for _, tm := range due {
				tm.fired = true
				delete(s.timers, tm.id)
			}
			s.mu.Unlock()
			for _, tm := range due {
				s.Spawn(tm.body)
			}
		}
	}
}

// Stop halts the wall-clock poller. Called once the program is fully idle.
func (s *Scheduler) Stop() {
	close(s.clockStop)
}

func newFrame() *Frame {
	return &Frame{id: uuid.New(), wake: make(chan struct{}, 1), done: make(chan struct{})}
}

// Spawn starts body in its own goroutine, parked until the scheduler's
// baton reaches it, and returns a Yielder the body can use to suspend.
// Used for the main program frame and for every async-call/watcher/timer
// frame.
func (s *Scheduler) Spawn(body func(y *Yielder)) *Frame {
	fr := newFrame()
	go func() {
		<-fr.wake
		body(&Yielder{s: s, fr: fr})
		close(fr.done)
		s.tick()
	}()
	s.mu.Lock()
	s.ready = append(s.ready, fr)
	s.mu.Unlock()
	return fr
}

// tick pops the next ready frame and hands it the baton. If the queue is
// empty, no frame runs until something re-enqueues one (a promise
// resolving, a timer firing, Run's idle-wait loop polling again).
func (s *Scheduler) tick() {
	s.mu.Lock()
	if len(s.ready) == 0 {
		s.mu.Unlock()
		return
	}
	fr := s.ready[0]
	s.ready = s.ready[1:]
	s.mu.Unlock()
	fr.wake <- struct{}{}
}

// Yield cooperatively hands the baton to the next ready frame and blocks
// until this frame is rescheduled, spec.md §4.6's "yields (end of a
// watcher body)" suspension point and the `sleep` builtin's mechanism.
func (y *Yielder) Yield() {
	y.s.mu.Lock()
	y.s.ready = append(y.s.ready, y.fr)
	y.s.mu.Unlock()
	y.s.tick()
	<-y.fr.wake
}

// Sleep yields repeatedly until at least d has elapsed, without blocking an
// OS thread on the sleeping frame specifically — every yielded slice lets
// another ready frame run first.
func (y *Yielder) Sleep(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		y.Yield()
	}
}

// Await suspends the current frame until p resolves (spec.md §4.4's
// `await e`), returning p's value or error once settled. If p is already
// resolved, returns immediately without suspending.
func (y *Yielder) Await(p *value.Promise) (value.Value, error) {
	y.s.mu.Lock()
	if p.Resolved {
		y.s.mu.Unlock()
		return p.Value, p.Err
	}
	y.s.waiters[p] = append(y.s.waiters[p], y.fr)
	y.s.mu.Unlock()
	y.s.tick()
	<-y.fr.wake
	return p.Value, p.Err
}

// Resolve settles p exactly once and moves every waiting frame back onto
// the ready queue in FIFO order (spec.md §4.6's promise-resolution rule).
func (s *Scheduler) Resolve(p *value.Promise, v value.Value, err error) {
	s.mu.Lock()
	if p.Resolved {
		s.mu.Unlock()
		return
	}
	p.Resolved = true
	p.Value = v
	p.Err = err
	waiters := s.waiters[p]
	delete(s.waiters, p)
	s.ready = append(s.ready, waiters...)
	s.mu.Unlock()
}

// RecordWrite registers a head-value change for v in the current tick's
// write set (spec.md §4.6), then synchronously fires -- in registration
// order, on the calling frame's own Yielder -- any watcher whose dependency
// set includes v and which is not already in progress or cancelled. A
// write that leaves v's value unchanged (by value.Equal) is not a "change"
// and fires nothing, matching spec.md §4.5's when-statement contract.
// Firing runs inline rather than through a spawned frame: the engine is
// single-threaded cooperative with no preemption, so a watcher observing
// its dependency at the exact statement that changed it (rather than
// whatever the variable has moved on to by the time a deferred frame gets
// the baton) is what "evaluate pending when predicates" requires.
func (s *Scheduler) RecordWrite(y *Yielder, v *binding.Variable, newHead value.Value) {
	s.mu.Lock()
	if prev, ok := s.lastValues[v]; ok && value.Equal(prev, newHead).IsTrue() {
		s.mu.Unlock()
		return
	}
	s.lastValues[v] = newHead
	s.writeSet[v] = newHead
	var toFire []*Watcher
	for _, id := range s.watcherOrder {
		w, ok := s.watchers[id]
		if !ok || w.Cancelled || w.InProgress {
			continue
		}
		if w.Deps[v] {
			w.InProgress = true
			toFire = append(toFire, w)
		}
	}
	s.mu.Unlock()

	for _, w := range toFire {
		w.Body(y)
		s.mu.Lock()
		w.InProgress = false
		s.mu.Unlock()
	}
}

// RegisterWatcher adds w to the watcher set (spec.md's `when` statement).
func (s *Scheduler) RegisterWatcher(w *Watcher) {
	s.mu.Lock()
	s.watchers[w.ID] = w
	s.watcherOrder = append(s.watcherOrder, w.ID)
	s.mu.Unlock()
}

// UnregisterWatcher cancels w, e.g. because a lifetime it depended on
// expired mid-subscription (spec.md §4.6's cancellation rule).
func (s *Scheduler) UnregisterWatcher(id uuid.UUID) {
	s.mu.Lock()
	if w, ok := s.watchers[id]; ok {
		w.Cancelled = true
	}
	delete(s.watchers, id)
	s.mu.Unlock()
}

// UnregisterWatchersDependingOn cancels every watcher whose dependency set
// includes v, spec.md §4.6's "a lifetime expiring while a watcher is
// pending on it unregisters the watcher".
func (s *Scheduler) UnregisterWatchersDependingOn(v *binding.Variable) {
	s.mu.Lock()
	var dead []uuid.UUID
	for id, w := range s.watchers {
		if w.Deps[v] {
			w.Cancelled = true
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(s.watchers, id)
	}
	s.mu.Unlock()
}

// RegisterLineTimer adds an `after N` line-count timer. DecrementTimers
// drives it toward firing.
func (s *Scheduler) RegisterLineTimer(linesLeft int, body func(y *Yielder)) uuid.UUID {
	tm := &timer{id: uuid.New(), linesLeft: linesLeft, body: body}
	s.mu.Lock()
	s.timers[tm.id] = tm
	s.mu.Unlock()
	return tm.id
}

// RegisterDurationTimer adds an `after "500ms"` wall-clock timer, serviced
// by the poller goroutine rather than the statement-count sweep.
func (s *Scheduler) RegisterDurationTimer(d time.Duration, body func(y *Yielder)) uuid.UUID {
	tm := &timer{id: uuid.New(), isTemporal: true, fireAt: time.Now().Add(d), body: body}
	s.mu.Lock()
	s.timers[tm.id] = tm
	s.mu.Unlock()
	return tm.id
}

// CancelTimer tears down a still-pending timer, e.g. when its host scope
// exits (spec.md §4.6's "after timers are cancelled if their host scope is
// torn down").
func (s *Scheduler) CancelTimer(id uuid.UUID) {
	s.mu.Lock()
	if tm, ok := s.timers[id]; ok {
		tm.cancelled = true
	}
	delete(s.timers, id)
	s.mu.Unlock()
}

// DecrementTimers is called once per executed statement (spec.md §4.4) and
// fires every line-count timer that reaches zero.
func (s *Scheduler) DecrementTimers() {
	s.mu.Lock()
	var due []*timer
	for _, tm := range s.timers {
		if tm.isTemporal || tm.cancelled || tm.fired {
			continue
		}
		tm.linesLeft--
		if tm.linesLeft <= 0 {
			tm.fired = true
			due = append(due, tm)
		}
	}
	for _, tm := range due {
		delete(s.timers, tm.id)
	}
	s.mu.Unlock()
	for _, tm := range due {
		s.Spawn(tm.body)
	}
}

// Idle reports whether the ready queue and timer set are both empty,
// spec.md §4.6's termination condition (a dormant watcher set alone does
// not keep the program alive).
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready) == 0 && len(s.timers) == 0
}

// Run drives the main frame to completion and then keeps servicing timers
// and watcher firings until the engine goes idle (spec.md §4.6's
// termination rule), returning the main frame's result.
func (s *Scheduler) Run(main func(y *Yielder) (value.Value, error)) (value.Value, error) {
	var result value.Value
	var resultErr error
	mainDone := make(chan struct{})

	s.Spawn(func(y *Yielder) {
		result, resultErr = main(y)
		close(mainDone)
	})
	s.tick()

	<-mainDone
	for !s.Idle() {
		time.Sleep(time.Millisecond)
	}
	s.Stop()
	return result, resultErr
}
