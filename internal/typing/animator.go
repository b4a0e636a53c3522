// Package typing drives the hero "typewriter" effect: it types out each
// role one character at a time, holds it, deletes it and moves on to the
// next role, forever.
package typing

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Mode is the direction the animator is currently moving in.
type Mode int

const (
	Growing Mode = iota
	Shrinking
)

func (m Mode) String() string {
	switch m {
	case Growing:
		return "growing"
	case Shrinking:
		return "shrinking"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	TypeInterval   = 150 * time.Millisecond
	DeleteInterval = 75 * time.Millisecond
	// HoldDelay is how long a fully typed role stays on screen.
	HoldDelay = 2000 * time.Millisecond
)

var ErrInvalidInput = errors.New("typing: invalid input")

// Timing groups the three delays that shape the animation.
type Timing struct {
	Type   time.Duration
	Delete time.Duration
	Hold   time.Duration
}

// DefaultTiming returns the stock 150ms / 75ms / 2s cadence.
func DefaultTiming() Timing {
	return Timing{Type: TypeInterval, Delete: DeleteInterval, Hold: HoldDelay}
}

// Validate reports whether every delay is positive.
func (t Timing) Validate() error {
	if t.Type <= 0 || t.Delete <= 0 || t.Hold <= 0 {
		return fmt.Errorf("%w: timing must be positive (type=%s delete=%s hold=%s)",
			ErrInvalidInput, t.Type, t.Delete, t.Hold)
	}
	return nil
}

// State is a snapshot of an animator.
type State struct {
	RoleIndex int
	Visible   int
	Mode      Mode
	Interval  time.Duration
}

// Step applies one tick to s and returns the next state. full is true
// when the tick made the whole role visible; the caller must then wait
// for the hold delay instead of scheduling another tick.
func Step(roles [][]rune, s State, t Timing) (next State, full bool) {
	role := roles[s.RoleIndex]
	next = s

	if s.Mode == Shrinking {
		next.Visible--
		next.Interval = t.Delete
		if next.Visible <= 0 {
			next.Visible = 0
			next.Mode = Growing
			next.RoleIndex = (s.RoleIndex + 1) % len(roles)
		}
		return next, false
	}

	if next.Visible < len(role) {
		next.Visible++
	}
	next.Interval = t.Type
	return next, next.Visible == len(role)
}

// Release ends the hold on a fully typed role.
func Release(s State, t Timing) State {
	s.Mode = Shrinking
	s.Interval = t.Delete
	return s
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures an Animator.
type Option func(*Animator)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(a *Animator) {
		if s != nil {
			a.sched = s
		}
	}
}

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) Option {
	return func(a *Animator) {
		a.timing = t
	}
}

// WithOnChange registers fn to be called with the visible text after
// every tick. fn runs while the animator is locked and must not call
// back into it.
func WithOnChange(fn func(text string)) Option {
	return func(a *Animator) {
		a.onChange = fn
	}
}

// Animator owns one running typing effect. Exactly one timer is pending
// at any time until Dispose is called.
type Animator struct {
	mu       sync.Mutex
	roles    [][]rune
	state    State
	timing   Timing
	sched    Scheduler
	timer    Timer
	onChange func(string)
	disposed bool
}

// New validates roles and starts the animation. The first character
// appears after one type interval.
func New(roles []string, opts ...Option) (*Animator, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no roles", ErrInvalidInput)
	}
	rs := make([][]rune, len(roles))
	for i, r := range roles {
		if r == "" {
			return nil, fmt.Errorf("%w: role %d is empty", ErrInvalidInput, i)
		}
		rs[i] = []rune(r)
	}

	a := &Animator{
		roles:  rs,
		timing: DefaultTiming(),
		sched:  realScheduler{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.timing.Validate(); err != nil {
		return nil, err
	}
	a.state = State{Mode: Growing, Interval: a.timing.Type}

	a.mu.Lock()
	a.timer = a.sched.AfterFunc(a.state.Interval, a.tick)
	a.mu.Unlock()
	return a, nil
}

// CurrentText returns the visible prefix of the active role.
func (a *Animator) CurrentText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.textLocked()
}

// State returns a copy of the current state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Dispose cancels the pending timer. Callbacks that were already due
// become no-ops. Safe to call more than once.
func (a *Animator) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.disposed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Animator) tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}

	next, full := Step(a.roles, a.state, a.timing)
	a.state = next
	if full {
		a.timer = a.sched.AfterFunc(a.timing.Hold, a.release)
	} else {
		a.timer = a.sched.AfterFunc(next.Interval, a.tick)
	}
	a.notifyLocked()
}

func (a *Animator) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.state = Release(a.state, a.timing)
	a.timer = a.sched.AfterFunc(a.state.Interval, a.tick)
}

func (a *Animator) notifyLocked() {
	if a.onChange != nil {
		a.onChange(a.textLocked())
	}
}

func (a *Animator) textLocked() string {
	return string(a.roles[a.state.RoleIndex][:a.state.Visible])
}
