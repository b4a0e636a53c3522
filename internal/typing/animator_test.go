package typing

import (
	"sort"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler is a Scheduler driven by Advance instead of the wall
// clock.
type manualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
	// stopFails makes Stop report failure and leaves the timer armed,
	// the way a timer that already started firing behaves.
	stopFails bool
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.stopFails || t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due
// on the way, including timers scheduled by earlier firings.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()
		next.f()
	}
}

func (s *manualScheduler) nextDueLocked(limit time.Duration) *manualTimer {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	s.pending = live
	sort.Slice(s.pending, func(i, j int) bool {
		if s.pending[i].at == s.pending[j].at {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].at < s.pending[j].at
	})
	if len(s.pending) == 0 || s.pending[0].at > limit {
		return nil
	}
	return s.pending[0]
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func newManual(t *testing.T, roles ...string) (*Animator, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	a, err := New(roles, WithScheduler(sched))
	require.NoError(t, err)
	t.Cleanup(a.Dispose)
	return a, sched
}

func typeOut(s *manualScheduler, n int) {
	for i := 0; i < n; i++ {
		s.Advance(TypeInterval)
	}
}

func TestNew(t *testing.T) {
	t.Run("StartsEmpty", func(t *testing.T) {
		a, sched := newManual(t, "Frontend Developer", "Backend Developer")

		assert.Equal(t, "", a.CurrentText())
		assert.Equal(t, State{RoleIndex: 0, Visible: 0, Mode: Growing, Interval: TypeInterval}, a.State())
		assert.Equal(t, 1, sched.Pending())
	})

	t.Run("FirstTickAfterTypeInterval", func(t *testing.T) {
		a, sched := newManual(t, "Go")

		sched.Advance(TypeInterval - time.Millisecond)
		assert.Equal(t, "", a.CurrentText())
		sched.Advance(time.Millisecond)
		assert.Equal(t, "G", a.CurrentText())
	})

	t.Run("CopiesRoles", func(t *testing.T) {
		roles := []string{"abc"}
		a, sched := newManual(t, roles...)
		roles[0] = "xyz"

		sched.Advance(TypeInterval)
		assert.Equal(t, "a", a.CurrentText())
	})
}

func TestNew_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		opts  []Option
	}{
		{name: "Nil", roles: nil},
		{name: "Empty", roles: []string{}},
		{name: "EmptyRole", roles: []string{""}},
		{name: "EmptyRoleAfterValid", roles: []string{"Web Developer", ""}},
		{name: "ZeroTiming", roles: []string{"a"}, opts: []Option{WithTiming(Timing{})}},
		{name: "NegativeHold", roles: []string{"a"}, opts: []Option{WithTiming(Timing{Type: 1, Delete: 1, Hold: -1})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.roles, tt.opts...)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, a)
		})
	}
}

func TestAnimator_GrowsToFullRole(t *testing.T) {
	const role = "Frontend Developer"
	a, sched := newManual(t, role, "Backend Developer")
	n := utf8.RuneCountInString(role)

	typeOut(sched, n-1)
	assert.Equal(t, role[:n-1], a.CurrentText())

	sched.Advance(TypeInterval)
	assert.Equal(t, role, a.CurrentText())
	st := a.State()
	assert.Equal(t, Growing, st.Mode)
	assert.Equal(t, n, st.Visible)

	// Only the hold is pending; regular ticks stop at full length.
	sched.Advance(TypeInterval * 5)
	assert.Equal(t, role, a.CurrentText())
	assert.Equal(t, Growing, a.State().Mode)
	assert.Equal(t, 1, sched.Pending())
}

func TestAnimator_HoldThenShrink(t *testing.T) {
	const role = "Frontend Developer"
	a, sched := newManual(t, role, "Backend Developer")
	n := utf8.RuneCountInString(role)
	typeOut(sched, n)

	sched.Advance(HoldDelay - time.Millisecond)
	assert.Equal(t, Growing, a.State().Mode)

	sched.Advance(time.Millisecond)
	st := a.State()
	assert.Equal(t, Shrinking, st.Mode)
	assert.Equal(t, n, st.Visible)
	assert.Equal(t, role, a.CurrentText())

	sched.Advance(DeleteInterval)
	assert.Equal(t, n-1, a.State().Visible)
	assert.Equal(t, role[:n-1], a.CurrentText())
	assert.Equal(t, DeleteInterval, a.State().Interval)
}

func TestAnimator_ShrinkAdvancesAndWraps(t *testing.T) {
	roles := []string{"ab", "xyz"}
	a, sched := newManual(t, roles...)

	cycle := func(role string) {
		n := utf8.RuneCountInString(role)
		typeOut(sched, n)
		sched.Advance(HoldDelay)
		for i := 0; i < n; i++ {
			sched.Advance(DeleteInterval)
		}
	}

	cycle(roles[0])
	st := a.State()
	assert.Equal(t, 1, st.RoleIndex)
	assert.Equal(t, 0, st.Visible)
	assert.Equal(t, Growing, st.Mode)
	assert.Equal(t, "", a.CurrentText())

	// The first growing tick after a role change runs at the delete cadence.
	sched.Advance(DeleteInterval)
	assert.Equal(t, "x", a.CurrentText())
	typeOut(sched, 2)
	sched.Advance(HoldDelay)
	for i := 0; i < 3; i++ {
		sched.Advance(DeleteInterval)
	}
	st = a.State()
	assert.Equal(t, 0, st.RoleIndex)
	assert.Equal(t, 0, st.Visible)
	assert.Equal(t, Growing, st.Mode)
}

func TestAnimator_SingleRoleRoundTrip(t *testing.T) {
	a, sched := newManual(t, "Go")

	typeOut(sched, 2)
	sched.Advance(HoldDelay)
	sched.Advance(DeleteInterval)
	assert.Equal(t, "G", a.CurrentText())
	sched.Advance(DeleteInterval)

	st := a.State()
	assert.Equal(t, 0, st.RoleIndex)
	assert.Equal(t, 0, st.Visible)
	assert.Equal(t, Growing, st.Mode)

	// And it keeps going.
	sched.Advance(DeleteInterval)
	assert.Equal(t, "G", a.CurrentText())
}

func TestAnimator_Dispose(t *testing.T) {
	t.Run("FreezesText", func(t *testing.T) {
		a, sched := newManual(t, "Backend Developer")
		typeOut(sched, 7)
		require.Equal(t, "Backend", a.CurrentText())
		before := a.State()

		a.Dispose()
		sched.Advance(HoldDelay * 3)

		assert.Equal(t, "Backend", a.CurrentText())
		assert.Equal(t, before, a.State())
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("Idempotent", func(t *testing.T) {
		a, _ := newManual(t, "a")
		a.Dispose()
		assert.NotPanics(t, a.Dispose)
	})

	t.Run("LateTickIsNoop", func(t *testing.T) {
		sched := &manualScheduler{stopFails: true}
		var calls int
		a, err := New([]string{"abc"}, WithScheduler(sched), WithOnChange(func(string) { calls++ }))
		require.NoError(t, err)
		sched.Advance(TypeInterval)
		require.Equal(t, 1, calls)

		a.Dispose()
		sched.Advance(TypeInterval * 10)

		assert.Equal(t, "a", a.CurrentText())
		assert.Equal(t, 1, calls)
	})

	t.Run("DuringHold", func(t *testing.T) {
		sched := &manualScheduler{stopFails: true}
		a, err := New([]string{"ab"}, WithScheduler(sched))
		require.NoError(t, err)
		typeOut(sched, 2)

		a.Dispose()
		sched.Advance(HoldDelay + DeleteInterval*4)

		assert.Equal(t, Growing, a.State().Mode)
		assert.Equal(t, "ab", a.CurrentText())
	})
}

func TestAnimator_OnChange(t *testing.T) {
	sched := &manualScheduler{}
	var got []string
	a, err := New([]string{"hi"}, WithScheduler(sched), WithOnChange(func(s string) {
		got = append(got, s)
	}))
	require.NoError(t, err)
	defer a.Dispose()

	typeOut(sched, 2)
	sched.Advance(HoldDelay)
	sched.Advance(DeleteInterval * 2)

	assert.Equal(t, []string{"h", "hi", "h", ""}, got)
}

func TestAnimator_MultiByteRoles(t *testing.T) {
	a, sched := newManual(t, "Développeur")

	typeOut(sched, 2)
	assert.Equal(t, "Dé", a.CurrentText())
	typeOut(sched, 9)
	assert.Equal(t, "Développeur", a.CurrentText())
	assert.Equal(t, Growing, a.State().Mode)
}

func TestAnimator_CustomTiming(t *testing.T) {
	sched := &manualScheduler{}
	timing := Timing{Type: 10 * time.Millisecond, Delete: 5 * time.Millisecond, Hold: 100 * time.Millisecond}
	a, err := New([]string{"ab"}, WithScheduler(sched), WithTiming(timing))
	require.NoError(t, err)
	defer a.Dispose()

	sched.Advance(20 * time.Millisecond)
	assert.Equal(t, "ab", a.CurrentText())
	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, Shrinking, a.State().Mode)
	sched.Advance(5 * time.Millisecond)
	assert.Equal(t, "a", a.CurrentText())
}

func TestAnimator_RealScheduler(t *testing.T) {
	timing := Timing{Type: time.Millisecond, Delete: time.Millisecond, Hold: 5 * time.Millisecond}
	a, err := New([]string{"abc"}, WithTiming(timing))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return a.CurrentText() == "abc"
	}, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		return a.State().Mode == Shrinking
	}, time.Second, time.Millisecond)

	a.Dispose()
	frozen := a.State()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, a.State())
}

func TestStep(t *testing.T) {
	roles := [][]rune{[]rune("ab"), []rune("c")}
	timing := DefaultTiming()

	tests := []struct {
		name string
		in   State
		want State
		full bool
	}{
		{
			name: "GrowOne",
			in:   State{RoleIndex: 0, Visible: 0, Mode: Growing},
			want: State{RoleIndex: 0, Visible: 1, Mode: Growing, Interval: TypeInterval},
		},
		{
			name: "GrowToFull",
			in:   State{RoleIndex: 0, Visible: 1, Mode: Growing},
			want: State{RoleIndex: 0, Visible: 2, Mode: Growing, Interval: TypeInterval},
			full: true,
		},
		{
			name: "ShrinkOne",
			in:   State{RoleIndex: 0, Visible: 2, Mode: Shrinking},
			want: State{RoleIndex: 0, Visible: 1, Mode: Shrinking, Interval: DeleteInterval},
		},
		{
			name: "ShrinkToEmptyAdvances",
			in:   State{RoleIndex: 0, Visible: 1, Mode: Shrinking},
			want: State{RoleIndex: 1, Visible: 0, Mode: Growing, Interval: DeleteInterval},
		},
		{
			name: "WrapsToFirst",
			in:   State{RoleIndex: 1, Visible: 1, Mode: Shrinking},
			want: State{RoleIndex: 0, Visible: 0, Mode: Growing, Interval: DeleteInterval},
		},
		{
			name: "SingleCharRoleIsFullImmediately",
			in:   State{RoleIndex: 1, Visible: 0, Mode: Growing},
			want: State{RoleIndex: 1, Visible: 1, Mode: Growing, Interval: TypeInterval},
			full: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, full := Step(roles, tt.in, timing)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.full, full)
		})
	}
}

func TestRelease(t *testing.T) {
	got := Release(State{RoleIndex: 1, Visible: 4, Mode: Growing, Interval: TypeInterval}, DefaultTiming())
	assert.Equal(t, State{RoleIndex: 1, Visible: 4, Mode: Shrinking, Interval: DeleteInterval}, got)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "growing", Growing.String())
	assert.Equal(t, "shrinking", Shrinking.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
