// Package focus implements the pomodoro countdown used by the focus view.
package focus

import (
	"fmt"
	"strings"
)

// Mode is a timer session kind.
type Mode int

const (
	ModeFocus Mode = iota
	ModeShortBreak
	ModeLongBreak
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeFocus, ModeShortBreak, ModeLongBreak}

// Seconds returns the session length of m.
func (m Mode) Seconds() int {
	switch m {
	case ModeShortBreak:
		return 300
	case ModeLongBreak:
		return 900
	default:
		return 1500
	}
}

// String returns the flag name of m.
func (m Mode) String() string {
	switch m {
	case ModeShortBreak:
		return "short-break"
	case ModeLongBreak:
		return "long-break"
	default:
		return "focus"
	}
}

// Label returns the display name of m.
func (m Mode) Label() string {
	switch m {
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// ParseMode accepts the flag names and a few short aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "focus", "pomodoro":
		return ModeFocus, nil
	case "short-break", "short", "break":
		return ModeShortBreak, nil
	case "long-break", "long":
		return ModeLongBreak, nil
	}
	return ModeFocus, fmt.Errorf("unknown mode: %s (use focus, short-break or long-break)", s)
}

// State is a snapshot of a timer.
type State struct {
	Mode      Mode
	Total     int
	Remaining int
	Running   bool
}

// Progress is the remaining fraction, 1 at the start of a session and 0 when done.
func (s State) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Remaining) / float64(s.Total)
}

// Completed reports whether the session has run out.
func (s State) Completed() bool {
	return s.Remaining == 0
}

// Clock formats the remaining time as MM:SS.
func (s State) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.Remaining/60, s.Remaining%60)
}

// Timer is the countdown state machine. It has no clock of its own; Tick
// is called once per elapsed second by its owner. The zero value is not
// usable, use NewTimer.
type Timer struct {
	state State
}

// NewTimer returns a stopped timer in mode m with a full session.
func NewTimer(m Mode) *Timer {
	t := &Timer{}
	t.ChangeMode(m)
	return t
}

// State returns the current snapshot.
func (t *Timer) State() State { return t.state }

// ChangeMode stops the timer and starts a fresh session of mode m.
func (t *Timer) ChangeMode(m Mode) {
	t.state = State{Mode: m, Total: m.Seconds(), Remaining: m.Seconds()}
}

// Toggle flips running. A finished session stays stopped until Reset or
// ChangeMode.
func (t *Timer) Toggle() {
	if !t.state.Running && t.state.Remaining == 0 {
		return
	}
	t.state.Running = !t.state.Running
}

// Reset stops the timer and refills the current session.
func (t *Timer) Reset() {
	t.state.Running = false
	t.state.Remaining = t.state.Total
}

// Tick consumes one second. It does nothing unless the timer is running.
// Reaching zero stops the timer; there is no advance to another mode.
func (t *Timer) Tick() {
	if !t.state.Running || t.state.Remaining <= 0 {
		return
	}
	t.state.Remaining--
	if t.state.Remaining == 0 {
		t.state.Running = false
	}
}
