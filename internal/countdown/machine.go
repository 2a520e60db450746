// Package countdown is the client side of rate limiting: it turns a rate-limited
// response into a one-second countdown and blocks new requests until it ends.
package countdown

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultCooldownSeconds is used when the server gave no retry hint.
const DefaultCooldownSeconds = 120

// DefaultMessage is shown instead of a precise countdown when no retry hint was given.
const DefaultMessage = "Too many requests. Please wait a few minutes and try again."

// ErrCoolingDown is returned when a request is attempted while a countdown is active.
var ErrCoolingDown = errors.New("rate limited: wait for the countdown to finish")

// State is the observable countdown state. The zero value is Idle.
type State struct {
	Active           bool    `json:"active"`
	RemainingSeconds int     `json:"remainingSeconds"`
	Message          *string `json:"message"`
}

// Idle is the inactive state.
var Idle = State{}

func (s State) String() string {
	if !s.Active {
		return "idle"
	}
	if s.Message != nil {
		return fmt.Sprintf("counting (%ds): %s", s.RemainingSeconds, *s.Message)
	}
	return fmt.Sprintf("counting (%ds)", s.RemainingSeconds)
}

// Machine holds one countdown. It is safe for concurrent use.
type Machine struct {
	mu             sync.Mutex
	state          State
	defaultSeconds int
}

// NewMachine creates an idle machine. defaultSeconds applies when Start gets no
// hint; a non-positive value means DefaultCooldownSeconds.
func NewMachine(defaultSeconds int) *Machine {
	if defaultSeconds <= 0 {
		defaultSeconds = DefaultCooldownSeconds
	}
	return &Machine{defaultSeconds: defaultSeconds}
}

// Start enters the counting state. A nil retryAfter uses the default duration
// with DefaultMessage; a numeric one counts down from that value with no
// message. A non-positive value leaves the machine idle.
func (m *Machine) Start(retryAfter *int) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if retryAfter == nil {
		msg := DefaultMessage
		m.state = State{Active: true, RemainingSeconds: m.defaultSeconds, Message: &msg}
		return m.state
	}
	if *retryAfter <= 0 {
		m.state = Idle
		return m.state
	}
	m.state = State{Active: true, RemainingSeconds: *retryAfter}
	return m.state
}

// Tick advances the countdown by one second. Reaching zero resets to Idle.
func (m *Machine) Tick() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Active {
		return m.state
	}
	m.state.RemainingSeconds--
	if m.state.RemainingSeconds <= 0 {
		m.state = Idle
	}
	return m.state
}

// Clear resets to Idle.
func (m *Machine) Clear() {
	m.mu.Lock()
	m.state = Idle
	m.mu.Unlock()
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Allow returns ErrCoolingDown while a countdown is active.
func (m *Machine) Allow() error {
	if m.State().Active {
		return ErrCoolingDown
	}
	return nil
}
