package collection

import "strings"

// InterfaceState describes how relevant an element currently is to the
// interface. States nest: Visible implies Display, Display implies Preload.
type InterfaceState uint32

const (
	// InterfaceStatePreload means the element is close enough to the
	// viewport that its data should be fetched.
	InterfaceStatePreload InterfaceState = 1 << iota
	// InterfaceStateDisplay means the element should be rendered.
	InterfaceStateDisplay
	// InterfaceStateVisible means the element is on screen.
	InterfaceStateVisible
)

// InterfaceStateNone means the element is out of every range.
const InterfaceStateNone InterfaceState = 0

const interfaceStateAll = InterfaceStatePreload | InterfaceStateDisplay | InterfaceStateVisible

// Has reports whether every bit of states is set in s.
func (s InterfaceState) Has(states InterfaceState) bool {
	return s&states == states
}

// Valid reports whether s only holds known bits and respects nesting.
func (s InterfaceState) Valid() bool {
	if s&^interfaceStateAll != 0 {
		return false
	}
	if s.Has(InterfaceStateVisible) && !s.Has(InterfaceStateDisplay) {
		return false
	}
	if s.Has(InterfaceStateDisplay) && !s.Has(InterfaceStatePreload) {
		return false
	}
	return true
}

// Enter returns s with states added along with every state they imply.
func (s InterfaceState) Enter(states InterfaceState) InterfaceState {
	states &= interfaceStateAll
	if states.Has(InterfaceStateVisible) {
		states |= InterfaceStateDisplay
	}
	if states.Has(InterfaceStateDisplay) {
		states |= InterfaceStatePreload
	}
	return s | states
}

// Exit returns s with states removed along with every state that implies them.
func (s InterfaceState) Exit(states InterfaceState) InterfaceState {
	states &= interfaceStateAll
	if states.Has(InterfaceStatePreload) {
		states |= InterfaceStateDisplay
	}
	if states.Has(InterfaceStateDisplay) {
		states |= InterfaceStateVisible
	}
	return s &^ states
}

func (s InterfaceState) String() string {
	if s == InterfaceStateNone {
		return "none"
	}
	var parts []string
	if s.Has(InterfaceStatePreload) {
		parts = append(parts, "preload")
	}
	if s.Has(InterfaceStateDisplay) {
		parts = append(parts, "display")
	}
	if s.Has(InterfaceStateVisible) {
		parts = append(parts, "visible")
	}
	if s&^interfaceStateAll != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
