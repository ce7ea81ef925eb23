// Package shortcut maps user-configured key chords onto named chat events.
// The coordinator never sees chord strings; it consumes events only.
package shortcut

import (
	"fmt"
	"sort"
	"strings"
)

// Event is a named action delivered to the session coordinator.
type Event string

const (
	EventNewChat    Event = "newChat"
	EventNextChat   Event = "switchChat"
	EventCloseChat  Event = "closeChat"
	EventFocusInput Event = "focusInput"
)

// modifier aliases and their canonical order.
var modAliases = map[string]string{
	"control": "ctrl",
	"ctrl":    "ctrl",
	"option":  "alt",
	"opt":     "alt",
	"alt":     "alt",
	"shift":   "shift",
	"command": "cmd",
	"meta":    "cmd",
	"super":   "cmd",
	"cmd":     "cmd",
}

var modOrder = map[string]int{"ctrl": 0, "alt": 1, "shift": 2, "cmd": 3}

// Normalize canonicalizes a chord string: lowercase, alias-resolved modifiers
// in a fixed order, the key last, "+"-joined. "Command+Shift+N" becomes
// "shift+cmd+n".
func Normalize(chord string) string {
	parts := strings.Split(chord, "+")
	var mods []string
	var key string
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if canonical, ok := modAliases[p]; ok {
			mods = append(mods, canonical)
			continue
		}
		key = p
	}
	sort.Slice(mods, func(i, j int) bool { return modOrder[mods[i]] < modOrder[mods[j]] })
	if key != "" {
		mods = append(mods, key)
	}
	return strings.Join(mods, "+")
}

// Dispatcher resolves normalized chords to events.
type Dispatcher struct {
	byChord map[string]Event
}

// NewDispatcher builds a dispatcher from event-to-chord bindings. Two events
// bound to the same chord is a configuration error.
func NewDispatcher(bindings map[Event]string) (*Dispatcher, error) {
	byChord := make(map[string]Event, len(bindings))
	for ev, chord := range bindings {
		n := Normalize(chord)
		if n == "" {
			return nil, fmt.Errorf("empty chord for %s", ev)
		}
		if existing, ok := byChord[n]; ok {
			return nil, fmt.Errorf("chord %q bound to both %s and %s", n, existing, ev)
		}
		byChord[n] = ev
	}
	return &Dispatcher{byChord: byChord}, nil
}

// Lookup resolves a chord, in any spelling, to its event.
func (d *Dispatcher) Lookup(chord string) (Event, bool) {
	ev, ok := d.byChord[Normalize(chord)]
	return ev, ok
}

// Bindings returns the normalized chord for every bound event.
func (d *Dispatcher) Bindings() map[string]Event {
	out := make(map[string]Event, len(d.byChord))
	for chord, ev := range d.byChord {
		out[chord] = ev
	}
	return out
}
