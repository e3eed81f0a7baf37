// Package session tracks per-client PRO gating state.
package session

// State is a client's position in the gate. A client unlocks on its first
// completed calculation and sees the promo on that same response. Unlocked is
// terminal.
type State int

const (
	Fresh State = iota
	Unlocked
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Unlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Decision is what the gate reports for one calculation.
type Decision struct {
	ShowPromo bool
	Unlocked  bool
}

// OnCalculation records one completed calculation. A Fresh client is owed the
// promo on this response and moves to Unlocked; an Unlocked client stays put.
func (s State) OnCalculation() (State, Decision) {
	if s == Unlocked {
		return Unlocked, Decision{Unlocked: true}
	}
	return Unlocked, Decision{ShowPromo: true, Unlocked: true}
}

// IsUnlocked reports whether the PRO features are unlocked.
func (s State) IsUnlocked() bool {
	return s == Unlocked
}

// ForceUnlock moves the client straight to Unlocked. It is idempotent.
func (s State) ForceUnlock() State {
	return Unlocked
}
