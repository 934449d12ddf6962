package filters

import "net/url"

// LatchState is the state of a Latch.
type LatchState int

const (
	LatchUninitialized LatchState = iota
	LatchInitialized
)

// Latch applies URL-derived filters exactly once. After the first successful
// Apply it ignores further URLs so user edits made in the meantime survive.
type Latch struct {
	state LatchState
}

// State returns the current latch state.
func (l *Latch) State() LatchState {
	return l.state
}

// Apply decodes q and returns the decoded filters with true on the
// uninitialized -> initialized transition. A nil query does not trigger the
// transition. Once initialized, Apply returns current unchanged and false.
func (l *Latch) Apply(current Filters, q url.Values) (Filters, bool) {
	if l.state == LatchInitialized || q == nil {
		return current, false
	}
	l.state = LatchInitialized
	return Decode(q), true
}
