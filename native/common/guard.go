package common

import "errors"

// ErrReentrantCall is returned when a guarded operation is entered while
// another guarded operation is still executing in the same call stack.
var ErrReentrantCall = errors.New("reentrant call")

// CallGuard is the call-scoped mutual-exclusion token held across every
// state-mutating operation. Payouts route through the external balance
// ledger, which could call back into the engine before returning; the guard
// rejects that re-entry immediately. It is not a lock between top-level
// calls: the host environment already serialises those.
type CallGuard struct {
	held bool
}

// NewCallGuard returns a released guard.
func NewCallGuard() *CallGuard {
	return &CallGuard{}
}

// Enter acquires the guard and returns a release function. Both error and
// success paths must invoke the release function exactly once.
func (g *CallGuard) Enter() (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if g.held {
		return nil, ErrReentrantCall
	}
	g.held = true
	return func() { g.held = false }, nil
}

// Held reports whether a guarded operation is currently executing.
func (g *CallGuard) Held() bool {
	return g != nil && g.held
}
