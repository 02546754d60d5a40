package catalogmirror

import (
	"sync"
	"sync/atomic"

	"github.com/agentstation/catalogmirror/pkg/reconciler"
)

// State is the process-wide record of loop progress. The loop writes it and
// readers share it by reference.
type State struct {
	firstCycle atomic.Bool

	mu   sync.RWMutex
	last *reconciler.CycleResult
}

// NewState returns a State with no completed cycle.
func NewState() *State {
	return &State{}
}

// HasCompletedFirstCycle reports whether a cycle has completed. Once true it
// stays true.
func (s *State) HasCompletedFirstCycle() bool {
	return s.firstCycle.Load()
}

// LastCycle returns a copy of the most recent completed cycle.
func (s *State) LastCycle() (reconciler.CycleResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return reconciler.CycleResult{}, false
	}
	return *s.last, true
}

func (s *State) complete(res *reconciler.CycleResult) {
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	s.firstCycle.Store(true)
}
