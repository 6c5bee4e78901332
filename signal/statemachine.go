package signal

// StateObserver is called synchronously after every transition.
type StateObserver func(sm *StateMachine, newState LogicalState)

// StateMachine holds the current LogicalState. It is not safe for
// concurrent use on its own; Manager serialises access to it.
type StateMachine struct {
	current  LogicalState
	observer StateObserver
}

func NewStateMachine() *StateMachine {
	return &StateMachine{current: Off}
}

// State returns the current state.
func (sm *StateMachine) State() LogicalState {
	return sm.current
}

// Observe registers the single observer slot. A later call replaces the
// earlier observer, nil removes it.
func (sm *StateMachine) Observe(fn StateObserver) {
	sm.observer = fn
}

// TransitionTo sets the state and then notifies the observer, if any,
// before returning. The observer already sees newState through State().
func (sm *StateMachine) TransitionTo(newState LogicalState) {
	sm.current = newState
	if sm.observer != nil {
		sm.observer(sm, newState)
	}
}
