package slot

import "fmt"

// ===============================
// Slot lifecycle
// ===============================

type State string

const (
	StateProposed        State = "proposed"
	StateValidated       State = "validated"
	StateConflictChecked State = "conflict_checked"
	StatePersisted       State = "persisted"
	StateCancelled       State = "cancelled"
)

var transitions = map[State]State{
	StateProposed:        StateValidated,
	StateValidated:       StateConflictChecked,
	StateConflictChecked: StatePersisted,
	StatePersisted:       StateCancelled,
}

// CanTransition enforces the single forward path of a slot.
func CanTransition(from, to State) error {
	if next, ok := transitions[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("invalid slot transition %s -> %s", from, to)
}

func InitialState() State {
	return StateProposed
}
