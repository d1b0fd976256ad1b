// Package queue implements the durable scan queue and its state machine.
package queue

import (
	"fmt"
)

// ItemState represents a queue item state in the state machine.
type ItemState string

const (
	StatePending    ItemState = "pending"
	StateProcessing ItemState = "processing"
	StateCompleted  ItemState = "completed"
	StateFailed     ItemState = "failed"
)

// ValidateStateTransition checks if a state transition is valid.
// Returns an error if the transition is not allowed.
func ValidateStateTransition(from, to ItemState) error {
	validTransitions := map[ItemState][]ItemState{
		StatePending: {
			StateProcessing, // Claimed by a worker
		},
		StateProcessing: {
			StateCompleted, // Scan succeeded
			StateFailed,    // Scan failed or quota denied
			StatePending,   // Reaper requeue after a crash
		},
		StateFailed: {
			StatePending, // Explicit retry
		},
		// Completed is terminal and immutable.
		StateCompleted: {},
	}

	allowedStates, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}

	for _, allowed := range allowedStates {
		if allowed == to {
			return nil
		}
	}

	return fmt.Errorf("invalid state transition from %s to %s", from, to)
}

// CanRetry checks if an item can be retried (only failed items).
func CanRetry(state ItemState) bool {
	return state == StateFailed
}

// CanCancel checks if an item can be cancelled (only before it is claimed).
func CanCancel(state ItemState) bool {
	return state == StatePending
}

// IsTerminalState checks if a state has no forward transitions.
func IsTerminalState(state ItemState) bool {
	return state == StateCompleted
}
