package queue

import (
	"testing"
)

func TestValidateStateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    ItemState
		to      ItemState
		wantErr bool
	}{
		// Valid transitions from pending
		{"pending to processing", StatePending, StateProcessing, false},

		// Invalid transitions from pending
		{"pending to completed", StatePending, StateCompleted, true},
		{"pending to failed", StatePending, StateFailed, true},

		// Valid transitions from processing
		{"processing to completed", StateProcessing, StateCompleted, false},
		{"processing to failed", StateProcessing, StateFailed, false},
		{"processing to pending", StateProcessing, StatePending, false}, // reaper requeue

		// Valid transitions from failed
		{"failed to pending", StateFailed, StatePending, false}, // explicit retry

		// Invalid transitions from failed
		{"failed to processing", StateFailed, StateProcessing, true},
		{"failed to completed", StateFailed, StateCompleted, true},

		// Completed is terminal
		{"completed to pending", StateCompleted, StatePending, true},
		{"completed to processing", StateCompleted, StateProcessing, true},
		{"completed to failed", StateCompleted, StateFailed, true},

		// Unknown states
		{"unknown from state", ItemState("unknown"), StatePending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStateTransition(%s, %s) error = %v, wantErr %v",
					tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestCanRetry(t *testing.T) {
	tests := []struct {
		state ItemState
		want  bool
	}{
		{StateFailed, true},
		{StatePending, false},
		{StateProcessing, false},
		{StateCompleted, false},
	}

	for _, tt := range tests {
		if got := CanRetry(tt.state); got != tt.want {
			t.Errorf("CanRetry(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		state ItemState
		want  bool
	}{
		{StatePending, true},
		{StateProcessing, false},
		{StateFailed, false},
		{StateCompleted, false},
	}

	for _, tt := range tests {
		if got := CanCancel(tt.state); got != tt.want {
			t.Errorf("CanCancel(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestIsTerminalState(t *testing.T) {
	tests := []struct {
		state ItemState
		want  bool
	}{
		{StateCompleted, true},
		{StatePending, false},
		{StateProcessing, false},
		{StateFailed, false},
	}

	for _, tt := range tests {
		if got := IsTerminalState(tt.state); got != tt.want {
			t.Errorf("IsTerminalState(%s) = %v, want %v", tt.state, got, tt.want)
		}
	}
}
