package types

import "testing"

func TestAttemptState_Terminal(t *testing.T) {
	tests := []struct {
		state    AttemptState
		terminal bool
	}{
		{StatePending, false},
		{StateFormDiscovered, false},
		{StateFieldsMapped, false},
		{StateFieldsFilled, false},
		{StateAwaitingReview, false},
		{StateSubmitted, true},
		{StateManualRequired, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestAttemptState_Blocking(t *testing.T) {
	// Only Failed frees the pair for a fresh attempt. Submitted and
	// ManualRequired are final from the tracker's perspective, and every
	// in-flight state blocks a concurrent duplicate.
	for _, s := range []AttemptState{
		StatePending, StateFormDiscovered, StateFieldsMapped,
		StateFieldsFilled, StateAwaitingReview, StateSubmitted, StateManualRequired,
	} {
		if !s.Blocking() {
			t.Errorf("%s should block a new attempt", s)
		}
	}
	if StateFailed.Blocking() {
		t.Error("failed must not block a new attempt")
	}
}
