package domain

import "testing"

func TestTripStatusTerminal(t *testing.T) {
	tests := []struct {
		status   TripStatus
		terminal bool
	}{
		{TripStatusPending, false},
		{TripStatusAccepted, false},
		{TripStatusCompleted, true},
		{TripStatusCancelled, true},
	}

	for _, tc := range tests {
		if got := tc.status.Terminal(); got != tc.terminal {
			t.Errorf("%s: expected terminal=%v, got %v", tc.status, tc.terminal, got)
		}
		if !tc.status.Valid() {
			t.Errorf("%s should be valid", tc.status)
		}
	}

	if TripStatus(TripStatusOngoing).Valid() {
		t.Error("ongoing is an alias, not a stored status")
	}
}

func TestEnumsValid(t *testing.T) {
	if !CarType("luxury suv").Valid() || CarType("tuk-tuk").Valid() {
		t.Error("unexpected car type validation")
	}
	if !TripType("multi-city").Valid() || TripType("one way").Valid() {
		t.Error("unexpected trip type validation")
	}
	if !DurationUnitDays.Valid() || DurationUnit("weeks").Valid() {
		t.Error("unexpected duration unit validation")
	}
	if !RoleWork.Valid() || Role("root").Valid() {
		t.Error("unexpected role validation")
	}
}
