package dashcan

import (
	"testing"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestLockTrackerSequences(t *testing.T) {
	tests := []struct {
		name   string
		codes  []byte
		state  telemetry.LockState
		locked bool
	}{
		{"unlocked then transition", []byte{0x00, 0x20}, telemetry.LockApplying, false},
		{"full then transition", []byte{0x60, 0x20}, telemetry.LockReleasing, false},
		{"flex then transition", []byte{0x40, 0x20}, telemetry.LockReleasing, false},
		{"transition without history", []byte{0x20}, telemetry.LockApplying, false},
		{"full", []byte{0x60}, telemetry.LockFull, true},
		{"flex", []byte{0x40}, telemetry.LockFlex, true},
		{"full then unlocked", []byte{0x60, 0x00}, telemetry.LockUnlocked, false},
		{"repeated transition keeps direction", []byte{0x60, 0x20, 0x20, 0x20}, telemetry.LockReleasing, false},
		{"release finished then apply", []byte{0x60, 0x20, 0x00, 0x20}, telemetry.LockApplying, false},
		// only bits 5 and 6 carry the lock code
		{"other bits ignored", []byte{0x9F | 0x40}, telemetry.LockFlex, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewLockTracker()
			var state telemetry.LockState
			var locked bool
			for _, c := range tt.codes {
				state, locked = tracker.Update(c)
			}
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.locked, locked)
			assert.Equal(t, tt.state, tracker.State())
		})
	}
}

func TestLockTrackerReset(t *testing.T) {
	tracker := NewLockTracker()
	tracker.Update(0x60)
	tracker.Reset()
	assert.Equal(t, telemetry.LockUnlocked, tracker.State())

	state, _ := tracker.Update(0x20)
	assert.Equal(t, telemetry.LockApplying, state)
}

func TestLockStateString(t *testing.T) {
	assert.Equal(t, "Applying", telemetry.LockApplying.String())
	assert.Equal(t, "Full", telemetry.LockFull.String())
}
