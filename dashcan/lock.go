package dashcan

import "github.com/jd3nn1s/dash/telemetry"

// Raw lock-up codes carried in bits 5 and 6 of the gear/lock frame.
const (
	lockMask       = 0x60
	lockUnlocked   = 0x00
	lockTransition = 0x20
	lockFlex       = 0x40
	lockFull       = 0x60
)

// LockTracker turns the raw torque converter lock code into a display state.
// The transition code alone does not say which way the converter is moving,
// so the tracker remembers the last steady code to tell Applying from
// Releasing.
type LockTracker struct {
	state      telemetry.LockState
	lastSteady byte
}

func NewLockTracker() *LockTracker {
	return &LockTracker{}
}

// Reset forgets the last steady state.
func (t *LockTracker) Reset() {
	t.state = telemetry.LockUnlocked
	t.lastSteady = lockUnlocked
}

// State returns the last computed state.
func (t *LockTracker) State() telemetry.LockState {
	return t.state
}

// Update feeds one lock byte and returns the new state and whether the
// converter counts as locked. It is not considered locked while in
// transition.
func (t *LockTracker) Update(b byte) (telemetry.LockState, bool) {
	locked := false
	switch b & lockMask {
	case lockTransition:
		if t.lastSteady == lockUnlocked {
			t.state = telemetry.LockApplying
		} else {
			t.state = telemetry.LockReleasing
		}
	case lockFull:
		t.state = telemetry.LockFull
		t.lastSteady = lockFull
		locked = true
	case lockFlex:
		t.state = telemetry.LockFlex
		t.lastSteady = lockFlex
		locked = true
	default:
		t.state = telemetry.LockUnlocked
		t.lastSteady = lockUnlocked
	}
	return t.state, locked
}
