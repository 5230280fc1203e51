package telemetry

// LockState is the torque converter lock-up state shown on the lock cell.
type LockState uint8

const (
	LockUnlocked LockState = iota
	LockApplying
	LockReleasing
	LockFlex
	LockFull
)

func (s LockState) String() string {
	switch s {
	case LockUnlocked:
		return "Unlocked"
	case LockApplying:
		return "Applying"
	case LockReleasing:
		return "Releasing"
	case LockFlex:
		return "Flex"
	case LockFull:
		return "Full"
	}
	return "Unknown"
}

// RegenState is the particulate filter regeneration status used by the
// banner when no channel is in warning.
type RegenState uint8

const (
	RegenIdle RegenState = iota
	RegenActive
	RegenPaused
)

func (s RegenState) String() string {
	switch s {
	case RegenActive:
		return "active"
	case RegenPaused:
		return "paused"
	}
	return "idle"
}
