package dashcan

import (
	"math"
	"time"

	"github.com/jd3nn1s/dash/telemetry"
)

const (
	RegenOnPct  = 1.0
	RegenOffPct = 0.2
	// one raw count of the regen percentage plus margin
	RegenPauseEpsPct = 100.0 / regenRawMax * 1.2

	DefaultRegenPauseAfter = 30 * time.Second
)

// RegenTracker derives the regeneration status from the regen percentage
// with hysteresis between the on and off thresholds. A regeneration whose
// percentage stops moving for PauseAfter is reported as paused.
type RegenTracker struct {
	PauseAfter time.Duration

	state      telemetry.RegenState
	progress   float64
	progressAt time.Time
}

func NewRegenTracker() *RegenTracker {
	return &RegenTracker{PauseAfter: DefaultRegenPauseAfter}
}

func (r *RegenTracker) State() telemetry.RegenState {
	return r.state
}

// Update feeds the current regen percentage. An unavailable percentage keeps
// the previous state.
func (r *RegenTracker) Update(pct float64, now time.Time) telemetry.RegenState {
	if !telemetry.IsAvailable(pct) {
		return r.state
	}
	switch r.state {
	case telemetry.RegenIdle:
		if pct >= RegenOnPct {
			r.state = telemetry.RegenActive
			r.progress = pct
			r.progressAt = now
		}
	default:
		switch {
		case pct < RegenOffPct:
			r.state = telemetry.RegenIdle
		case math.Abs(pct-r.progress) > RegenPauseEpsPct:
			r.state = telemetry.RegenActive
			r.progress = pct
			r.progressAt = now
		case now.Sub(r.progressAt) >= r.PauseAfter:
			r.state = telemetry.RegenPaused
		}
	}
	return r.state
}
