package dashcan

import (
	"math"
	"testing"
	"time"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestRegenTracker(t *testing.T) {
	r := NewRegenTracker()
	now := time.Unix(0, 0)

	assert.Equal(t, telemetry.RegenIdle, r.Update(0.5, now))
	assert.Equal(t, telemetry.RegenActive, r.Update(1.0, now))

	// hysteresis: stays active above the off threshold
	now = now.Add(time.Second)
	assert.Equal(t, telemetry.RegenActive, r.Update(0.5, now))

	// no progress for the pause window
	now = now.Add(r.PauseAfter)
	assert.Equal(t, telemetry.RegenPaused, r.Update(0.5, now))

	// unavailable keeps the state
	assert.Equal(t, telemetry.RegenPaused, r.Update(math.NaN(), now))

	now = now.Add(time.Second)
	assert.Equal(t, telemetry.RegenActive, r.Update(5.0, now))

	assert.Equal(t, telemetry.RegenIdle, r.Update(0.1, now))
	assert.Equal(t, telemetry.RegenIdle, r.State())
}

func TestRegenTrackerTinyMovementIsNotProgress(t *testing.T) {
	r := NewRegenTracker()
	now := time.Unix(0, 0)
	r.Update(10, now)

	now = now.Add(r.PauseAfter)
	assert.Equal(t, telemetry.RegenPaused, r.Update(10+RegenPauseEpsPct/2, now))
}
