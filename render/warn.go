package render

import (
	"strings"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/pkg/errors"
)

type WarnMode uint8

const (
	WarnOff WarnMode = iota
	// WarnHigh warns when the value rises to a threshold.
	WarnHigh
	// WarnLow warns when the value falls to a threshold.
	WarnLow
)

// ParseWarnMode maps "off", "high" and "low" to a mode.
func ParseWarnMode(s string) (WarnMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return WarnOff, nil
	case "high":
		return WarnHigh, nil
	case "low":
		return WarnLow, nil
	}
	return WarnOff, errors.Errorf("unknown warning mode %q", s)
}

type Level uint8

const (
	LevelNone Level = iota
	LevelLow
	LevelHigh
)

// Threshold holds the warning limits of a channel in base units.
type Threshold struct {
	Mode WarnMode
	Warn float64
	Crit float64
}

// Level returns the warning level of v. Unavailable values never warn.
func (t Threshold) Level(v float64) Level {
	if t.Mode == WarnOff || !telemetry.IsAvailable(v) {
		return LevelNone
	}
	if t.Mode == WarnHigh {
		switch {
		case v >= t.Crit:
			return LevelHigh
		case v >= t.Warn:
			return LevelLow
		}
		return LevelNone
	}
	switch {
	case v <= t.Crit:
		return LevelHigh
	case v <= t.Warn:
		return LevelLow
	}
	return LevelNone
}

type Thresholds [telemetry.ChannelCount]Threshold

// Level returns the warning level of ch in snap.
func (t *Thresholds) Level(snap *telemetry.Snapshot, ch telemetry.Channel) Level {
	if !ch.Valid() {
		return LevelNone
	}
	return t[ch].Level(snap.Raw(ch))
}

// warnSet is the membership signature of the banner lists.
type warnSet struct {
	high, low uint64
}

func (t *Thresholds) collect(snap *telemetry.Snapshot) (high, low []telemetry.Channel, sig warnSet) {
	for ch := telemetry.Channel(0); ch < telemetry.ChannelCount; ch++ {
		switch t.Level(snap, ch) {
		case LevelHigh:
			high = append(high, ch)
			sig.high |= 1 << ch
		case LevelLow:
			low = append(low, ch)
			sig.low |= 1 << ch
		}
	}
	return high, low, sig
}
