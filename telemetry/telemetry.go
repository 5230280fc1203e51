// Package telemetry holds the current physical value of every channel.
//
// Values are stored in base units (km/h, °C, kPa, lambda ratio, V, A). An
// unavailable value is NaN, never zero.
package telemetry

import (
	"math"
	"time"
)

// Unavailable is the marker stored for a value that is not known.
var Unavailable = math.NaN()

// IsAvailable reports whether v carries a reading.
func IsAvailable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Registers are the values decoded from the vehicle bus. They are written by
// the bus decoder on the render goroutine only.
type Registers struct {
	values [ChannelCount]float64

	TargetGear int
	Lock       LockState
	Locked     bool
	RegenPct   float64
}

func NewRegisters() *Registers {
	r := &Registers{}
	r.Reset()
	return r
}

// Reset marks every register unavailable.
func (r *Registers) Reset() {
	for i := range r.values {
		r.values[i] = Unavailable
	}
	r.TargetGear = 0
	r.Lock = LockUnlocked
	r.Locked = false
	r.RegenPct = Unavailable
}

func (r *Registers) Set(ch Channel, v float64) {
	if ch.Valid() {
		r.values[ch] = v
	}
}

func (r *Registers) Get(ch Channel) float64 {
	if !ch.Valid() {
		return Unavailable
	}
	return r.values[ch]
}

// Group is a set of radio channels that come from the same peer.
type Group uint8

const (
	GroupBattery Group = iota
	GroupSolar
	GroupDCDC

	groupCount
	NoGroup = groupCount
)

func (g Group) String() string {
	switch g {
	case GroupBattery:
		return "battery"
	case GroupSolar:
		return "solar"
	case GroupDCDC:
		return "dcdc"
	}
	return "none"
}

// Groups lists every radio reading group.
func Groups() []Group {
	return []Group{GroupBattery, GroupSolar, GroupDCDC}
}

// Update is one decoded radio record. Values only holds available fields.
type Update struct {
	Group  Group
	Values map[Channel]float64
	At     time.Time
}

// Readings are the values received over the radio, grouped per peer.
type Readings struct {
	values  [ChannelCount]float64
	updated [groupCount]time.Time
}

func NewReadings() Readings {
	r := Readings{}
	r.Reset()
	return r
}

// Reset clears every group.
func (r *Readings) Reset() {
	for i := range r.values {
		r.values[i] = Unavailable
	}
	for i := range r.updated {
		r.updated[i] = time.Time{}
	}
}

// Apply writes u into the readings. The group timestamp only moves when
// the update carried at least one available field.
func (r *Readings) Apply(u Update) {
	if u.Group >= groupCount {
		return
	}
	updated := false
	for ch, v := range u.Values {
		if ch.Group() != u.Group || !IsAvailable(v) {
			continue
		}
		r.values[ch] = v
		updated = true
	}
	if updated {
		r.updated[u.Group] = u.At
	}
}

// Sweep clears groups that have not been updated within window. When the
// radio feature is disabled every group is cleared.
func (r *Readings) Sweep(now time.Time, window time.Duration, enabled bool) {
	if !enabled {
		r.Reset()
		return
	}
	for _, g := range Groups() {
		last := r.updated[g]
		if last.IsZero() || now.Sub(last) <= window {
			continue
		}
		r.clearGroup(g)
	}
}

func (r *Readings) clearGroup(g Group) {
	for ch := Channel(0); ch < ChannelCount; ch++ {
		if ch.Group() == g {
			r.values[ch] = Unavailable
		}
	}
	r.updated[g] = time.Time{}
}

func (r *Readings) Get(ch Channel) float64 {
	if !ch.Valid() || ch.Group() == NoGroup {
		return Unavailable
	}
	return r.values[ch]
}

// Updated returns when g last received an available field.
func (r *Readings) Updated(g Group) time.Time {
	if g >= groupCount {
		return time.Time{}
	}
	return r.updated[g]
}

// Snapshot is a consistent copy of both value sets taken once per tick.
type Snapshot struct {
	Registers Registers
	Readings  Readings
}

func NewSnapshot() Snapshot {
	return Snapshot{
		Registers: *NewRegisters(),
		Readings:  NewReadings(),
	}
}

// Raw returns the base unit value of ch from whichever source owns it.
func (s *Snapshot) Raw(ch Channel) float64 {
	if ch.Group() != NoGroup {
		return s.Readings.Get(ch)
	}
	return s.Registers.Get(ch)
}
