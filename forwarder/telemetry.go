package forwarder

import (
	"encoding/binary"

	"github.com/jd3nn1s/dash/telemetry"
)

type Header struct {
	Type  uint8
	Count uint8
}

const (
	TypeTelemetry = 1
)

// Telemetry is the wire form of a snapshot: one little-endian float32 per
// channel in channel order, NaN when unavailable.
type Telemetry struct {
	Values     [telemetry.ChannelCount]float32
	TargetGear int8
	Lock       uint8
}

var maxTelemetrySize = binary.Size(Header{}) + binary.Size(Telemetry{})

// NewTelemetry flattens snap into its wire form.
func NewTelemetry(snap *telemetry.Snapshot) Telemetry {
	t := Telemetry{
		TargetGear: int8(snap.Registers.TargetGear),
		Lock:       uint8(snap.Registers.Lock),
	}
	for ch := telemetry.Channel(0); ch < telemetry.ChannelCount; ch++ {
		t.Values[ch] = float32(snap.Raw(ch))
	}
	return t
}
