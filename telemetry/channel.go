package telemetry

import (
	"strings"

	"github.com/pkg/errors"
)

// Channel identifies one physical quantity shown on the cluster.
type Channel uint8

const (
	Soot Channel = iota
	Speed
	RPM
	Coolant
	Trans1
	Trans2
	Oil
	BattV
	Gear
	Lockup
	Torque
	Pedal
	TorqueDemand
	EGT1
	EGT2
	Boost
	Manifold
	TurboOut
	Lambda
	IntakeTemp
	FuelTemp
	Actuator
	Headlights
	BattSOC
	BattCurrent
	BattTimeToGo
	BattV2
	DCDCOutA
	DCDCOutV
	DCDCInV
	PVWatts
	PVAmps
	PVYield

	ChannelCount
)

// NoChannel is never a valid channel. Render caches start out holding it.
const NoChannel = ChannelCount

var channelNames = [ChannelCount]string{
	Soot:         "soot",
	Speed:        "speed",
	RPM:          "rpm",
	Coolant:      "coolant",
	Trans1:       "trans1",
	Trans2:       "trans2",
	Oil:          "oil",
	BattV:        "battv",
	Gear:         "gear",
	Lockup:       "lockup",
	Torque:       "torque",
	Pedal:        "pedal",
	TorqueDemand: "torque_demand",
	EGT1:         "egt1",
	EGT2:         "egt2",
	Boost:        "boost",
	Manifold:     "manifold",
	TurboOut:     "turbo_out",
	Lambda:       "lambda",
	IntakeTemp:   "intake",
	FuelTemp:     "fuel_temp",
	Actuator:     "actuator",
	Headlights:   "headlights",
	BattSOC:      "batt_soc",
	BattCurrent:  "batt_current",
	BattTimeToGo: "batt_ttg",
	BattV2:       "battv2",
	DCDCOutA:     "dcdc_out_a",
	DCDCOutV:     "dcdc_out_v",
	DCDCInV:      "dcdc_in_v",
	PVWatts:      "pv_watts",
	PVAmps:       "pv_amps",
	PVYield:      "pv_yield",
}

func (c Channel) String() string {
	if c >= ChannelCount {
		return "none"
	}
	return channelNames[c]
}

// Valid reports whether c names a real channel.
func (c Channel) Valid() bool {
	return c < ChannelCount
}

// ParseChannel maps a configuration name back to its channel.
func ParseChannel(s string) (Channel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range channelNames {
		if name == s {
			return Channel(i), nil
		}
	}
	return NoChannel, errors.Errorf("unknown channel %q", s)
}

// Group returns the radio reading group that feeds c, or NoGroup for
// channels decoded from the vehicle bus.
func (c Channel) Group() Group {
	switch c {
	case BattSOC, BattCurrent, BattTimeToGo, BattV2:
		return GroupBattery
	case PVWatts, PVAmps, PVYield:
		return GroupSolar
	case DCDCOutA, DCDCOutV, DCDCInV:
		return GroupDCDC
	}
	return NoGroup
}
