// Package units turns base unit channel values into what the driver sees.
package units

import (
	"strings"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/pkg/errors"
)

type Pressure uint8

const (
	KPa Pressure = iota
	PSI
)

type Temperature uint8

const (
	Celsius Temperature = iota
	Fahrenheit
)

type Speed uint8

const (
	KMH Speed = iota
	MPH
)

type Lambda uint8

const (
	LambdaRatio Lambda = iota
	AFR
)

const (
	psiPerKPa    = 0.145038
	mphPerKMH    = 0.621371
	stoichDiesel = 14.7
)

// System is the selected unit for each family plus a speed correction in
// percent applied before conversion.
type System struct {
	Pressure     Pressure
	Temperature  Temperature
	Speed        Speed
	Lambda       Lambda
	SpeedTrimPct float64
}

// Metric is the default unit system.
func Metric() System {
	return System{}
}

// Raw returns the base unit value of ch.
func Raw(snap *telemetry.Snapshot, ch telemetry.Channel) float64 {
	return snap.Raw(ch)
}

// Display returns the value of ch in the selected units. Unavailable stays
// unavailable.
func (s System) Display(snap *telemetry.Snapshot, ch telemetry.Channel) float64 {
	return s.Convert(ch, Raw(snap, ch))
}

// Convert applies the unit system to a base unit value of ch.
func (s System) Convert(ch telemetry.Channel, v float64) float64 {
	if ch == telemetry.Speed {
		v *= 1 + s.SpeedTrimPct/100
	}
	return s.convert(FamilyOf(ch), v)
}

func (s System) convert(f Family, v float64) float64 {
	switch f {
	case FamilyTemperature:
		if s.Temperature == Fahrenheit {
			return v*9/5 + 32
		}
	case FamilyPressure:
		if s.Pressure == PSI {
			return v * psiPerKPa
		}
	case FamilySpeed:
		if s.Speed == MPH {
			return v * mphPerKMH
		}
	case FamilyLambda:
		if s.Lambda == AFR {
			return v * stoichDiesel
		}
	}
	return v
}

// Unit is the unit label shown next to the value of ch.
func (s System) Unit(ch telemetry.Channel) string {
	m := metaFor(ch)
	switch m.Family {
	case FamilyTemperature:
		if s.Temperature == Fahrenheit {
			return "F"
		}
		return "C"
	case FamilyPressure:
		if s.Pressure == PSI {
			return "psi"
		}
		return "kPa"
	case FamilySpeed:
		if s.Speed == MPH {
			return "mph"
		}
		return "km/h"
	case FamilyLambda:
		if s.Lambda == AFR {
			return "AFR"
		}
		return "lam"
	}
	return m.Unit
}

// Range is the gauge scale of ch in display units.
func (s System) Range(ch telemetry.Channel) (min, max float64) {
	m := metaFor(ch)
	return s.convert(m.Family, m.Min), s.convert(m.Family, m.Max)
}

// Decimals is the number of fraction digits shown for ch.
func (s System) Decimals(ch telemetry.Channel) int {
	if ch == telemetry.Lambda && s.Lambda == AFR {
		return 1
	}
	return metaFor(ch).Decimals
}

// ParseSystem builds a unit system from configuration names. Empty names
// select the metric unit.
func ParseSystem(pressure, temperature, speed, lambda string, trimPct float64) (System, error) {
	s := Metric()
	s.SpeedTrimPct = trimPct

	switch strings.ToLower(pressure) {
	case "", "kpa":
	case "psi":
		s.Pressure = PSI
	default:
		return s, errors.Errorf("unknown pressure unit %q", pressure)
	}
	switch strings.ToLower(temperature) {
	case "", "c", "celsius":
	case "f", "fahrenheit":
		s.Temperature = Fahrenheit
	default:
		return s, errors.Errorf("unknown temperature unit %q", temperature)
	}
	switch strings.ToLower(speed) {
	case "", "kmh", "km/h":
	case "mph":
		s.Speed = MPH
	default:
		return s, errors.Errorf("unknown speed unit %q", speed)
	}
	switch strings.ToLower(lambda) {
	case "", "lambda":
	case "afr":
		s.Lambda = AFR
	default:
		return s, errors.Errorf("unknown lambda unit %q", lambda)
	}
	return s, nil
}
