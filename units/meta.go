package units

import "github.com/jd3nn1s/dash/telemetry"

// Family is the kind of physical quantity, which decides the conversion.
type Family uint8

const (
	FamilyNone Family = iota
	FamilyTemperature
	FamilyPressure
	FamilySpeed
	FamilyLambda
)

// Meta describes how a channel is presented. Min and Max are in base units.
type Meta struct {
	Label    string
	Family   Family
	Unit     string
	Min, Max float64
	Decimals int
}

var metas = [telemetry.ChannelCount]Meta{
	telemetry.Soot:         {Label: "Soot", Unit: "%", Max: 100},
	telemetry.Speed:        {Label: "Speed", Family: FamilySpeed, Max: 200},
	telemetry.RPM:          {Label: "RPM", Unit: "rpm", Max: 5000},
	telemetry.Coolant:      {Label: "Coolant", Family: FamilyTemperature, Min: 40, Max: 120},
	telemetry.Trans1:       {Label: "Trans 1", Family: FamilyTemperature, Min: 40, Max: 130},
	telemetry.Trans2:       {Label: "Trans 2", Family: FamilyTemperature, Min: 40, Max: 130},
	telemetry.Oil:          {Label: "Oil", Family: FamilyPressure, Max: 700},
	telemetry.BattV:        {Label: "Battery", Unit: "V", Min: 10, Max: 16, Decimals: 1},
	telemetry.Gear:         {Label: "Gear", Min: -3, Max: 6},
	telemetry.Lockup:       {Label: "Lockup", Max: 1},
	telemetry.Torque:       {Label: "Torque", Unit: "Nm", Min: -200, Max: 800},
	telemetry.Pedal:        {Label: "Pedal", Unit: "%", Max: 100},
	telemetry.TorqueDemand: {Label: "Tq Demand", Unit: "%", Max: 100},
	telemetry.EGT1:         {Label: "EGT 1", Family: FamilyTemperature, Max: 900},
	telemetry.EGT2:         {Label: "EGT 2", Family: FamilyTemperature, Max: 900},
	telemetry.Boost:        {Label: "Boost", Family: FamilyPressure, Max: 250},
	telemetry.Manifold:     {Label: "Manifold", Family: FamilyTemperature, Max: 120},
	telemetry.TurboOut:     {Label: "Turbo Out", Family: FamilyTemperature, Max: 200},
	telemetry.Lambda:       {Label: "Lambda", Family: FamilyLambda, Min: 0.5, Max: 2, Decimals: 2},
	telemetry.IntakeTemp:   {Label: "Intake", Family: FamilyTemperature, Min: -20, Max: 80},
	telemetry.FuelTemp:     {Label: "Fuel Temp", Family: FamilyTemperature, Min: -20, Max: 80},
	telemetry.Actuator:     {Label: "Actuator", Max: 255},
	telemetry.Headlights:   {Label: "Headlights", Max: 1},
	telemetry.BattSOC:      {Label: "House SoC", Unit: "%", Max: 100},
	telemetry.BattCurrent:  {Label: "House Amps", Unit: "A", Min: -50, Max: 50, Decimals: 1},
	telemetry.BattTimeToGo: {Label: "Time To Go", Unit: "min", Max: 1440},
	telemetry.BattV2:       {Label: "House Volts", Unit: "V", Min: 10, Max: 15, Decimals: 2},
	telemetry.DCDCOutA:     {Label: "DC-DC Amps", Unit: "A", Max: 30, Decimals: 1},
	telemetry.DCDCOutV:     {Label: "DC-DC Out", Unit: "V", Min: 10, Max: 15, Decimals: 2},
	telemetry.DCDCInV:      {Label: "DC-DC In", Unit: "V", Min: 10, Max: 15, Decimals: 2},
	telemetry.PVWatts:      {Label: "Solar W", Unit: "W", Max: 400},
	telemetry.PVAmps:       {Label: "Solar A", Unit: "A", Max: 30, Decimals: 1},
	telemetry.PVYield:      {Label: "Yield", Unit: "kWh", Max: 5, Decimals: 2},
}

func metaFor(ch telemetry.Channel) Meta {
	if !ch.Valid() {
		return Meta{Label: "--"}
	}
	return metas[ch]
}

// FamilyOf returns the unit family of ch.
func FamilyOf(ch telemetry.Channel) Family {
	return metaFor(ch).Family
}

// Label is the short name of ch.
func Label(ch telemetry.Channel) string {
	return metaFor(ch).Label
}
