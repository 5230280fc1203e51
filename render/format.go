package render

import (
	"math"
	"strconv"

	"github.com/jd3nn1s/dash/telemetry"
)

const (
	keyNever       = math.MinInt64
	keyUnavailable = math.MinInt64 + 1

	targetNever = math.MinInt32

	unavailableText = "--"
)

// ValueKey quantizes v to the digits that are shown.
func ValueKey(v float64, decimals int) int64 {
	if !telemetry.IsAvailable(v) {
		return keyUnavailable
	}
	return int64(math.Round(v * math.Pow10(decimals)))
}

// FormatValue renders v with a fixed number of decimals.
func FormatValue(v float64, decimals int) string {
	if !telemetry.IsAvailable(v) {
		return unavailableText
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// GearText renders a gear position.
func GearText(g int) string {
	switch g {
	case -3:
		return "P"
	case -2:
		return "R"
	case -1:
		return "N"
	case 0:
		return unavailableText
	}
	return strconv.Itoa(g)
}

// ShiftText renders the current gear, or "c>t" while a shift between two
// drive gears is in progress.
func ShiftText(current, target int) string {
	if current > 0 && current <= 9 && target > 0 && target <= 9 && current != target {
		return strconv.Itoa(current) + ">" + strconv.Itoa(target)
	}
	return GearText(current)
}

func gearValue(v float64) int {
	if !telemetry.IsAvailable(v) {
		return 0
	}
	return int(v)
}

func onOffText(v float64) string {
	switch {
	case !telemetry.IsAvailable(v):
		return unavailableText
	case v != 0:
		return "On"
	}
	return "Off"
}
